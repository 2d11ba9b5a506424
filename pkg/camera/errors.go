package camera

import "errors"

// Sentinel errors for capture conditions.
var (
	// ErrNoDevice is returned when no index/backend combination yields a
	// device that both opens and delivers a trial frame.
	ErrNoDevice = errors.New("camera: no device found")

	// ErrReadFailed is returned by Device.Read when a frame could not be
	// grabbed. It is transient; the device stays open.
	ErrReadFailed = errors.New("camera: failed to read frame")

	// ErrNotOpened is returned by an Opener when the driver reports the
	// device as not opened.
	ErrNotOpened = errors.New("camera: device not opened")

	// ErrClosed is returned when reading from a closed device.
	ErrClosed = errors.New("camera: device closed")

	// ErrUnsupported is returned by ListDevices on platforms without
	// device enumeration.
	ErrUnsupported = errors.New("camera: device listing not supported on this platform")
)
