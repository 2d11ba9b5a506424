// Package camera defines the capture contracts used by the scanner and
// implements device acquisition: probing camera indices across backends
// until one delivers frames.
package camera

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Frame is one captured image. A frame is owned by a single loop
// iteration and must be closed by its owner.
type Frame interface {
	// Bounds returns the pixel rectangle of the frame.
	Bounds() image.Rectangle

	// Image returns a Go image view of the frame for pure-Go consumers.
	Image() (image.Image, error)

	// Mirror flips the frame horizontally in place.
	Mirror()

	// Polyline draws a closed outline through pts.
	Polyline(pts []image.Point, c color.RGBA, thickness int)

	// Text draws s with its baseline starting at org.
	Text(s string, org image.Point, c color.RGBA, scale float64, thickness int)

	// Close releases the frame buffer.
	Close() error
}

// Device is an open camera. It is exclusively owned by whoever acquired it.
type Device interface {
	// Read grabs the next frame. A transient failure returns ErrReadFailed.
	Read() (Frame, error)

	// Info describes where the device was opened.
	Info() DeviceInfo

	// Close releases the device. Closing twice is a no-op.
	Close() error
}

// Opener opens a device at an index using a capture backend.
type Opener interface {
	Open(index int, backend Backend) (Device, error)
}

// DeviceInfo identifies an opened device.
type DeviceInfo struct {
	Index   int     `json:"index"`
	Backend Backend `json:"backend"`
}

func (d DeviceInfo) String() string {
	if d.Backend == BackendDefault {
		return fmt.Sprintf("index %d", d.Index)
	}
	return fmt.Sprintf("index %d with %s", d.Index, d.Backend)
}

// Backend selects the capture API used to open a device.
type Backend int

const (
	// BackendDefault lets the platform pick its capture API.
	BackendDefault Backend = iota
	// BackendDirectShow is the Windows DirectShow API.
	BackendDirectShow
	// BackendMSMF is Windows Media Foundation.
	BackendMSMF
	// BackendV4L2 is Video4Linux2.
	BackendV4L2
	// BackendAVFoundation is the macOS capture API.
	BackendAVFoundation
)

var backendNames = map[Backend]string{
	BackendDefault:      "default",
	BackendDirectShow:   "DirectShow",
	BackendMSMF:         "MSMF",
	BackendV4L2:         "V4L2",
	BackendAVFoundation: "AVFoundation",
}

func (b Backend) String() string {
	if name, ok := backendNames[b]; ok {
		return name
	}
	return fmt.Sprintf("backend(%d)", int(b))
}

// MarshalText lets Backend appear as a name in JSON.
func (b Backend) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText parses a backend name.
func (b *Backend) UnmarshalText(text []byte) error {
	v, err := ParseBackend(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// ParseBackend converts a backend name (case-insensitive, with a few
// common aliases) into a Backend.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "any", "auto":
		return BackendDefault, nil
	case "dshow", "directshow":
		return BackendDirectShow, nil
	case "msmf", "mediafoundation":
		return BackendMSMF, nil
	case "v4l2", "v4l":
		return BackendV4L2, nil
	case "avfoundation", "avf":
		return BackendAVFoundation, nil
	}
	return BackendDefault, fmt.Errorf("camera: unknown backend %q", s)
}

// ParseBackends parses a comma-separated backend list.
func ParseBackends(s string) ([]Backend, error) {
	var out []Backend
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		b, err := ParseBackend(part)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("camera: empty backend list")
	}
	return out, nil
}
