// Package vision implements the camera and display contracts on top of
// OpenCV via GoCV.
package vision

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/barcode-scanner/pkg/camera"
)

var captureAPIs = map[camera.Backend]gocv.VideoCaptureAPI{
	camera.BackendDefault:      gocv.VideoCaptureAny,
	camera.BackendDirectShow:   gocv.VideoCaptureDshow,
	camera.BackendMSMF:         gocv.VideoCaptureMSMF,
	camera.BackendV4L2:         gocv.VideoCaptureV4L2,
	camera.BackendAVFoundation: gocv.VideoCaptureAVFoundation,
}

// Opener opens cameras through OpenCV's VideoCapture.
type Opener struct {
	Width  int
	Height int
}

// NewOpener creates an opener applying the resolution from cfg.
func NewOpener(cfg camera.Config) *Opener {
	return &Opener{Width: cfg.Width, Height: cfg.Height}
}

// Open opens the device at index with the given backend.
func (o *Opener) Open(index int, backend camera.Backend) (camera.Device, error) {
	api, ok := captureAPIs[backend]
	if !ok {
		return nil, fmt.Errorf("vision: no capture API for %s", backend)
	}

	vc, err := gocv.VideoCaptureDeviceWithAPI(index, api)
	if err != nil {
		return nil, fmt.Errorf("vision: open %d (%s): %w", index, backend, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, camera.ErrNotOpened
	}

	if o.Width > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(o.Width))
	}
	if o.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameHeight, float64(o.Height))
	}

	return &Device{
		vc:   vc,
		info: camera.DeviceInfo{Index: index, Backend: backend},
	}, nil
}

// Device is an open OpenCV VideoCapture.
type Device struct {
	mu   sync.Mutex
	vc   *gocv.VideoCapture
	info camera.DeviceInfo
}

// Read grabs the next frame into a fresh Mat owned by the caller.
func (d *Device) Read() (camera.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc == nil {
		return nil, camera.ErrClosed
	}

	mat := gocv.NewMat()
	if ok := d.vc.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, camera.ErrReadFailed
	}
	return NewMatFrame(mat), nil
}

// Info returns where the device was opened.
func (d *Device) Info() camera.DeviceInfo {
	return d.info
}

// Close releases the capture. Later calls are no-ops.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc == nil {
		return nil
	}
	err := d.vc.Close()
	d.vc = nil
	return err
}

var (
	_ camera.Opener = (*Opener)(nil)
	_ camera.Device = (*Device)(nil)
)
