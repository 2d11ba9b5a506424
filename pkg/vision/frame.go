package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/teslashibe/barcode-scanner/internal/log"
	"github.com/teslashibe/barcode-scanner/pkg/camera"
)

// MatFrame is a camera.Frame backed by a BGR gocv.Mat.
type MatFrame struct {
	mat    gocv.Mat
	closed bool
}

// NewMatFrame takes ownership of mat.
func NewMatFrame(mat gocv.Mat) *MatFrame {
	return &MatFrame{mat: mat}
}

// Mat exposes the underlying matrix. It stays owned by the frame.
func (f *MatFrame) Mat() gocv.Mat {
	return f.mat
}

// Bounds returns the frame rectangle.
func (f *MatFrame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.mat.Cols(), f.mat.Rows())
}

// Image converts the Mat to a Go image (copy).
func (f *MatFrame) Image() (image.Image, error) {
	return f.mat.ToImage()
}

// Mirror flips the frame around the vertical axis.
func (f *MatFrame) Mirror() {
	gocv.Flip(f.mat, &f.mat, 1)
}

// Polyline draws a closed outline.
func (f *MatFrame) Polyline(pts []image.Point, c color.RGBA, thickness int) {
	if len(pts) < 2 {
		return
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	if err := gocv.Polylines(&f.mat, pv, true, c, thickness); err != nil {
		log.Debug("Failed to draw outline", "error", err)
	}
}

// Text draws s in the Hershey complex font.
func (f *MatFrame) Text(s string, org image.Point, c color.RGBA, scale float64, thickness int) {
	if err := gocv.PutText(&f.mat, s, org, gocv.FontHersheyComplex, scale, c, thickness); err != nil {
		log.Debug("Failed to draw label", "text", s, "error", err)
	}
}

// JPEG encodes the frame. The returned slice is a copy.
func (f *MatFrame) JPEG() ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, f.mat)
	if err != nil {
		return nil, fmt.Errorf("vision: encode jpeg: %w", err)
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}

// Close releases the Mat. Later calls are no-ops.
func (f *MatFrame) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.mat.Close()
}

// matOf returns a Mat view of any frame. Non-Mat frames are converted and
// the returned release func frees the copy.
func matOf(frame camera.Frame) (gocv.Mat, func(), error) {
	if mf, ok := frame.(*MatFrame); ok {
		return mf.mat, func() {}, nil
	}
	img, err := frame.Image()
	if err != nil {
		return gocv.Mat{}, nil, err
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, nil, fmt.Errorf("vision: image to mat: %w", err)
	}
	return mat, func() { mat.Close() }, nil
}

var _ camera.Frame = (*MatFrame)(nil)
