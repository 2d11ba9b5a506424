// Package barcode decodes barcodes and QR codes from camera frames.
package barcode

import (
	"image"
	"math"

	"github.com/teslashibe/barcode-scanner/pkg/camera"
)

// Symbol is one barcode located in a frame.
type Symbol struct {
	Payload []byte        `json:"-"`
	Text    string        `json:"text"`
	Format  string        `json:"format"`
	Polygon []image.Point `json:"polygon,omitempty"` // Ordered corners, may be empty
}

// HasPayload reports whether the symbol carries any data.
func (s Symbol) HasPayload() bool {
	return len(s.Payload) > 0
}

// Decoder finds symbols in a frame. Finding nothing is not an error.
type Decoder interface {
	Decode(frame camera.Frame) ([]Symbol, error)
}

// Point rounds a floating-point location to pixel coordinates.
func Point(x, y float64) image.Point {
	return image.Pt(int(math.Round(x)), int(math.Round(y)))
}
