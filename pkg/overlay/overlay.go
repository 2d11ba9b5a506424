// Package overlay draws detection results onto frames.
package overlay

import (
	"image"
	"image/color"

	"github.com/teslashibe/barcode-scanner/pkg/barcode"
	"github.com/teslashibe/barcode-scanner/pkg/camera"
)

// Style controls how symbols are drawn.
type Style struct {
	OutlineColor     color.RGBA
	OutlineThickness int

	// Every label is drawn at Anchor, so several symbols in one frame
	// overlap. Per-symbol placement would need a layout pass.
	Anchor        image.Point
	TextColor     color.RGBA
	TextScale     float64
	TextThickness int
}

// DefaultStyle draws a green outline of width 2 and a yellow label at
// (50,50). Colours are RGB; OpenCV frames convert to BGR when drawing.
func DefaultStyle() Style {
	return Style{
		OutlineColor:     color.RGBA{0, 255, 0, 255},
		OutlineThickness: 2,
		Anchor:           image.Pt(50, 50),
		TextColor:        color.RGBA{255, 255, 0, 255},
		TextScale:        1,
		TextThickness:    2,
	}
}

// Annotate draws every symbol that carries a payload and returns those
// symbols in order. Symbols without a payload are skipped entirely.
func Annotate(frame camera.Frame, symbols []barcode.Symbol, style Style) []barcode.Symbol {
	drawn := make([]barcode.Symbol, 0, len(symbols))
	for _, sym := range symbols {
		if !sym.HasPayload() {
			continue
		}
		if len(sym.Polygon) > 0 {
			frame.Polyline(sym.Polygon, style.OutlineColor, style.OutlineThickness)
		}
		frame.Text(sym.Text, style.Anchor, style.TextColor, style.TextScale, style.TextThickness)
		drawn = append(drawn, sym)
	}
	return drawn
}
