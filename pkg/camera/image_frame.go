package camera

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// ImageFrame is a Frame backed by an in-memory RGBA image. It is used for
// still images and anywhere OpenCV is not available.
type ImageFrame struct {
	img *image.RGBA
}

// NewImageFrame copies src into a new RGBA frame.
func NewImageFrame(src image.Image) *ImageFrame {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return &ImageFrame{img: dst}
}

// Bounds returns the frame rectangle.
func (f *ImageFrame) Bounds() image.Rectangle {
	return f.img.Bounds()
}

// Image returns the underlying RGBA image. Drawing on the frame is
// visible through it.
func (f *ImageFrame) Image() (image.Image, error) {
	return f.img, nil
}

// RGBA returns the underlying image.
func (f *ImageFrame) RGBA() *image.RGBA {
	return f.img
}

// Mirror flips the image horizontally.
func (f *ImageFrame) Mirror() {
	b := f.img.Bounds()
	if b.Dx() < 2 {
		return
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := f.img.Pix[f.img.PixOffset(b.Min.X, y):f.img.PixOffset(b.Max.X-1, y)+4]
		for l, r := 0, len(row)-4; l < r; l, r = l+4, r-4 {
			for k := 0; k < 4; k++ {
				row[l+k], row[r+k] = row[r+k], row[l+k]
			}
		}
	}
}

// Polyline strokes a closed outline through pts. Each edge is rasterized
// as a quad of the requested thickness.
func (f *ImageFrame) Polyline(pts []image.Point, c color.RGBA, thickness int) {
	if len(pts) < 2 {
		return
	}
	if thickness < 1 {
		thickness = 1
	}
	b := f.img.Bounds()
	src := image.NewUniform(c)
	half := float32(thickness) / 2

	for i := range pts {
		a, z := pts[i], pts[(i+1)%len(pts)]
		if len(pts) == 2 && i == 1 {
			break
		}
		dx, dy := float32(z.X-a.X), float32(z.Y-a.Y)
		length := float32(math.Hypot(float64(dx), float64(dy)))
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*half, dx/length*half

		r := vector.NewRasterizer(b.Dx(), b.Dy())
		r.MoveTo(float32(a.X)+nx, float32(a.Y)+ny)
		r.LineTo(float32(z.X)+nx, float32(z.Y)+ny)
		r.LineTo(float32(z.X)-nx, float32(z.Y)-ny)
		r.LineTo(float32(a.X)-nx, float32(a.Y)-ny)
		r.ClosePath()
		r.Draw(f.img, b, src, image.Point{})
	}
}

// Text draws s using the fixed 7x13 basic font. basicfont has one size,
// so scale and thickness are ignored.
func (f *ImageFrame) Text(s string, org image.Point, c color.RGBA, scale float64, thickness int) {
	d := &font.Drawer{
		Dst:  f.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(org.X, org.Y),
	}
	d.DrawString(s)
}

// Close is a no-op; the image is garbage collected.
func (f *ImageFrame) Close() error {
	return nil
}

var _ Frame = (*ImageFrame)(nil)
