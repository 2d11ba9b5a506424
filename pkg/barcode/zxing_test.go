package barcode

import (
	"errors"
	"image"
	"image/draw"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/barcode-scanner/pkg/camera"
)

func qrFrame(t *testing.T, text string) *camera.ImageFrame {
	t.Helper()
	m, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, 240, 240, nil)
	require.NoError(t, err)
	return camera.NewImageFrame(m)
}

func findText(symbols []Symbol, text string) (Symbol, bool) {
	for _, s := range symbols {
		if s.Text == text {
			return s, true
		}
	}
	return Symbol{}, false
}

func TestZXing_DecodesQR(t *testing.T) {
	z := NewZXing(DefaultZXingConfig())

	symbols, err := z.Decode(qrFrame(t, "ABC123"))
	require.NoError(t, err)

	sym, ok := findText(symbols, "ABC123")
	require.True(t, ok, "QR code not found in %+v", symbols)
	assert.Equal(t, "QR_CODE", sym.Format)
	assert.True(t, sym.HasPayload())
	assert.NotEmpty(t, sym.Polygon)

	b := image.Rect(0, 0, 240, 240)
	for _, p := range sym.Polygon {
		assert.True(t, p.In(b), "point %v outside frame", p)
	}
}

func TestZXing_DecodesCode128(t *testing.T) {
	m, err := oned.NewCode128Writer().Encode("XYZ789", gozxing.BarcodeFormat_CODE_128, 320, 80, nil)
	require.NoError(t, err)

	z := NewZXing(ZXingConfig{Linear: true})
	symbols, err := z.Decode(camera.NewImageFrame(m))
	require.NoError(t, err)

	sym, ok := findText(symbols, "XYZ789")
	require.True(t, ok, "Code 128 not found in %+v", symbols)
	assert.Equal(t, "CODE_128", sym.Format)
	assert.Equal(t, []byte("XYZ789"), sym.Payload, "payload is the decoded text, not code values")
}

// linearImage renders text as a w x h 1-D barcode.
func linearImage(t *testing.T, writer gozxing.Writer, format gozxing.BarcodeFormat, text string, w, h int) image.Image {
	t.Helper()
	m, err := writer.Encode(text, format, w, h, nil)
	require.NoError(t, err)
	return m
}

// stacked draws the images top to bottom on a white frame, 20px apart.
func stacked(imgs ...image.Image) *camera.ImageFrame {
	width, height := 0, 20
	for _, img := range imgs {
		width = max(width, img.Bounds().Dx())
		height += img.Bounds().Dy() + 20
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	y := 20
	for _, img := range imgs {
		r := image.Rect(0, y, img.Bounds().Dx(), y+img.Bounds().Dy())
		draw.Draw(dst, r, img, img.Bounds().Min, draw.Src)
		y = r.Max.Y + 20
	}
	return camera.NewImageFrame(dst)
}

func TestZXing_TwoLinearCodesInOneFrame(t *testing.T) {
	frame := stacked(
		linearImage(t, oned.NewCode128Writer(), gozxing.BarcodeFormat_CODE_128, "ABC123", 320, 80),
		linearImage(t, oned.NewCode128Writer(), gozxing.BarcodeFormat_CODE_128, "XYZ789", 320, 80),
	)

	symbols, err := NewZXing(DefaultZXingConfig()).Decode(frame)
	require.NoError(t, err)

	abc, ok := findText(symbols, "ABC123")
	require.True(t, ok, "ABC123 not found in %+v", symbols)
	xyz, ok := findText(symbols, "XYZ789")
	require.True(t, ok, "XYZ789 not found in %+v", symbols)
	assert.Len(t, symbols, 2, "each code reported once")

	// Polygons are in frame coordinates, not crop coordinates.
	require.NotEmpty(t, abc.Polygon)
	require.NotEmpty(t, xyz.Polygon)
	assert.Less(t, abc.Polygon[0].Y, 110)
	assert.Greater(t, xyz.Polygon[0].Y, 110)
}

func TestZXing_LinearFormats(t *testing.T) {
	tests := []struct {
		name   string
		writer gozxing.Writer
		format gozxing.BarcodeFormat
		text   string
	}{
		{"code93", oned.NewCode93Writer(), gozxing.BarcodeFormat_CODE_93, "CODE93"},
		{"code39", oned.NewCode39Writer(), gozxing.BarcodeFormat_CODE_39, "CODE39"},
		{"itf", oned.NewITFWriter(), gozxing.BarcodeFormat_ITF, "12345678"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := stacked(linearImage(t, tt.writer, tt.format, tt.text, 320, 80))

			symbols, err := NewZXing(ZXingConfig{Linear: true}).Decode(frame)
			require.NoError(t, err)

			sym, ok := findText(symbols, tt.text)
			require.True(t, ok, "%s not found in %+v", tt.text, symbols)
			assert.Equal(t, tt.format.String(), sym.Format)
			assert.Equal(t, []byte(tt.text), sym.Payload)
		})
	}
}

func TestZXing_BlankFrame(t *testing.T) {
	z := NewZXing(DefaultZXingConfig())

	symbols, err := z.Decode(camera.NewBlankFrame(320, 240))
	assert.NoError(t, err, "nothing found is not an error")
	assert.Empty(t, symbols)
}

func TestZXing_QROnlyIgnoresLinear(t *testing.T) {
	m, err := oned.NewCode128Writer().Encode("XYZ789", gozxing.BarcodeFormat_CODE_128, 320, 80, nil)
	require.NoError(t, err)

	z := NewZXing(ZXingConfig{QR: true})
	symbols, err := z.Decode(camera.NewImageFrame(m))
	require.NoError(t, err)
	_, ok := findText(symbols, "XYZ789")
	assert.False(t, ok)
}

func TestZXing_ReusableAcrossFrames(t *testing.T) {
	z := NewZXing(DefaultZXingConfig())

	for _, text := range []string{"first", "second", "third"} {
		symbols, err := z.Decode(qrFrame(t, text))
		require.NoError(t, err)
		_, ok := findText(symbols, text)
		assert.True(t, ok, "expected %q", text)
	}
}

type brokenFrame struct{ camera.Frame }

func (brokenFrame) Image() (image.Image, error) { return nil, errors.New("no pixels") }

func TestZXing_ImageError(t *testing.T) {
	z := NewZXing(DefaultZXingConfig())

	_, err := z.Decode(brokenFrame{camera.NewBlankFrame(4, 4)})
	assert.Error(t, err)
}

func TestPoint(t *testing.T) {
	assert.Equal(t, image.Pt(3, 5), Point(2.6, 4.5))
	assert.Equal(t, image.Pt(0, 0), Point(0.4, -0.4))
}
