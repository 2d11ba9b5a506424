package barcode

import (
	"fmt"
	"math"
	"sync"

	"github.com/makiuchi-d/gozxing"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/oned"

	"github.com/teslashibe/barcode-scanner/pkg/camera"
)

// ZXingConfig selects which symbologies the ZXing decoder looks for.
type ZXingConfig struct {
	QR        bool // QR codes, several per frame
	Linear    bool // Code 128/93/39, ITF, Codabar, EAN/UPC, several per frame
	TryHarder bool // Spend more time per frame for better accuracy
}

// DefaultZXingConfig enables every supported symbology.
func DefaultZXingConfig() ZXingConfig {
	return ZXingConfig{
		QR:        true,
		Linear:    true,
		TryHarder: true,
	}
}

const (
	// maxCropDepth bounds how often the frame is split around a found
	// linear symbol to look for more.
	maxCropDepth = 4
	// minCropSize is the smallest region, in pixels, worth searching.
	minCropSize = 8
)

type multiReader interface {
	DecodeMultiple(image *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) ([]*gozxing.Result, error)
}

// ZXing decodes symbols with the pure-Go gozxing port.
type ZXing struct {
	cfg    ZXingConfig
	hints  map[gozxing.DecodeHintType]interface{}
	qr     multiReader
	linear []gozxing.Reader
	mu     sync.Mutex // readers keep per-decode state
}

// NewZXing creates a ZXing decoder.
func NewZXing(cfg ZXingConfig) *ZXing {
	z := &ZXing{
		cfg:   cfg,
		hints: map[gozxing.DecodeHintType]interface{}{},
	}
	if cfg.TryHarder {
		z.hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	if cfg.QR {
		z.qr = multiqr.NewQRCodeMultiReader()
	}
	if cfg.Linear {
		z.linear = []gozxing.Reader{
			oned.NewCode128Reader(),
			oned.NewCode93Reader(),
			oned.NewCode39Reader(),
			oned.NewITFReader(),
			oned.NewCodaBarReader(),
			oned.NewMultiFormatUPCEANReader(z.hints),
		}
	}
	return z
}

// Decode runs every enabled reader over the frame. A reader that finds
// nothing (or fails a checksum) contributes no symbols.
func (z *ZXing) Decode(frame camera.Frame) ([]Symbol, error) {
	img, err := frame.Image()
	if err != nil {
		return nil, fmt.Errorf("barcode: frame to image: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("barcode: binarize: %w", err)
	}

	z.mu.Lock()
	defer z.mu.Unlock()

	var symbols []Symbol
	if z.qr != nil {
		results, err := z.qr.DecodeMultiple(bmp, z.hints)
		if err == nil {
			for _, r := range results {
				symbols = append(symbols, fromResult(r, 0, 0))
			}
		}
	}
	if len(z.linear) > 0 {
		seen := map[string]bool{}
		for _, reader := range z.linear {
			symbols = z.decodeLinear(reader, bmp, 0, 0, 0, seen, symbols)
		}
	}
	return symbols, nil
}

// decodeLinear finds one symbol with reader, then searches the regions
// left, above, right of and below it for more. A 1-D reader reports a
// single row through the bars, so codes stacked above or below the hit
// land in the top or bottom crop.
func (z *ZXing) decodeLinear(reader gozxing.Reader, bmp *gozxing.BinaryBitmap, dx, dy, depth int, seen map[string]bool, out []Symbol) []Symbol {
	r, err := reader.Decode(bmp, z.hints)
	reader.Reset()
	if err != nil || r == nil {
		return out
	}

	sym := fromResult(r, dx, dy)
	key := sym.Format + "\x00" + sym.Text
	if !seen[key] {
		seen[key] = true
		out = append(out, sym)
	}
	if depth >= maxCropDepth || !bmp.IsCropSupported() {
		return out
	}

	points := r.GetResultPoints()
	if len(points) == 0 {
		return out
	}
	w, h := bmp.GetWidth(), bmp.GetHeight()
	minX, minY := float64(w), float64(h)
	maxX, maxY := 0.0, 0.0
	for _, p := range points {
		if p == nil {
			continue
		}
		minX = math.Min(minX, p.GetX())
		minY = math.Min(minY, p.GetY())
		maxX = math.Max(maxX, p.GetX())
		maxY = math.Max(maxY, p.GetY())
	}
	if minX > maxX {
		return out
	}

	type region struct{ left, top, width, height int }
	var regions []region
	if x := int(minX); x > minCropSize {
		regions = append(regions, region{0, 0, x, h})
	}
	if y := int(minY); y > minCropSize {
		regions = append(regions, region{0, 0, w, y})
	}
	if x := int(math.Ceil(maxX)); x < w-minCropSize {
		regions = append(regions, region{x, 0, w - x, h})
	}
	if y := int(math.Ceil(maxY)) + 1; y < h-minCropSize {
		regions = append(regions, region{0, y, w, h - y})
	}
	for _, rg := range regions {
		sub, err := bmp.Crop(rg.left, rg.top, rg.width, rg.height)
		if err != nil {
			continue
		}
		out = z.decodeLinear(reader, sub, dx+rg.left, dy+rg.top, depth+1, seen, out)
	}
	return out
}

// fromResult converts a gozxing result found in a region offset by
// (dx, dy) from the frame origin. Payload is the decoded content; raw
// codewords (Code 128 code values, QR data codewords) are not kept.
func fromResult(r *gozxing.Result, dx, dy int) Symbol {
	sym := Symbol{
		Payload: []byte(r.GetText()),
		Text:    r.GetText(),
		Format:  r.GetBarcodeFormat().String(),
	}
	for _, p := range r.GetResultPoints() {
		if p == nil {
			continue
		}
		sym.Polygon = append(sym.Polygon, Point(p.GetX()+float64(dx), p.GetY()+float64(dy)))
	}
	return sym
}

var _ Decoder = (*ZXing)(nil)
