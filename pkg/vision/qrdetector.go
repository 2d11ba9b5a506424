package vision

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/barcode-scanner/pkg/barcode"
	"github.com/teslashibe/barcode-scanner/pkg/camera"
)

var errDetectorClosed = errors.New("vision: QR detector closed")

// QRDetector decodes a single QR code per frame with OpenCV's
// QRCodeDetector.
type QRDetector struct {
	mu     sync.Mutex // protects the native detector
	det    gocv.QRCodeDetector
	closed bool
}

// NewQRDetector creates an OpenCV QR decoder. Call Close when done.
func NewQRDetector() *QRDetector {
	return &QRDetector{det: gocv.NewQRCodeDetector()}
}

// Decode returns the QR code found in the frame, if any. The polygon is
// the four corners reported by the detector.
func (q *QRDetector) Decode(frame camera.Frame) ([]barcode.Symbol, error) {
	mat, release, err := matOf(frame)
	if err != nil {
		return nil, err
	}
	defer release()

	points := gocv.NewMat()
	defer points.Close()
	straight := gocv.NewMat()
	defer straight.Close()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, errDetectorClosed
	}
	text := q.det.DetectAndDecode(mat, &points, &straight)
	q.mu.Unlock()

	if text == "" {
		return nil, nil
	}

	sym := barcode.Symbol{
		Payload: []byte(text),
		Text:    text,
		Format:  "QR_CODE",
	}
	if !points.Empty() {
		if data, err := points.DataPtrFloat32(); err == nil {
			for i := 0; i+1 < len(data); i += 2 {
				sym.Polygon = append(sym.Polygon, barcode.Point(float64(data[i]), float64(data[i+1])))
			}
		}
	}
	return []barcode.Symbol{sym}, nil
}

// Close releases the native detector.
func (q *QRDetector) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	q.det.Close()
	return nil
}

var _ barcode.Decoder = (*QRDetector)(nil)
