package barcode

import (
	"sync"

	"github.com/teslashibe/barcode-scanner/pkg/camera"
)

// Mock implements Decoder for testing.
type Mock struct {
	// DecodeFunc is called with the 1-based call number. If nil, Decode
	// finds nothing.
	DecodeFunc func(n int, frame camera.Frame) ([]Symbol, error)

	mu    sync.Mutex
	calls int
}

// NewMock returns a decoder that always finds the given symbols.
func NewMock(symbols ...Symbol) *Mock {
	return &Mock{
		DecodeFunc: func(int, camera.Frame) ([]Symbol, error) {
			return symbols, nil
		},
	}
}

// WithError returns a decoder that always fails with err.
func WithError(err error) *Mock {
	return &Mock{
		DecodeFunc: func(int, camera.Frame) ([]Symbol, error) {
			return nil, err
		},
	}
}

// Decode counts the call and delegates to DecodeFunc.
func (m *Mock) Decode(frame camera.Frame) ([]Symbol, error) {
	m.mu.Lock()
	m.calls++
	n := m.calls
	m.mu.Unlock()

	if m.DecodeFunc == nil {
		return nil, nil
	}
	return m.DecodeFunc(n, frame)
}

// Calls returns how many frames were decoded.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// NewSymbol builds a symbol whose payload is its text.
func NewSymbol(text string, polygon ...[2]int) Symbol {
	s := Symbol{Payload: []byte(text), Text: text, Format: "QR_CODE"}
	for _, p := range polygon {
		s.Polygon = append(s.Polygon, Point(float64(p[0]), float64(p[1])))
	}
	return s
}

var _ Decoder = (*Mock)(nil)
