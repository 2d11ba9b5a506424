package camera

import (
	"image"
	"image/color"
	"sync"
)

// MockOpener implements Opener for testing. OpenFunc decides the outcome of
// each attempt; every attempt is recorded.
type MockOpener struct {
	// OpenFunc is called for each Open. If nil, Open returns ErrNotOpened.
	OpenFunc func(index int, backend Backend) (Device, error)

	mu       sync.Mutex
	attempts []DeviceInfo
}

// Open records the attempt and delegates to OpenFunc.
func (m *MockOpener) Open(index int, backend Backend) (Device, error) {
	m.mu.Lock()
	m.attempts = append(m.attempts, DeviceInfo{Index: index, Backend: backend})
	m.mu.Unlock()

	if m.OpenFunc == nil {
		return nil, ErrNotOpened
	}
	return m.OpenFunc(index, backend)
}

// Attempts returns every probe made so far, in order.
func (m *MockOpener) Attempts() []DeviceInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DeviceInfo, len(m.attempts))
	copy(out, m.attempts)
	return out
}

// MockDevice implements Device for testing. Reads are scripted by ReadFunc.
type MockDevice struct {
	DeviceInfo DeviceInfo

	// ReadFunc is called for each Read with the 1-based read count.
	// If nil, every read returns a blank 64x48 frame.
	ReadFunc func(n int) (Frame, error)

	// CloseErr is returned by every Close.
	CloseErr error

	mu     sync.Mutex
	reads  int
	closes int
}

// NewMockDevice returns a device that always reads successfully.
func NewMockDevice(info DeviceInfo) *MockDevice {
	return &MockDevice{DeviceInfo: info}
}

// Read returns the next scripted frame.
func (m *MockDevice) Read() (Frame, error) {
	m.mu.Lock()
	if m.closes > 0 {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	m.reads++
	n := m.reads
	m.mu.Unlock()

	if m.ReadFunc != nil {
		return m.ReadFunc(n)
	}
	return NewBlankFrame(64, 48), nil
}

// Info returns the configured DeviceInfo.
func (m *MockDevice) Info() DeviceInfo {
	return m.DeviceInfo
}

// Close counts the call and returns CloseErr.
func (m *MockDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return m.CloseErr
}

// Reads returns how many times Read was called.
func (m *MockDevice) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Closes returns how many times Close was called.
func (m *MockDevice) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// NewBlankFrame returns a black ImageFrame of the given size.
func NewBlankFrame(w, h int) *ImageFrame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return &ImageFrame{img: img}
}

// RecordingFrame wraps a Frame and records draw calls.
type RecordingFrame struct {
	Frame

	mu        sync.Mutex
	Mirrored  int
	Polylines [][]image.Point
	Texts     []TextCall
	closed    int
}

// TextCall is one recorded Text invocation.
type TextCall struct {
	Text  string
	Org   image.Point
	Color color.RGBA
}

// NewRecordingFrame wraps a blank frame.
func NewRecordingFrame() *RecordingFrame {
	return &RecordingFrame{Frame: NewBlankFrame(64, 48)}
}

// Mirror records the flip and forwards it.
func (r *RecordingFrame) Mirror() {
	r.mu.Lock()
	r.Mirrored++
	r.mu.Unlock()
	r.Frame.Mirror()
}

// Polyline records the outline and forwards it.
func (r *RecordingFrame) Polyline(pts []image.Point, c color.RGBA, thickness int) {
	r.mu.Lock()
	r.Polylines = append(r.Polylines, append([]image.Point(nil), pts...))
	r.mu.Unlock()
	r.Frame.Polyline(pts, c, thickness)
}

// Text records the label and forwards it.
func (r *RecordingFrame) Text(s string, org image.Point, c color.RGBA, scale float64, thickness int) {
	r.mu.Lock()
	r.Texts = append(r.Texts, TextCall{Text: s, Org: org, Color: c})
	r.mu.Unlock()
	r.Frame.Text(s, org, c, scale, thickness)
}

// Close records the release.
func (r *RecordingFrame) Close() error {
	r.mu.Lock()
	r.closed++
	r.mu.Unlock()
	return r.Frame.Close()
}

// Closed reports how many times Close was called.
func (r *RecordingFrame) Closed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Verify mocks implement their interfaces at compile time.
var (
	_ Opener = (*MockOpener)(nil)
	_ Device = (*MockDevice)(nil)
	_ Frame  = (*RecordingFrame)(nil)
)
