package vision

import (
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/barcode-scanner/pkg/camera"
)

// DefaultWindowTitle is the title of the live view.
const DefaultWindowTitle = "Barcode Scanner"

// Window is an OpenCV HighGUI window. It is created on the first Show, so
// a scanner that never acquires a camera never opens a window.
type Window struct {
	title string

	mu     sync.Mutex
	win    *gocv.Window
	closed bool
}

// NewWindow prepares a window with the given title.
func NewWindow(title string) *Window {
	if title == "" {
		title = DefaultWindowTitle
	}
	return &Window{title: title}
}

// Show displays the frame.
func (w *Window) Show(frame camera.Frame) error {
	mat, release, err := matOf(frame)
	if err != nil {
		return err
	}
	defer release()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	if w.win == nil {
		w.win = gocv.NewWindow(w.title)
	}
	if err := w.win.IMShow(mat); err != nil {
		return fmt.Errorf("vision: show: %w", err)
	}
	return nil
}

// PollKey pumps the GUI event loop for up to timeout and returns the
// pressed key, or -1.
func (w *Window) PollKey(timeout time.Duration) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.win == nil || w.closed {
		return -1
	}
	ms := int(timeout / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return w.win.WaitKey(ms)
}

// Close destroys the window. Later calls are no-ops.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.win == nil {
		return nil
	}
	err := w.win.Close()
	w.win = nil
	return err
}
