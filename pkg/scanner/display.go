package scanner

import (
	"context"
	"time"

	"github.com/teslashibe/barcode-scanner/pkg/barcode"
	"github.com/teslashibe/barcode-scanner/pkg/camera"
)

// Display shows annotated frames and reports key presses.
type Display interface {
	// Show renders the frame. The frame is only valid during the call.
	Show(frame camera.Frame) error

	// PollKey waits up to timeout for a key and returns its code, or -1.
	PollKey(timeout time.Duration) int

	// Close tears down any windows. Closing twice is a no-op.
	Close() error
}

// Observer is notified after each frame is annotated, before it is shown.
// Implementations must not retain the frame and must not block.
type Observer interface {
	OnFrame(frame camera.Frame, symbols []barcode.Symbol)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(frame camera.Frame, symbols []barcode.Symbol)

// OnFrame calls f.
func (f ObserverFunc) OnFrame(frame camera.Frame, symbols []barcode.Symbol) {
	f(frame, symbols)
}

// Headless is a Display without a window, for running with only the web
// dashboard. It never reports a key, so the loop ends on interrupt.
type Headless struct{}

// Show discards the frame.
func (Headless) Show(camera.Frame) error { return nil }

// PollKey sleeps for timeout and reports no key.
func (Headless) PollKey(timeout time.Duration) int {
	time.Sleep(timeout)
	return -1
}

// Close is a no-op.
func (Headless) Close() error { return nil }

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ Display = Headless{}
