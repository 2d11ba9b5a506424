package web

import (
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/barcode-scanner/pkg/barcode"
)

// HistorySize is how many detection events the dashboard keeps.
const HistorySize = 200

// DetectionEvent is one decoded symbol as published to subscribers.
type DetectionEvent struct {
	ID      string        `json:"id"`
	Session string        `json:"session"`
	Time    time.Time     `json:"time"`
	Text    string        `json:"text"`
	Format  string        `json:"format"`
	Polygon []image.Point `json:"polygon,omitempty"`
}

func newDetectionEvent(session string, at time.Time, sym barcode.Symbol) DetectionEvent {
	return DetectionEvent{
		ID:      uuid.NewString(),
		Session: session,
		Time:    at,
		Text:    sym.Text,
		Format:  sym.Format,
		Polygon: sym.Polygon,
	}
}

// history is a fixed-size ring of the most recent events.
type history struct {
	mu    sync.RWMutex
	buf   []DetectionEvent
	next  int
	full  bool
	total uint64
}

func newHistory(size int) *history {
	if size < 1 {
		size = 1
	}
	return &history{buf: make([]DetectionEvent, size)}
}

func (h *history) add(ev DetectionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf[h.next] = ev
	h.next = (h.next + 1) % len(h.buf)
	if h.next == 0 {
		h.full = true
	}
	h.total++
}

// list returns events oldest first.
func (h *history) list() []DetectionEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.full {
		return append([]DetectionEvent(nil), h.buf[:h.next]...)
	}
	out := make([]DetectionEvent, 0, len(h.buf))
	out = append(out, h.buf[h.next:]...)
	return append(out, h.buf[:h.next]...)
}

func (h *history) count() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}
