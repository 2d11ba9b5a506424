package hub

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type written struct {
	kind int
	data []byte
}

// fakeConn blocks ReadMessage until closed and records writes.
type fakeConn struct {
	mu      sync.Mutex
	writes  []written
	closed  chan struct{}
	once    sync.Once
	writeFn func(kind int) error
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("closed")
}

func (f *fakeConn) WriteMessage(kind int, data []byte) error {
	if f.writeFn != nil {
		if err := f.writeFn(kind); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, written{kind: kind, data: append([]byte(nil), data...)})
	return nil
}

func (f *fakeConn) SetReadLimit(int64) {}
func (f *fakeConn) SetReadDeadline(time.Time) error { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}
func (f *fakeConn) Close() error { f.once.Do(func() { close(f.closed) }); return nil }

func (f *fakeConn) Writes() []written {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]written(nil), f.writes...)
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := New("test")
	go h.Run()
	t.Cleanup(h.Stop)
	require.Eventually(t, h.IsRunning, time.Second, time.Millisecond)
	return h
}

func connect(t *testing.T, h *Hub) *fakeConn {
	t.Helper()
	conn := newFakeConn()
	c := NewClient(h, conn)
	require.NotNil(t, c)
	go c.Serve()
	return conn
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	h := startHub(t)
	a := connect(t, h)
	b := connect(t, h)
	require.Eventually(t, func() bool { return h.Len() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, h.BroadcastJSON(map[string]string{"text": "ABC123"}))
	h.BroadcastBinary([]byte{0xff, 0xd8})

	for _, conn := range []*fakeConn{a, b} {
		require.Eventually(t, func() bool { return len(conn.Writes()) == 2 }, time.Second, time.Millisecond)
		w := conn.Writes()
		assert.Equal(t, websocket.TextMessage, w[0].kind)
		assert.JSONEq(t, `{"text":"ABC123"}`, string(w[0].data))
		assert.Equal(t, websocket.BinaryMessage, w[1].kind)
		assert.Equal(t, []byte{0xff, 0xd8}, w[1].data)
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	h := startHub(t)
	conn := connect(t, h)
	require.Eventually(t, func() bool { return h.Len() == 1 }, time.Second, time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return h.Len() == 0 }, time.Second, time.Millisecond)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := startHub(t)

	block := make(chan struct{})
	conn := newFakeConn()
	conn.writeFn = func(kind int) error {
		if kind != websocket.CloseMessage {
			<-block
		}
		return nil
	}
	defer close(block)

	c := NewClient(h, conn)
	require.NotNil(t, c)
	go c.Serve()
	require.Eventually(t, func() bool { return h.Len() == 1 }, time.Second, time.Millisecond)

	// One message is held by the blocked writer, sendBuffer more fill the
	// queue, and the rest overflow it.
	for i := 0; i < sendBuffer*4; i++ {
		h.BroadcastBinary([]byte{byte(i)})
		time.Sleep(100 * time.Microsecond)
	}
	assert.Eventually(t, func() bool { return h.Len() == 0 }, time.Second, time.Millisecond)
}

func TestHub_StopDisconnectsClients(t *testing.T) {
	h := New("stop")
	go h.Run()
	require.Eventually(t, h.IsRunning, time.Second, time.Millisecond)

	conn := connect(t, h)
	require.Eventually(t, func() bool { return h.Len() == 1 }, time.Second, time.Millisecond)

	h.Stop()
	assert.False(t, h.IsRunning())
	assert.Equal(t, 0, h.Len())
	assert.Eventually(t, func() bool {
		w := conn.Writes()
		return len(w) > 0 && w[len(w)-1].kind == websocket.CloseMessage
	}, time.Second, time.Millisecond)

	// Calls after Stop are harmless.
	h.Stop()
	h.BroadcastBinary([]byte{1})
	assert.Nil(t, NewClient(h, newFakeConn()))
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	h := New("idle") // Run not started, queue fills up

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.BroadcastBinary(nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked")
	}
	assert.Greater(t, h.Dropped(), uint64(0))
}

func TestHub_BroadcastJSONError(t *testing.T) {
	h := New("json")
	assert.Error(t, h.BroadcastJSON(make(chan int)))
}

func TestMessageType_String(t *testing.T) {
	assert.Equal(t, "text", TextMessage.String())
	assert.Equal(t, "binary", BinaryMessage.String())
}

func TestClient_ServeWaitsForWriter(t *testing.T) {
	h := startHub(t)

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	conn := newFakeConn()
	conn.writeFn = func(kind int) error {
		if kind == websocket.BinaryMessage {
			entered <- struct{}{}
			<-release
		}
		return nil
	}

	c := NewClient(h, conn)
	require.NotNil(t, c)
	served := make(chan struct{})
	go func() {
		c.Serve()
		close(served)
	}()
	require.Eventually(t, func() bool { return h.Len() == 1 }, time.Second, time.Millisecond)

	h.BroadcastBinary([]byte{1})
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("writer never started")
	}

	// The reader ends while the writer is still inside WriteMessage.
	conn.Close()
	select {
	case <-served:
		t.Fatal("Serve returned while the writer still held the connection")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after the writer stopped")
	}
}
