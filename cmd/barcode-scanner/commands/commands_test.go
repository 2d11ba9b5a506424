package commands

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/barcode-scanner/pkg/barcode"
	"github.com/teslashibe/barcode-scanner/pkg/camera"
	"github.com/teslashibe/barcode-scanner/pkg/scanner"
	"github.com/teslashibe/barcode-scanner/pkg/web"
)

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeQR(t *testing.T, text string) string {
	t.Helper()
	bm, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, 200, 200, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "qr.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, bm))
	return path
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    int
		message string
	}{
		{name: "quit", err: nil, want: 0},
		{name: "interrupt", err: scanner.ErrInterrupted, want: 0},
		{name: "wrapped interrupt", err: fmt.Errorf("run: %w", scanner.ErrInterrupted), want: 0},
		{name: "no device", err: camera.ErrNoDevice, want: 1, message: noDeviceMessage},
		{name: "other", err: fmt.Errorf("boom"), want: 1, message: "Error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, tt.want, exitCode(tt.err, &stderr))
			if tt.message == "" {
				assert.Empty(t, stderr.String())
				return
			}
			assert.Contains(t, stderr.String(), tt.message)
		})
	}
}

func TestScannerConfig_Defaults(t *testing.T) {
	opts := &options{probeCount: 3, backends: "default,dshow", warmUp: 2 * time.Second}

	cfg, err := opts.scannerConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Camera.Indices)
	assert.Equal(t, []camera.Backend{camera.BackendDefault, camera.BackendDirectShow}, cfg.Camera.Backends)
	assert.Equal(t, 'q', cfg.QuitKey)
	assert.Equal(t, 500*time.Millisecond, cfg.ReadRetryDelay)
}

func TestScannerConfig_PresetAndOverrides(t *testing.T) {
	opts := &options{probeCount: 5, backends: "v4l2", preset: "720p", height: 600}

	cfg, err := opts.scannerConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Camera.Indices)
	assert.Equal(t, []camera.Backend{camera.BackendV4L2}, cfg.Camera.Backends)
	assert.Equal(t, 1280, cfg.Camera.Width)
	assert.Equal(t, 600, cfg.Camera.Height)
	assert.Zero(t, cfg.WarmUp)
}

func TestScannerConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opts options
	}{
		{name: "preset", opts: options{probeCount: 3, backends: "default", preset: "8k"}},
		{name: "backend", opts: options{probeCount: 3, backends: "betamax"}},
		{name: "indices", opts: options{probeCount: 0, backends: "default"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.opts.scannerConfig()
			assert.Error(t, err)
		})
	}
}

func TestDecodeCommand(t *testing.T) {
	path := writeQR(t, "HELLO-DECODE")

	var stdout, stderr bytes.Buffer
	code := run([]string{"decode", "--decoder", "zxing", path}, &stdout, &stderr)

	assert.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "QR_CODE HELLO-DECODE")
}

func TestDecodeCommand_MissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"decode", filepath.Join(t.TempDir(), "missing.png")}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "missing.png")
}

func TestDecodeCommand_UnknownDecoder(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"decode", "--decoder", "magic", "x.png"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "magic")
}

func TestDevicesCommand_PrintsPlan(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"devices", "--camera-indices", "2", "--backends", "default,dshow"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "Probe order:")
	assert.Contains(t, out, "1. index 0")
	assert.Contains(t, out, "4. index 1 with DirectShow")
}

func TestRootRejectsArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"unexpected"}, &stdout, &stderr))
}

func TestWatchCommand(t *testing.T) {
	srv := web.NewServer()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(ln)
	addr := ln.Addr().String()

	var stdout, stderr syncBuffer
	done := make(chan int, 1)
	go func() { done <- run([]string{"watch", addr}, &stdout, &stderr) }()

	require.Eventually(t, func() bool {
		st, err := web.FetchStatus(context.Background(), addr)
		return err == nil && st.Subscribers == 1
	}, 3*time.Second, 10*time.Millisecond)

	srv.Publish([]barcode.Symbol{barcode.NewSymbol("REMOTE-42")})
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(stdout.String()), []byte("QR_CODE REMOTE-42"))
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Shutdown())
	select {
	case code := <-done:
		assert.Equal(t, 0, code, stderr.String())
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not exit after the dashboard shut down")
	}
}

func TestWatchCommand_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"watch", addr}, &stdout, &stderr))
}
