package web

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/barcode-scanner/internal/httpc"
)

// parseAddr accepts "host:port", an http(s) URL or a ws(s) URL.
func parseAddr(addr string) (*url.URL, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("web: parse %q: %w", addr, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("web: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("web: missing host in %q", addr)
	}
	return u, nil
}

// DetectionsURL turns a dashboard address such as "localhost:8080" or
// "http://host:8080" into its detections websocket URL. Websocket URLs
// with a path are returned unchanged.
func DetectionsURL(addr string) (string, error) {
	u, err := parseAddr(addr)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws/detections"
	}
	return u.String(), nil
}

// StatusURL returns the /api/status URL of a dashboard.
func StatusURL(addr string) (string, error) {
	u, err := parseAddr(addr)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}
	u.Path = "/api/status"
	u.RawQuery = ""
	return u.String(), nil
}

// FetchStatus reads a dashboard's /api/status.
func FetchStatus(ctx context.Context, addr string) (Status, error) {
	var st Status
	statusURL, err := StatusURL(addr)
	if err != nil {
		return st, err
	}
	err = httpc.GetJSON(ctx, statusURL, &st)
	return st, err
}

// Watch follows a dashboard's detection stream and calls fn for every
// event until ctx is done or the server goes away. A clean close by the
// server and cancellation of ctx both return nil.
func Watch(ctx context.Context, addr string, fn func(DetectionEvent)) error {
	wsURL, err := DetectionsURL(addr)
	if err != nil {
		return err
	}

	conn, _, err := httpc.Dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("web: dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var ev DetectionEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return nil
			}
			return fmt.Errorf("web: read: %w", err)
		}
		fn(ev)
	}
}
