// Package web serves an optional live dashboard for a running scanner:
// annotated frames and detection events over websockets plus a small JSON
// API. It also contains a client for following a remote dashboard.
package web

import (
	"bytes"
	_ "embed"
	"image/jpeg"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"

	"github.com/teslashibe/barcode-scanner/internal/log"
	"github.com/teslashibe/barcode-scanner/pkg/barcode"
	"github.com/teslashibe/barcode-scanner/pkg/camera"
	"github.com/teslashibe/barcode-scanner/pkg/hub"
	"github.com/teslashibe/barcode-scanner/pkg/scanner"
)

//go:embed static/index.html
var indexHTML []byte

// DefaultFPS is the camera stream rate when none is configured.
const DefaultFPS = 10

// jpegQuality is used when a frame cannot encode itself.
const jpegQuality = 75

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFPS caps the camera stream rate. Zero or less disables frames.
func WithFPS(fps int) Option {
	return func(s *Server) {
		s.fps = fps
	}
}

// WithStats sets the source for /api/status.
func WithStats(fn func() scanner.Stats) Option {
	return func(s *Server) {
		s.stats = fn
	}
}

// Server is the dashboard. It implements scanner.Observer.
type Server struct {
	app     *fiber.App
	logger  *slog.Logger
	session string
	started time.Time
	fps     int
	stats   func() scanner.Stats
	now     func() time.Time

	cameraHub     *hub.Hub
	detectionsHub *hub.Hub
	history       *history

	frameMu   sync.Mutex
	lastFrame time.Time

	startOnce sync.Once
	stopOnce  sync.Once
}

// jpegEncoder is implemented by frames that can encode themselves without
// a round trip through image.Image.
type jpegEncoder interface {
	JPEG() ([]byte, error)
}

// Status is the /api/status payload.
type Status struct {
	Session     string         `json:"session"`
	StartedAt   time.Time      `json:"started_at"`
	Uptime      string         `json:"uptime"`
	Viewers     int            `json:"viewers"`
	Subscribers int            `json:"subscribers"`
	Events      uint64         `json:"events"`
	Scanner     *scanner.Stats `json:"scanner,omitempty"`
}

// NewServer creates a dashboard. Nothing listens until Serve or Listen.
func NewServer(opts ...Option) *Server {
	s := &Server{
		logger:  log.Component("web"),
		session: uuid.NewString(),
		fps:     DefaultFPS,
		now:     time.Now,
		history: newHistory(HistorySize),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.started = s.now()
	s.cameraHub = hub.New("camera", hub.WithLogger(s.logger))
	s.detectionsHub = hub.New("detections", hub.WithLogger(s.logger))

	app := fiber.New(fiber.Config{
		AppName:               "Barcode Scanner",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/detections", s.handleDetections)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/camera", websocket.New(s.subscribe(s.cameraHub)))
	app.Get("/ws/detections", websocket.New(s.subscribe(s.detectionsHub)))

	s.app = app
	return s
}

// Session returns the ID stamped on every event from this server.
func (s *Server) Session() string {
	return s.session
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) start() {
	s.startOnce.Do(func() {
		go s.cameraHub.Run()
		go s.detectionsHub.Run()
	})
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.start()
	s.logger.Info("Web dashboard listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Shutdown stops the HTTP server and disconnects all subscribers.
func (s *Server) Shutdown() error {
	var err error
	s.stopOnce.Do(func() {
		s.cameraHub.Stop()
		s.detectionsHub.Stop()
		err = s.app.Shutdown()
	})
	return err
}

// OnFrame records and broadcasts the frame's symbols and, when someone is
// watching and the rate allows, a JPEG of the annotated frame. It does not
// keep the frame.
func (s *Server) OnFrame(frame camera.Frame, symbols []barcode.Symbol) {
	s.Publish(symbols)

	if s.fps <= 0 || s.cameraHub.Len() == 0 || !s.frameDue() {
		return
	}
	data, err := encodeJPEG(frame)
	if err != nil {
		s.logger.Debug("Failed to encode frame", "error", err)
		return
	}
	s.cameraHub.BroadcastBinary(data)
}

// Publish records symbols with a payload as detection events.
func (s *Server) Publish(symbols []barcode.Symbol) {
	at := s.now()
	for _, sym := range symbols {
		if !sym.HasPayload() {
			continue
		}
		ev := newDetectionEvent(s.session, at, sym)
		s.history.add(ev)
		if err := s.detectionsHub.BroadcastJSON(ev); err != nil {
			s.logger.Debug("Failed to broadcast detection", "error", err)
		}
	}
}

// Detections returns the retained events, oldest first.
func (s *Server) Detections() []DetectionEvent {
	return s.history.list()
}

func (s *Server) frameDue() bool {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	now := s.now()
	if !s.lastFrame.IsZero() && now.Sub(s.lastFrame) < time.Second/time.Duration(s.fps) {
		return false
	}
	s.lastFrame = now
	return true
}

func (s *Server) subscribe(h *hub.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		client := hub.NewClient(h, c)
		if client == nil {
			return
		}
		client.Serve()
	}
}

func encodeJPEG(frame camera.Frame) ([]byte, error) {
	if enc, ok := frame.(jpegEncoder); ok {
		return enc.JPEG()
	}
	img, err := frame.Image()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ scanner.Observer = (*Server)(nil)
