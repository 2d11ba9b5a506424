// Package scanner runs the capture-detect-render loop: it acquires a
// camera, then reads, mirrors, decodes, annotates and displays frames until
// the quit key, an interrupt, or an error, and always releases the camera.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/barcode-scanner/pkg/barcode"
	"github.com/teslashibe/barcode-scanner/pkg/camera"
	"github.com/teslashibe/barcode-scanner/pkg/overlay"
)

// Stats is a snapshot of scanner progress.
type Stats struct {
	State        State             `json:"state"`
	Device       camera.DeviceInfo `json:"device"`
	Frames       uint64            `json:"frames"`
	ReadFailures uint64            `json:"read_failures"`
	Detections   uint64            `json:"detections"`
	StartedAt    time.Time         `json:"started_at,omitempty"`
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithObserver adds an observer notified for every processed frame.
func WithObserver(o Observer) Option {
	return func(s *Scanner) {
		s.observers = append(s.observers, o)
	}
}

// WithSleep replaces the context-aware sleep used for warm-up and read
// retries. Tests use it to avoid real delays.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Scanner) {
		s.sleep = fn
	}
}

// Scanner owns one camera device for the duration of Run.
type Scanner struct {
	cfg       Config
	opener    camera.Opener
	decoder   barcode.Decoder
	display   Display
	logger    *slog.Logger
	observers []Observer
	sleep     func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	started bool
	device  camera.Device
	stats   Stats

	closeOnce sync.Once
	closeErr  error
}

// New creates a scanner. Nothing is opened until Run.
func New(cfg Config, opener camera.Opener, decoder barcode.Decoder, display Display, opts ...Option) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opener == nil || decoder == nil || display == nil {
		return nil, fmt.Errorf("scanner: opener, decoder and display are required")
	}

	s := &Scanner{
		cfg:     cfg,
		opener:  opener,
		decoder: decoder,
		display: display,
		logger:  slog.Default(),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "scanner")
	return s, nil
}

// Run acquires a camera and drives the loop until the quit key (nil),
// context cancellation (ErrInterrupted) or a failure. Cleanup runs before
// Run returns on every path, including a panic in a collaborator.
// Acquisition failure returns camera.ErrNoDevice without entering the loop.
func (s *Scanner) Run(ctx context.Context) (err error) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	if s.stats.State == StateClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.started = true
	s.mu.Unlock()

	s.setState(StateAcquiring)
	dev, err := camera.Acquire(ctx, s.opener, s.cfg.Camera, s.logger)
	if err != nil {
		// Nothing was opened, so there is nothing to drain.
		s.closeOnce.Do(func() {})
		s.setState(StateClosed)
		if ctx.Err() != nil {
			s.logger.Info("Program interrupted by user")
			return ErrInterrupted
		}
		return err
	}

	s.mu.Lock()
	s.device = dev
	s.stats.Device = dev.Info()
	s.stats.StartedAt = time.Now()
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scanner: panic: %v", r)
		}
		switch {
		case err == nil:
		case errors.Is(err, ErrInterrupted):
			s.logger.Info("Program interrupted by user")
		default:
			s.logger.Error("An error occurred", "error", err)
		}
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := s.sleep(ctx, s.cfg.WarmUp); err != nil {
		return ErrInterrupted
	}

	s.setState(StateRunning)
	return s.loop(ctx, dev)
}

func (s *Scanner) loop(ctx context.Context, dev camera.Device) error {
	for {
		if ctx.Err() != nil {
			return ErrInterrupted
		}

		frame, err := dev.Read()
		if err != nil || frame == nil {
			s.mu.Lock()
			s.stats.ReadFailures++
			s.mu.Unlock()
			s.logger.Warn("Failed to read frame from camera, retrying", "error", err)
			if err := s.sleep(ctx, s.cfg.ReadRetryDelay); err != nil {
				return ErrInterrupted
			}
			continue
		}

		quit, err := s.process(frame)
		if err != nil {
			return err
		}
		if quit {
			s.logger.Info("Quit key pressed")
			return nil
		}
	}
}

// process handles one frame and reports whether the quit key was pressed.
func (s *Scanner) process(frame camera.Frame) (bool, error) {
	defer frame.Close()

	frame.Mirror()

	symbols, err := s.decoder.Decode(frame)
	if err != nil {
		return false, fmt.Errorf("scanner: decode: %w", err)
	}

	drawn := overlay.Annotate(frame, symbols, s.cfg.Style)
	for _, sym := range drawn {
		s.logger.Info("Detected barcode", "text", sym.Text, "format", sym.Format)
	}

	s.mu.Lock()
	s.stats.Frames++
	s.stats.Detections += uint64(len(drawn))
	s.mu.Unlock()

	for _, o := range s.observers {
		o.OnFrame(frame, drawn)
	}

	if err := s.display.Show(frame); err != nil {
		return false, fmt.Errorf("scanner: display: %w", err)
	}

	key := s.display.PollKey(s.cfg.KeyPollTimeout)
	return key >= 0 && rune(key&0xff) == s.cfg.QuitKey, nil
}

// Close releases the camera and tears down the display. It runs once;
// later calls return the first result. Run calls it itself, so callers
// only need it when Run was never started.
func (s *Scanner) Close() error {
	s.closeOnce.Do(func() {
		s.setState(StateDraining)
		s.logger.Info("Cleaning up resources")

		s.mu.Lock()
		dev := s.device
		s.device = nil
		s.mu.Unlock()

		var errs []error
		if dev != nil {
			if err := dev.Close(); err != nil {
				errs = append(errs, fmt.Errorf("release camera: %w", err))
			}
		}
		if err := s.display.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close display: %w", err))
		}
		s.closeErr = errors.Join(errs...)
		s.setState(StateClosed)
	})
	return s.closeErr
}

// State returns the current lifecycle state.
func (s *Scanner) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.State
}

// Stats returns a snapshot of counters.
func (s *Scanner) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Scanner) setState(state State) {
	s.mu.Lock()
	s.stats.State = state
	s.mu.Unlock()
	s.logger.Debug("state changed", "state", state.String())
}
