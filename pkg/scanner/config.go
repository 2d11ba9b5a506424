package scanner

import (
	"fmt"
	"time"

	"github.com/teslashibe/barcode-scanner/pkg/camera"
	"github.com/teslashibe/barcode-scanner/pkg/overlay"
)

// Config holds scanner loop configuration.
type Config struct {
	Camera camera.Config
	Style  overlay.Style

	// QuitKey ends the loop when pressed in the display window.
	QuitKey rune

	// ReadRetryDelay is the pause after a failed frame read.
	ReadRetryDelay time.Duration

	// KeyPollTimeout bounds each key poll.
	KeyPollTimeout time.Duration

	// WarmUp is a pause between acquiring the camera and the first read,
	// giving auto-exposure time to settle.
	WarmUp time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Camera:         camera.DefaultConfig(),
		Style:          overlay.DefaultStyle(),
		QuitKey:        'q',
		ReadRetryDelay: 500 * time.Millisecond,
		KeyPollTimeout: time.Millisecond,
		WarmUp:         2 * time.Second,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Camera.Validate(); err != nil {
		return err
	}
	if c.ReadRetryDelay < 0 || c.KeyPollTimeout < 0 || c.WarmUp < 0 {
		return fmt.Errorf("scanner: durations must not be negative")
	}
	if c.QuitKey == 0 {
		return fmt.Errorf("scanner: quit key is required")
	}
	return nil
}
