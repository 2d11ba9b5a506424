package camera

import "fmt"

// Config controls how Acquire searches for a device.
type Config struct {
	// Indices is how many device indices to probe per backend (0..Indices-1).
	Indices int

	// Backends are tried in order; each is a full pass over all indices.
	Backends []Backend

	// Width and Height request a capture resolution. Zero keeps the
	// driver default.
	Width  int
	Height int
}

// DefaultConfig probes indices 0-2, first with the platform default
// backend and then with DirectShow.
func DefaultConfig() Config {
	return Config{
		Indices:  3,
		Backends: []Backend{BackendDefault, BackendDirectShow},
	}
}

// Validate checks the search space is non-empty and the resolution sane.
func (c Config) Validate() error {
	if c.Indices < 1 {
		return fmt.Errorf("camera: indices must be at least 1, got %d", c.Indices)
	}
	if len(c.Backends) == 0 {
		return fmt.Errorf("camera: at least one backend is required")
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("camera: resolution must not be negative (%dx%d)", c.Width, c.Height)
	}
	return nil
}

// Plan returns the probe order: backend-major, index-minor.
func Plan(cfg Config) []DeviceInfo {
	plan := make([]DeviceInfo, 0, cfg.Indices*len(cfg.Backends))
	for _, b := range cfg.Backends {
		for i := 0; i < cfg.Indices; i++ {
			plan = append(plan, DeviceInfo{Index: i, Backend: b})
		}
	}
	return plan
}
