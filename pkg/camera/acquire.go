package camera

import (
	"context"
	"log/slog"
)

// Acquire walks the probe plan and returns the first device that opens
// and delivers a trial frame. Devices that open but cannot read are closed
// before moving on. It returns ErrNoDevice when the plan is exhausted.
func Acquire(ctx context.Context, opener Opener, cfg Config, logger *slog.Logger) (Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "camera.acquire")

	for _, p := range Plan(cfg) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logger.Info("Attempting to open camera", probeAttrs(p)...)

		dev, err := opener.Open(p.Index, p.Backend)
		if err != nil || dev == nil {
			logger.Debug("open failed", append(probeAttrs(p), "error", err)...)
			continue
		}

		if trialRead(dev) {
			logger.Info("Successfully opened camera", probeAttrs(p)...)
			return dev, nil
		}

		logger.Debug("trial read failed", probeAttrs(p)...)
		if err := dev.Close(); err != nil {
			logger.Debug("close after failed trial read", append(probeAttrs(p), "error", err)...)
		}
	}

	return nil, ErrNoDevice
}

func trialRead(dev Device) bool {
	frame, err := dev.Read()
	if err != nil || frame == nil {
		return false
	}
	frame.Close()
	return true
}

func probeAttrs(p DeviceInfo) []any {
	if p.Backend == BackendDefault {
		return []any{"index", p.Index}
	}
	return []any{"index", p.Index, "backend", p.Backend.String()}
}
