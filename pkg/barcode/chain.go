package barcode

import (
	"log/slog"

	"github.com/teslashibe/barcode-scanner/pkg/camera"
)

// Chain tries multiple decoders in order until one finds something.
type Chain struct {
	decoders []Decoder
	logger   *slog.Logger
}

// NewChain creates a decoder chain.
// At least one decoder is required.
func NewChain(decoders ...Decoder) (*Chain, error) {
	if len(decoders) == 0 {
		return nil, ErrNoDecoders
	}
	return &Chain{
		decoders: decoders,
		logger:   slog.Default().With("component", "barcode.chain"),
	}, nil
}

// NewChainWithLogger creates a decoder chain with a custom logger.
func NewChainWithLogger(logger *slog.Logger, decoders ...Decoder) (*Chain, error) {
	chain, err := NewChain(decoders...)
	if err != nil {
		return nil, err
	}
	chain.logger = logger.With("component", "barcode.chain")
	return chain, nil
}

// Decode returns the first non-empty result. An empty result is returned
// when at least one decoder succeeded but found nothing; a ChainError only
// when every decoder failed.
func (c *Chain) Decode(frame camera.Frame) ([]Symbol, error) {
	var errs []error

	for i, d := range c.decoders {
		symbols, err := d.Decode(frame)
		if err != nil {
			errs = append(errs, err)
			c.logger.Warn("decoder failed, trying next",
				"decoder_index", i,
				"error", err,
			)
			continue
		}
		if len(symbols) > 0 {
			if i > 0 {
				c.logger.Debug("fallback decoder found symbols",
					"decoder_index", i,
					"count", len(symbols),
				)
			}
			return symbols, nil
		}
	}

	if len(errs) == len(c.decoders) {
		return nil, &ChainError{Errors: errs}
	}
	return nil, nil
}

var _ Decoder = (*Chain)(nil)
