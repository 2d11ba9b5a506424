package barcode

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for decoder conditions.
var (
	// ErrNoDecoders is returned when a chain is built without decoders.
	ErrNoDecoders = errors.New("barcode: no decoders configured")

	// ErrUnknownDecoder is returned for an unrecognised decoder name.
	ErrUnknownDecoder = errors.New("barcode: unknown decoder")
)

// ChainError collects the failures of every decoder in a chain.
type ChainError struct {
	Errors []error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("barcode: all %d decoders failed: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual failures to errors.Is/As.
func (e *ChainError) Unwrap() []error {
	return e.Errors
}
