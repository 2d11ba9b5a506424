package scanner

import "errors"

// ErrInterrupted is returned by Run when the context is cancelled, e.g. by
// SIGINT. It is an orderly stop, not a failure.
var ErrInterrupted = errors.New("scanner: interrupted")

// ErrAlreadyRunning is returned when Run is called more than once.
var ErrAlreadyRunning = errors.New("scanner: already started")

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("scanner: closed")
