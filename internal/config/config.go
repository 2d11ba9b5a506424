// Package config reads barcode-scanner settings from the environment.
// Command-line flags take precedence; see cmd/barcode-scanner.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvProbeCount = "CAMERA_PROBE_COUNT"
	EnvBackends   = "CAMERA_BACKENDS"
	EnvWidth      = "CAMERA_WIDTH"
	EnvHeight     = "CAMERA_HEIGHT"
	EnvDecoder    = "SCANNER_DECODER"
	EnvWebAddr    = "SCANNER_WEB_ADDR"
	EnvLogLevel   = "LOG_LEVEL"
)

// Defaults used when neither flag nor environment sets a value.
const (
	DefaultProbeCount = 3
	DefaultBackends   = "default,dshow"
	DefaultDecoder    = "zxing"
	DefaultLogLevel   = "info"
)

// String returns the value of key, or def if unset or empty.
func String(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Int returns key parsed as an integer, or def if unset. A value that is
// set but not a number is an error.
func Int(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("config: %s=%q is not an integer", key, v)
	}
	return n, nil
}

// ProbeCount returns how many camera indices to try.
func ProbeCount() (int, error) {
	n, err := Int(EnvProbeCount, DefaultProbeCount)
	if err != nil {
		return n, err
	}
	if n < 1 {
		return DefaultProbeCount, fmt.Errorf("config: %s must be at least 1, got %d", EnvProbeCount, n)
	}
	return n, nil
}

// Backends returns the comma-separated backend list.
func Backends() string {
	return String(EnvBackends, DefaultBackends)
}

// Resolution returns the requested capture size. Zero means the camera
// default.
func Resolution() (width, height int, err error) {
	if width, err = Int(EnvWidth, 0); err != nil {
		return 0, 0, err
	}
	if height, err = Int(EnvHeight, 0); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

// Decoder returns the decoder name.
func Decoder() string {
	return strings.ToLower(String(EnvDecoder, DefaultDecoder))
}

// WebAddr returns the dashboard listen address, empty when disabled.
func WebAddr() string {
	return String(EnvWebAddr, "")
}

// LogLevel returns the log level name.
func LogLevel() string {
	return String(EnvLogLevel, DefaultLogLevel)
}
