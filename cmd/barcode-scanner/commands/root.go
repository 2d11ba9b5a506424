// Package commands wires the barcode-scanner CLI.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/barcode-scanner/internal/config"
	"github.com/teslashibe/barcode-scanner/internal/log"
	"github.com/teslashibe/barcode-scanner/pkg/camera"
	"github.com/teslashibe/barcode-scanner/pkg/scanner"
	"github.com/teslashibe/barcode-scanner/pkg/web"
)

// noDeviceMessage is printed when every camera index and backend fails.
const noDeviceMessage = "Error: Could not open any camera. Please check if the camera is connected and not in use by another application."

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
)

type options struct {
	probeCount int
	backends   string
	preset     string
	width      int
	height     int
	decoder    string
	logLevel   string
	webAddr    string
	webFPS     int
	headless   bool
	warmUp     time.Duration
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return exitCode(root.Execute(), stderr)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "barcode-scanner",
		Short:         "Scan barcodes and QR codes from a webcam",
		Long:          "Opens the first working camera, decodes barcodes and QR codes in every frame, and shows the annotated live video. Press q in the window to quit.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Init(opts.logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts)
		},
	}

	probeCount, err := config.ProbeCount()
	if err != nil {
		probeCount = config.DefaultProbeCount
	}
	width, height, err := config.Resolution()
	if err != nil {
		width, height = 0, 0
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", config.LogLevel(), "log level: debug, info, warn, error")
	pf.StringVar(&opts.decoder, "decoder", config.Decoder(), "decoder: zxing, opencv or chain")
	pf.IntVar(&opts.probeCount, "camera-indices", probeCount, "number of camera indices to probe per backend")
	pf.StringVar(&opts.backends, "backends", config.Backends(), "comma-separated capture backends, tried in order")
	pf.StringVar(&opts.preset, "preset", "", "resolution preset: "+fmt.Sprint(camera.PresetNames()))
	pf.IntVar(&opts.width, "width", width, "requested capture width (0 keeps the driver default)")
	pf.IntVar(&opts.height, "height", height, "requested capture height (0 keeps the driver default)")

	f := root.Flags()
	f.StringVar(&opts.webAddr, "web", config.WebAddr(), "serve a live dashboard on this address, e.g. :8080")
	f.IntVar(&opts.webFPS, "web-fps", web.DefaultFPS, "maximum frames per second sent to the dashboard")
	f.BoolVar(&opts.headless, "headless", false, "do not open a window (use with --web)")
	f.DurationVar(&opts.warmUp, "warmup", scanner.DefaultConfig().WarmUp, "pause after opening the camera")

	root.AddCommand(
		newDevicesCmd(opts),
		newDecodeCmd(opts),
		newWatchCmd(),
	)
	return root
}

// scannerConfig merges flags over defaults.
func (o *options) scannerConfig() (scanner.Config, error) {
	cfg := scanner.DefaultConfig()

	if o.preset != "" {
		preset, err := camera.Preset(o.preset)
		if err != nil {
			return cfg, err
		}
		cfg.Camera = preset
	}
	backends, err := camera.ParseBackends(o.backends)
	if err != nil {
		return cfg, err
	}
	cfg.Camera.Backends = backends
	cfg.Camera.Indices = o.probeCount
	if o.width > 0 {
		cfg.Camera.Width = o.width
	}
	if o.height > 0 {
		cfg.Camera.Height = o.height
	}
	cfg.WarmUp = o.warmUp

	return cfg, cfg.Validate()
}

// exitCode maps a command error to the process exit code. An interrupt is
// a normal way to stop and exits 0.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil, errors.Is(err, scanner.ErrInterrupted):
		return exitOK
	case errors.Is(err, camera.ErrNoDevice):
		fmt.Fprintln(stderr, noDeviceMessage)
		return exitError
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
}
