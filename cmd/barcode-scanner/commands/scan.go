package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/barcode-scanner/internal/log"
	"github.com/teslashibe/barcode-scanner/pkg/scanner"
	"github.com/teslashibe/barcode-scanner/pkg/vision"
	"github.com/teslashibe/barcode-scanner/pkg/web"
)

func runScan(cmd *cobra.Command, opts *options) error {
	cfg, err := opts.scannerConfig()
	if err != nil {
		return err
	}

	logger := log.Component("scanner")
	decoder, release, err := newDecoder(opts.decoder, logger)
	if err != nil {
		return err
	}
	defer release()

	var display scanner.Display = vision.NewWindow(vision.DefaultWindowTitle)
	if opts.headless {
		display = scanner.Headless{}
	}

	var (
		sc        *scanner.Scanner
		dashboard *web.Server
	)
	scanOpts := []scanner.Option{scanner.WithLogger(logger)}
	if opts.webAddr != "" {
		dashboard = web.NewServer(
			web.WithFPS(opts.webFPS),
			web.WithLogger(log.Component("web")),
			web.WithStats(func() scanner.Stats { return sc.Stats() }),
		)
		scanOpts = append(scanOpts, scanner.WithObserver(dashboard))
	}

	sc, err = scanner.New(cfg, vision.NewOpener(cfg.Camera), decoder, display, scanOpts...)
	if err != nil {
		return err
	}

	if dashboard != nil {
		go func() {
			if err := dashboard.Listen(opts.webAddr); err != nil {
				log.Warn("Web dashboard stopped", "addr", opts.webAddr, "error", err)
			}
		}()
		defer dashboard.Shutdown()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return sc.Run(ctx)
}
