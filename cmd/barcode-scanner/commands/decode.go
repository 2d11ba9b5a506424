package commands

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/teslashibe/barcode-scanner/internal/log"
	"github.com/teslashibe/barcode-scanner/pkg/barcode"
	"github.com/teslashibe/barcode-scanner/pkg/camera"
)

func newDecodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <image>...",
		Short: "Decode barcodes and QR codes in still images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.Component("decode")
			decoder, release, err := newDecoder(opts.decoder, logger)
			if err != nil {
				return err
			}
			defer release()

			var errs []error
			for _, path := range args {
				symbols, err := decodeFile(decoder, path)
				if err != nil {
					logger.Error("Failed to decode image", "path", path, "error", err)
					errs = append(errs, err)
					continue
				}
				if len(symbols) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: no barcode found\n", path)
					continue
				}
				for _, sym := range symbols {
					logger.Info("Detected barcode", "path", path, "text", sym.Text, "format", sym.Format)
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", path, sym.Format, sym.Text)
				}
			}
			return errors.Join(errs...)
		},
	}
}

// decodeFile decodes one image file and returns the symbols with a payload.
func decodeFile(decoder barcode.Decoder, path string) ([]barcode.Symbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	frame := camera.NewImageFrame(img)
	defer frame.Close()

	symbols, err := decoder.Decode(frame)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out := symbols[:0]
	for _, sym := range symbols {
		if sym.HasPayload() {
			out = append(out, sym)
		}
	}
	return out, nil
}
