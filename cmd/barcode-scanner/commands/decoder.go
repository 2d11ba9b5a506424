package commands

import (
	"fmt"
	"log/slog"

	"github.com/teslashibe/barcode-scanner/pkg/barcode"
	"github.com/teslashibe/barcode-scanner/pkg/vision"
)

// newDecoder builds the named decoder. The returned func releases native
// resources and is never nil.
func newDecoder(name string, logger *slog.Logger) (barcode.Decoder, func(), error) {
	noop := func() {}
	switch name {
	case "", "zxing":
		return barcode.NewZXing(barcode.DefaultZXingConfig()), noop, nil
	case "opencv":
		qr := vision.NewQRDetector()
		return qr, func() { qr.Close() }, nil
	case "chain":
		qr := vision.NewQRDetector()
		chain, err := barcode.NewChainWithLogger(logger, barcode.NewZXing(barcode.DefaultZXingConfig()), qr)
		if err != nil {
			qr.Close()
			return nil, noop, err
		}
		return chain, func() { qr.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q (want zxing, opencv or chain)", barcode.ErrUnknownDecoder, name)
	}
}
