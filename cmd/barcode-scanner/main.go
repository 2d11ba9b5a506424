// Command barcode-scanner opens a webcam and shows barcodes and QR codes
// it finds in the live picture.
//
// Usage:
//
//	barcode-scanner                     # scan with the first working camera
//	barcode-scanner --web :8080         # also serve a live dashboard
//	barcode-scanner devices             # list cameras and the probe order
//	barcode-scanner decode a.png b.jpg  # decode still images
//	barcode-scanner watch localhost:8080
package main

import (
	"os"

	"github.com/teslashibe/barcode-scanner/cmd/barcode-scanner/commands"
)

func main() {
	os.Exit(commands.Execute())
}
