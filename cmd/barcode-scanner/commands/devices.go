package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teslashibe/barcode-scanner/pkg/camera"
)

func newDevicesCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List capture devices and the order they are probed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.scannerConfig()
			if err != nil {
				return err
			}
			devices, err := camera.ListDevices()
			if err != nil && !errors.Is(err, camera.ErrUnsupported) {
				return err
			}
			plan := camera.Plan(cfg.Camera)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Devices []camera.VideoDevice `json:"devices"`
					Plan    []camera.DeviceInfo  `json:"plan"`
				}{devices, plan})
			}
			printDevices(out, devices, err)
			printPlan(out, plan)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printDevices(w io.Writer, devices []camera.VideoDevice, listErr error) {
	fmt.Fprintln(w, "Devices:")
	switch {
	case listErr != nil:
		fmt.Fprintf(w, "  (%v)\n", listErr)
	case len(devices) == 0:
		fmt.Fprintln(w, "  none found")
	}
	for _, d := range devices {
		if d.Err != "" {
			fmt.Fprintf(w, "  %d  %s  error: %s\n", d.Index, d.Path, d.Err)
			continue
		}
		fmt.Fprintf(w, "  %d  %s  %s\n", d.Index, d.Path, strings.Join(d.Formats, ", "))
	}
}

func printPlan(w io.Writer, plan []camera.DeviceInfo) {
	fmt.Fprintln(w, "Probe order:")
	for i, p := range plan {
		fmt.Fprintf(w, "  %d. %s\n", i+1, p)
	}
}
