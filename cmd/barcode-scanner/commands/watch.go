package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/barcode-scanner/internal/log"
	"github.com/teslashibe/barcode-scanner/pkg/web"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <dashboard-address>",
		Short: "Print detections from a scanner running with --web",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := web.FetchStatus(ctx, args[0])
			if err != nil {
				return err
			}
			attrs := []any{"addr", args[0], "session", st.Session, "events", st.Events}
			if st.Scanner != nil {
				attrs = append(attrs, "state", st.Scanner.State.String(), "device", st.Scanner.Device.String())
			}
			log.Info("Watching dashboard", attrs...)

			out := cmd.OutOrStdout()
			return web.Watch(ctx, args[0], func(ev web.DetectionEvent) {
				fmt.Fprintf(out, "%s %s %s\n", ev.Time.Local().Format(time.TimeOnly), ev.Format, ev.Text)
			})
		},
	}
}
