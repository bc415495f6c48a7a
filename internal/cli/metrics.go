package cli

import (
	"github.com/spf13/cobra"

	"github.com/smallyu/go-curves/internal/telemetry"
)

func (a *app) metricsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print the process counters, or serve them for Prometheus with --listen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString(listenFlag)
			if addr == "" {
				addr = a.cfg.MetricsAddr
			}
			if addr != "" {
				return telemetry.Serve(addr)
			}
			samples, err := telemetry.Snapshot()
			if err != nil {
				return err
			}
			if samples == nil {
				samples = []telemetry.Sample{}
			}
			return writeJSON(cmd.OutOrStdout(), samples)
		},
	}
	cmd.Flags().String(listenFlag, "", "address to serve /metrics on, e.g. :9090")
	return cmd
}
