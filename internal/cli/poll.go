package cli

import (
	"github.com/spf13/cobra"

	"github.com/eddiebe147/claude-automation-pipeline/internal/config"
	"github.com/eddiebe147/claude-automation-pipeline/internal/poller"
)

func newPollCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Run the dispatch loop: urgent notifications on the fast cadence, a full sweep on the slow one",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := config.MustHomeFrom(cmd.Context())
			cfg, err := config.Load(home)
			if err != nil {
				return err
			}
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			p := &poller.Poller{
				Store:      st,
				Dispatcher: newDispatcher(st, cfg),
			}
			return p.Run(cmd.Context(), poller.Options{
				UrgentSpec:  cfg.Poll.Urgent,
				FullSpec:    cfg.Poll.Full,
				MetricsAddr: metricsAddr,
			})
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9290)")
	return cmd
}
