package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eddiebe147/claude-automation-pipeline/internal/config"
	"github.com/eddiebe147/claude-automation-pipeline/internal/dispatch"
	"github.com/eddiebe147/claude-automation-pipeline/internal/store"
)

func newDispatchCmd() *cobra.Command {
	var urgentOnly bool

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Run one delivery pass over pending notifications",
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

			d := newDispatcher(st, cfg)
			priority := ""
			if urgentOnly {
				priority = store.PriorityUrgent
			}
			res, err := d.Run(cmd.Context(), priority)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Delivered %d, failed %d (failed stay pending)\n", res.Delivered, res.Failed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&urgentOnly, "urgent", false, "Only dispatch urgent notifications")
	return cmd
}

func newDispatcher(st store.Store, cfg config.Config) *dispatch.Dispatcher {
	return &dispatch.Dispatcher{
		Store: st,
		Notifier: dispatch.NewBotNotifier(
			cfg.Delivery.Endpoint,
			cfg.Delivery.Token,
			time.Duration(cfg.Delivery.TimeoutSeconds)*time.Second,
		),
	}
}
