package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eddiebe147/claude-automation-pipeline/internal/config"
	"github.com/eddiebe147/claude-automation-pipeline/internal/standup"
)

func newStandupCmd() *cobra.Command {
	var date string
	var agent string
	var push bool

	cmd := &cobra.Command{
		Use:   "standup",
		Short: "Compile the daily standup digest (idempotent per date)",
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

			c := &standup.Compiler{
				Store:      st,
				ReportsDir: cfg.ReportsDir,
				ActivityN:  cfg.ActivityEntries,
			}
			digest, err := c.Compile(cmd.Context(), resolveDate(date), agent)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), digest.Rendered)

			if push {
				d := newDispatcher(st, cfg)
				target := agent
				if target == "" {
					target = cfg.Delivery.StandupTarget
				}
				if err := d.Deliver(cmd.Context(), target, digest.Rendered); err != nil {
					// The standup row is already persisted; a push failure is
					// reported but does not undo the compile.
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "standup push failed: %v\n", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Standup date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&agent, "agent", "", "Narrow the digest to one agent")
	cmd.Flags().BoolVar(&push, "push", false, "Also push the digest through the delivery transport")
	return cmd
}
