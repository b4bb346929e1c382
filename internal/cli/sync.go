package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eddiebe147/claude-automation-pipeline/internal/config"
	"github.com/eddiebe147/claude-automation-pipeline/internal/ingest"
)

func newSyncCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import external report findings; actionable ones become routed tasks",
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

			imp := &ingest.Importer{Store: st, ReportsDir: cfg.ReportsDir}
			res, err := imp.Run(cmd.Context(), resolveDate(date))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, res.Findings.Summary())
			_, _ = fmt.Fprintf(out, "Tasks: %d created, %d already open\n", res.TasksCreated, res.TasksSkipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Report date (YYYY-MM-DD, default today)")
	return cmd
}
