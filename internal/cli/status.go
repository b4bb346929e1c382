package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eddiebe147/claude-automation-pipeline/internal/store"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a coordination overview: task counts and pending notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			counts, err := st.TaskStatusCounts(cmd.Context())
			if err != nil {
				return err
			}
			pending, err := st.CountPendingNotifications(cmd.Context())
			if err != nil {
				return err
			}
			agents, err := st.ListAgents(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Agents: %d\n", len(agents))
			_, _ = fmt.Fprintf(out, "Tasks: %d pending, %d in progress, %d blocked, %d completed\n",
				counts[store.StatusPending], counts[store.StatusInProgress],
				counts[store.StatusBlocked], counts[store.StatusCompleted])
			_, _ = fmt.Fprintf(out, "Notifications pending delivery: %d\n", pending)
			return nil
		},
	}
	return cmd
}
