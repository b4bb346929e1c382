package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eddiebe147/claude-automation-pipeline/internal/engine"
	"github.com/eddiebe147/claude-automation-pipeline/internal/store"
)

func newNotifyCmd() *cobra.Command {
	var kind string
	var urgent bool
	var sourceID int64

	cmd := &cobra.Command{
		Use:   "notify <agent>",
		Short: "Queue a direct notification for an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			priority := store.PriorityNormal
			if urgent {
				priority = store.PriorityUrgent
			}
			eng := &engine.Engine{Store: st}
			id, err := eng.Notify(cmd.Context(), args[0], kind, priority, "", sourceID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Queued notification %d for @%s\n", id, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Notification kind (default: mention)")
	cmd.Flags().BoolVar(&urgent, "urgent", false, "Queue at urgent priority")
	cmd.Flags().Int64Var(&sourceID, "source-id", 0, "Source message ID")
	return cmd
}

func newNotificationsCmd() *cobra.Command {
	var urgentOnly bool

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List pending notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			priority := ""
			if urgentOnly {
				priority = store.PriorityUrgent
			}
			pending, err := st.ListPendingNotifications(cmd.Context(), priority)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(pending) == 0 {
				_, _ = fmt.Fprintln(out, "No pending notifications")
				return nil
			}
			for _, n := range pending {
				_, _ = fmt.Fprintf(out, "#%-4d %-7s %-14s @%-10s %s %d\n",
					n.NotificationID, n.Priority, n.Kind, n.AgentName, n.SourceKind, n.SourceID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&urgentOnly, "urgent", false, "Only urgent notifications")
	return cmd
}
