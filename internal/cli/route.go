package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eddiebe147/claude-automation-pipeline/internal/engine"
	"github.com/eddiebe147/claude-automation-pipeline/internal/router"
)

func newRouteCmd() *cobra.Command {
	var sender string
	var channel string
	var createTask bool
	var category string
	var title string

	cmd := &cobra.Command{
		Use:   "route <message>",
		Short: "Record a message, notify @mentioned agents, optionally create a routed task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			eng := &engine.Engine{Store: st}
			res, err := eng.Route(cmd.Context(), strings.Join(args, " "), engine.RouteOptions{
				Sender:     sender,
				Channel:    channel,
				CreateTask: createTask,
				Category:   category,
				Title:      title,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Message %d recorded (%s priority)\n", res.MessageID, res.Priority)
			if len(res.Notified) > 0 {
				_, _ = fmt.Fprintf(out, "Notified: @%s\n", strings.Join(res.Notified, ", @"))
			} else {
				_, _ = fmt.Fprintln(out, "No agents notified")
			}
			if res.TaskID > 0 {
				if res.AssignedTo != "" {
					_, _ = fmt.Fprintf(out, "Created task #%d assigned to @%s\n", res.TaskID, res.AssignedTo)
				} else {
					_, _ = fmt.Fprintf(out, "Created task #%d (unassigned)\n", res.TaskID)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sender, "sender", "", "Message sender (default: system)")
	cmd.Flags().StringVar(&channel, "channel", "", "Channel name (default: general)")
	cmd.Flags().BoolVar(&createTask, "task", false, "Also create a routed task from this message")
	cmd.Flags().StringVar(&category, "category", "", "Task category for routing with --task (known: "+strings.Join(router.Categories(), ", ")+")")
	cmd.Flags().StringVar(&title, "title", "", "Task title (with --task; default: first message line)")
	return cmd
}
