package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eddiebe147/claude-automation-pipeline/internal/router"
	"github.com/eddiebe147/claude-automation-pipeline/internal/store"
)

func newTasksCmd() *cobra.Command {
	var agent string
	var limit int

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			tasks, err := st.ListTasks(cmd.Context(), agent, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				_, _ = fmt.Fprintln(out, "No tasks")
				return nil
			}
			for _, t := range tasks {
				line := fmt.Sprintf("#%-4d p%d %-12s %s", t.TaskID, t.Priority, t.Status, t.Title)
				if t.Category != "" {
					line += " [" + t.Category + "]"
				}
				if t.Status == store.StatusBlocked && t.BlockedReason != nil {
					line += " (blocked: " + *t.BlockedReason + ")"
				}
				_, _ = fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&agent, "agent", "", "Filter by assigned agent name")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum tasks to list")
	return cmd
}

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(newTaskCreateCmd())
	cmd.AddCommand(newTaskStatusCmd())
	return cmd
}

func newTaskCreateCmd() *cobra.Command {
	var description string
	var category string
	var priority int
	var assignee string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a task, routed to the responsible agent by category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if priority < 1 || priority > 5 {
				return fmt.Errorf("--priority must be 1..5")
			}
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			var assignedTo *string
			assignedName := assignee
			if assignee != "" {
				agent, err := st.GetAgentByName(cmd.Context(), assignee)
				if err != nil {
					return fmt.Errorf("assignee %q: %w", assignee, err)
				}
				assignedTo = &agent.AgentID
			} else {
				role := router.RouteCategory(category)
				agent, err := st.GetAgentByRole(cmd.Context(), string(role))
				switch {
				case err == nil:
					assignedTo = &agent.AgentID
					assignedName = agent.Name
				case errors.Is(err, store.ErrNotFound):
					// Left unassigned.
				default:
					return err
				}
			}

			taskID, err := st.CreateTask(cmd.Context(), store.TaskParams{
				Title:       args[0],
				Description: description,
				Source:      "cli",
				AssignedTo:  assignedTo,
				Priority:    priority,
				Category:    category,
			})
			if err != nil {
				return err
			}
			if assignedTo != nil {
				_, err = st.CreateNotification(cmd.Context(), store.NotificationParams{
					AgentID:    *assignedTo,
					Kind:       store.KindTaskAssigned,
					SourceKind: store.SourceTask,
					SourceID:   taskID,
					Priority:   taskNotifyPriority(priority),
				})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d assigned to @%s\n", taskID, assignedName)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d (unassigned)\n", taskID)
			}
			_ = st.AppendActivity(cmd.Context(), assignedTo, fmt.Sprintf("task %d created: %s", taskID, args[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&category, "category", "", "Task category for routing (known: "+strings.Join(router.Categories(), ", ")+"; others go to the coordinator)")
	cmd.Flags().IntVar(&priority, "priority", 3, "Priority 1 (urgent) to 5")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assign directly to an agent, bypassing the router")
	return cmd
}

func newTaskStatusCmd() *cobra.Command {
	var taskID int64
	var status string
	var reason string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Set task status (blocked requires --reason)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if taskID <= 0 {
				return fmt.Errorf("--id must be a positive task ID")
			}
			if status == "" {
				return fmt.Errorf("--status is required")
			}
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.UpdateTaskStatus(cmd.Context(), taskID, status, reason); err != nil {
				return err
			}
			_ = st.AppendActivity(cmd.Context(), nil, fmt.Sprintf("task %d -> %s", taskID, status))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Task #%d -> %s\n", taskID, status)
			return nil
		},
	}
	cmd.Flags().Int64Var(&taskID, "id", 0, "Task ID")
	cmd.Flags().StringVar(&status, "status", "", "New status: pending, in_progress, blocked, completed")
	cmd.Flags().StringVar(&reason, "reason", "", "Blocked reason (required when --status blocked)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func taskNotifyPriority(priority int) string {
	if priority == 1 {
		return store.PriorityUrgent
	}
	return store.PriorityNormal
}
