package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAgentsCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List the agent roster with current workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			agents, err := st.ListAgents(cmd.Context())
			if err != nil {
				return err
			}
			workloads, err := st.AgentWorkloads(cmd.Context(), resolveDate(date))
			if err != nil {
				return err
			}
			byAgent := make(map[string]int, len(workloads))
			for i, w := range workloads {
				byAgent[w.AgentID] = i
			}

			out := cmd.OutOrStdout()
			for _, a := range agents {
				line := fmt.Sprintf("@%-10s %-12s %-14s tier=%-8s heartbeat=%dm", a.Name, a.Role, a.Model, a.CostTier, a.HeartbeatMinutes)
				if len(a.Skills) > 0 {
					line += "  skills=" + strings.Join(a.Skills, ",")
				}
				if i, ok := byAgent[a.AgentID]; ok {
					w := workloads[i]
					line += fmt.Sprintf("  [%d pending, %d in progress, %d done today]", w.Pending, w.InProgress, w.CompletedToday)
				}
				_, _ = fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Workload date (YYYY-MM-DD, default today)")
	return cmd
}
