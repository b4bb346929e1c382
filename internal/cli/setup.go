package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eddiebe147/claude-automation-pipeline/internal/config"
	"github.com/eddiebe147/claude-automation-pipeline/internal/store"
)

func newSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Initialize the hydra home, database, and agent roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := config.MustHomeFrom(cmd.Context())
			for _, dir := range []string{home, filepath.Join(home, "state"), filepath.Join(home, "reports")} {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}

			cfg, err := config.Load(home)
			if err != nil {
				return err
			}
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			for _, a := range cfg.Agents {
				agent, err := st.ProvisionAgent(cmd.Context(), store.Agent{
					Name:             a.Name,
					Role:             a.Role,
					Model:            a.Model,
					HeartbeatMinutes: a.HeartbeatMinutes,
					Skills:           a.Skills,
					CostTier:         a.CostTier,
				})
				if err != nil {
					return fmt.Errorf("provision %s: %w", a.Name, err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Provisioned @%s (%s)\n", agent.Name, agent.Role)
			}
			if err := st.AppendActivity(cmd.Context(), nil, fmt.Sprintf("setup provisioned %d agent(s)", len(cfg.Agents))); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Hydra home ready at %s\n", home)
			return nil
		},
	}
	return cmd
}
