// Package cli implements the hydra command surface on cobra. Commands open
// the store per invocation; the resolved home directory travels on the
// command context.
package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eddiebe147/claude-automation-pipeline/internal/config"
)

func NewRootCmd(version string) *cobra.Command {
	var homeOverride string

	cmd := &cobra.Command{
		Use:          "hydra",
		Short:        "Hydra multi-agent coordination engine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			home, err := config.ResolveHome(homeOverride)
			if err != nil {
				return err
			}
			cmd.SetContext(config.WithHome(cmd.Context(), home))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&homeOverride, "home", "", "Override hydra home directory (default: ~/.hydra, env: HYDRA_HOME)")

	cmd.AddCommand(newSetupCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newAgentsCmd())
	cmd.AddCommand(newTasksCmd())
	cmd.AddCommand(newTaskCmd())
	cmd.AddCommand(newRouteCmd())
	cmd.AddCommand(newNotifyCmd())
	cmd.AddCommand(newNotificationsCmd())
	cmd.AddCommand(newDispatchCmd())
	cmd.AddCommand(newStandupCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newActivityCmd())
	cmd.AddCommand(newPollCmd())

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}

	return cmd
}
