package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newActivityCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the recent activity log",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			entries, err := st.ListActivity(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(out, "No activity")
				return nil
			}
			for _, e := range entries {
				_, _ = fmt.Fprintf(out, "%s  %s\n", e.CreatedAt.UTC().Format("2006-01-02 15:04:05"), e.Description)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries")
	return cmd
}
