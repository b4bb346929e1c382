package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eddiebe147/claude-automation-pipeline/internal/config"
	"github.com/eddiebe147/claude-automation-pipeline/internal/store"
	"github.com/eddiebe147/claude-automation-pipeline/internal/store/postgres"
)

// openStore opens the coordination store for one command invocation.
// HYDRA_DATABASE_URL selects PostgreSQL; otherwise the SQLite store under
// the hydra home is used.
func openStore(cmd *cobra.Command) (store.Store, error) {
	if dsn := os.Getenv("HYDRA_DATABASE_URL"); dsn != "" {
		return postgres.Open(dsn)
	}
	home := config.MustHomeFrom(cmd.Context())
	return store.Open(home)
}

// resolveDate defaults an empty --date flag to today (UTC).
func resolveDate(date string) string {
	if date != "" {
		return date
	}
	return time.Now().UTC().Format("2006-01-02")
}
