package standup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddiebe147/claude-automation-pipeline/internal/store"
)

func newTestCompiler(t *testing.T) (*Compiler, store.Store) {
	t.Helper()
	home := filepath.Join(t.TempDir(), "home")
	require.NoError(t, os.MkdirAll(home, 0o755))
	st, err := store.Open(home)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	reports := filepath.Join(home, "reports")
	require.NoError(t, os.MkdirAll(reports, 0o755))
	return &Compiler{Store: st, ReportsDir: reports, ActivityN: 5}, st
}

func TestCompileIsIdempotentPerDate(t *testing.T) {
	t.Parallel()
	c, st := newTestCompiler(t)
	ctx := context.Background()
	today := time.Now().UTC().Format("2006-01-02")

	agent, err := st.ProvisionAgent(ctx, store.Agent{Name: "forge", Role: "dev", Model: "claude-sonnet"})
	require.NoError(t, err)
	id, err := st.CreateTask(ctx, store.TaskParams{Title: "ship auth fix", Source: "cli", AssignedTo: &agent.AgentID, Priority: 2})
	require.NoError(t, err)
	require.NoError(t, st.UpdateTaskStatus(ctx, id, store.StatusCompleted, ""))

	first, err := c.Compile(ctx, today, "")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Standup.CompletedCount)
	assert.Contains(t, first.Standup.Highlight, "ship auth fix")
	assert.Contains(t, first.Rendered, "# Standup "+today)
	assert.Contains(t, first.Rendered, "ship auth fix")
	assert.Contains(t, first.Rendered, "(@forge)")

	second, err := c.Compile(ctx, today, "")
	require.NoError(t, err)
	assert.Equal(t, first.Standup.CompletedCount, second.Standup.CompletedCount)

	// Still one row for the date.
	got, err := st.GetStandup(ctx, today, "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.CompletedCount)
}

func TestCompileEmptyDay(t *testing.T) {
	t.Parallel()
	c, st := newTestCompiler(t)
	ctx := context.Background()

	digest, err := c.Compile(ctx, "2026-08-30", "")
	require.NoError(t, err)
	assert.Equal(t, "No completed tasks", digest.Standup.Highlight)
	assert.Contains(t, digest.Rendered, "## Completed today\n- none")
	assert.Contains(t, digest.Rendered, "Security: no data")

	got, err := st.GetStandup(ctx, "2026-08-30", "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0, got.CompletedCount)
}

func TestCompileBlockedSection(t *testing.T) {
	t.Parallel()
	c, st := newTestCompiler(t)
	ctx := context.Background()
	today := time.Now().UTC().Format("2006-01-02")

	agent, err := st.ProvisionAgent(ctx, store.Agent{Name: "bolt", Role: "ops", Model: "claude-haiku"})
	require.NoError(t, err)
	id, err := st.CreateTask(ctx, store.TaskParams{Title: "rotate certs", Source: "cli", AssignedTo: &agent.AgentID, Priority: 2})
	require.NoError(t, err)
	require.NoError(t, st.UpdateTaskStatus(ctx, id, store.StatusBlocked, "waiting on CA"))

	digest, err := c.Compile(ctx, today, "")
	require.NoError(t, err)
	assert.Equal(t, 1, digest.Standup.BlockedCount)
	assert.Contains(t, digest.Standup.Highlight, "rotate certs")
	assert.Contains(t, digest.Rendered, "blocked: waiting on CA")
}

func TestCompileAgentScope(t *testing.T) {
	t.Parallel()
	c, st := newTestCompiler(t)
	ctx := context.Background()
	today := time.Now().UTC().Format("2006-01-02")

	forge, err := st.ProvisionAgent(ctx, store.Agent{Name: "forge", Role: "dev", Model: "claude-sonnet"})
	require.NoError(t, err)
	scout, err := st.ProvisionAgent(ctx, store.Agent{Name: "scout", Role: "research", Model: "claude-haiku"})
	require.NoError(t, err)

	for _, a := range []store.Agent{forge, scout} {
		id, err := st.CreateTask(ctx, store.TaskParams{Title: "work for " + a.Name, Source: "cli", AssignedTo: &a.AgentID, Priority: 3})
		require.NoError(t, err)
		require.NoError(t, st.UpdateTaskStatus(ctx, id, store.StatusInProgress, ""))
		_, err = st.CreateTask(ctx, store.TaskParams{Title: "backlog for " + a.Name, Source: "cli", AssignedTo: &a.AgentID, Priority: 4})
		require.NoError(t, err)
	}

	digest, err := c.Compile(ctx, today, "forge")
	require.NoError(t, err)
	assert.Equal(t, 1, digest.Standup.InProgressCount)
	assert.Equal(t, 1, digest.Standup.PendingCount)
	assert.Equal(t, "forge", digest.Standup.AgentScope)
	assert.Contains(t, digest.Rendered, "(@forge)")
	assert.NotContains(t, digest.Rendered, "work for scout")

	// Whole-system and scoped standups coexist as separate rows.
	_, err = c.Compile(ctx, today, "")
	require.NoError(t, err)
	scoped, err := st.GetStandup(ctx, today, "forge")
	require.NoError(t, err)
	require.NotNil(t, scoped)
	system, err := st.GetStandup(ctx, today, "")
	require.NoError(t, err)
	require.NotNil(t, system)
	assert.Equal(t, 2, system.InProgressCount)
	assert.Equal(t, 2, system.PendingCount)
	assert.Equal(t, 1, scoped.PendingCount)
}

func TestCompileRejectsBadInput(t *testing.T) {
	t.Parallel()
	c, _ := newTestCompiler(t)
	ctx := context.Background()

	_, err := c.Compile(ctx, "31-08-2026", "")
	require.Error(t, err)

	_, err = c.Compile(ctx, "2026-08-31", "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
