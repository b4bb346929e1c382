package report

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeReport(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadAllSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeReport(t, dir, "security-report-2026-08-31.md", "Urgency Level: critical\nSummary: leaked key\n")
	writeReport(t, dir, "performance-report-2026-08-31.md", "Focus Score: 91%\n")
	writeReport(t, dir, "streak.txt", "7\n")

	f := Load(slog.Default(), dir, "2026-08-31")
	require.NotNil(t, f.Security)
	assert.Equal(t, UrgencyCritical, f.Security.Level)
	require.NotNil(t, f.Focus)
	assert.Equal(t, 91, f.Focus.Score)
	require.NotNil(t, f.Streak)
	assert.Equal(t, 7, *f.Streak)

	summary := f.Summary()
	assert.Contains(t, summary, "Security: urgency critical (leaked key)")
	assert.Contains(t, summary, "Focus score: 91%")
	assert.Contains(t, summary, "Habit streak: 7 days")
}

func TestLoadSkipsMissingSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeReport(t, dir, "streak.txt", "3\n")

	f := Load(slog.Default(), dir, "2026-08-31")
	assert.Nil(t, f.Security)
	assert.Nil(t, f.Focus)
	require.NotNil(t, f.Streak)

	summary := f.Summary()
	assert.Contains(t, summary, "Security: no data")
	assert.Contains(t, summary, "Focus score: no data")
	assert.Contains(t, summary, "Habit streak: 3 days")
}

func TestLoadSkipsMalformedSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeReport(t, dir, "security-report-2026-08-31.md", "just prose, no fields\n")

	f := Load(slog.Default(), dir, "2026-08-31")
	assert.Nil(t, f.Security)
}
