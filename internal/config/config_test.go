package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()

	cfg, err := Load(home)
	require.NoError(t, err)
	assert.Equal(t, "@every 1m", cfg.Poll.Urgent)
	assert.Equal(t, "@every 10m", cfg.Poll.Full)
	assert.Equal(t, 10, cfg.Delivery.TimeoutSeconds)
	assert.Equal(t, "standup", cfg.Delivery.StandupTarget)
	assert.Equal(t, filepath.Join(home, "reports"), cfg.ReportsDir)
	assert.Equal(t, 10, cfg.ActivityEntries)
	require.Len(t, cfg.Agents, 4)
	assert.Equal(t, "hydra", cfg.Agents[0].Name)
	assert.Equal(t, "coordinator", cfg.Agents[0].Role)
}

func TestLoadYAML(t *testing.T) {
	home := t.TempDir()
	yaml := `
delivery:
  endpoint: https://bot.example.com/push
  token: t0ken
  timeout_seconds: 3
  standup_target: team-digest
poll:
  urgent: "@every 30s"
reports_dir: /srv/reports
activity_entries: 25
agents:
  - name: solo
    role: coordinator
    model: claude-sonnet
    heartbeat_minutes: 5
    skills: [coordination]
    cost_tier: premium
`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(home)
	require.NoError(t, err)
	assert.Equal(t, "https://bot.example.com/push", cfg.Delivery.Endpoint)
	assert.Equal(t, 3, cfg.Delivery.TimeoutSeconds)
	assert.Equal(t, "team-digest", cfg.Delivery.StandupTarget)
	assert.Equal(t, "@every 30s", cfg.Poll.Urgent)
	assert.Equal(t, "@every 10m", cfg.Poll.Full)
	assert.Equal(t, "/srv/reports", cfg.ReportsDir)
	assert.Equal(t, 25, cfg.ActivityEntries)
	require.Len(t, cfg.Agents, 1)
	assert.Equal(t, "solo", cfg.Agents[0].Name)
}

func TestLoadEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HYDRA_DELIVERY_ENDPOINT", "https://env.example.com/push")
	t.Setenv("HYDRA_DELIVERY_TOKEN", "env-token")

	cfg, err := Load(home)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/push", cfg.Delivery.Endpoint)
	assert.Equal(t, "env-token", cfg.Delivery.Token)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("delivery: [unclosed"), 0o644))

	_, err := Load(home)
	require.Error(t, err)
}

func TestResolveHome(t *testing.T) {
	got, err := ResolveHome("/explicit/home")
	require.NoError(t, err)
	assert.Equal(t, "/explicit/home", got)

	t.Setenv("HYDRA_HOME", "/env/home")
	got, err = ResolveHome("")
	require.NoError(t, err)
	assert.Equal(t, "/env/home", got)
}
