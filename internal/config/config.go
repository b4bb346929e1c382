package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the optional config.yaml in the hydra home. Every field has a
// working default so a missing file is not an error.
type Config struct {
	Delivery struct {
		Endpoint       string `yaml:"endpoint"`
		Token          string `yaml:"token"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		// StandupTarget is the transport target for whole-system standup
		// pushes; agent-scoped standups target the agent instead.
		StandupTarget string `yaml:"standup_target"`
	} `yaml:"delivery"`
	Poll struct {
		// Cron specs for the two dispatcher cadences: urgent notifications on
		// the fast lane, everything on the slow one.
		Urgent string `yaml:"urgent"`
		Full   string `yaml:"full"`
	} `yaml:"poll"`
	ReportsDir      string        `yaml:"reports_dir"`
	ActivityEntries int           `yaml:"activity_entries"`
	Agents          []AgentConfig `yaml:"agents"`
}

// AgentConfig is one roster entry.
type AgentConfig struct {
	Name             string   `yaml:"name"`
	Role             string   `yaml:"role"`
	Model            string   `yaml:"model"`
	HeartbeatMinutes int      `yaml:"heartbeat_minutes"`
	Skills           []string `yaml:"skills"`
	CostTier         string   `yaml:"cost_tier"`
}

// Load reads config.yaml from home, applying defaults and env overrides
// (HYDRA_DELIVERY_ENDPOINT, HYDRA_DELIVERY_TOKEN).
func Load(home string) (Config, error) {
	var cfg Config
	path := filepath.Join(home, "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	default:
		return Config{}, err
	}

	if env := os.Getenv("HYDRA_DELIVERY_ENDPOINT"); env != "" {
		cfg.Delivery.Endpoint = env
	}
	if env := os.Getenv("HYDRA_DELIVERY_TOKEN"); env != "" {
		cfg.Delivery.Token = env
	}
	if cfg.Delivery.TimeoutSeconds <= 0 {
		cfg.Delivery.TimeoutSeconds = 10
	}
	if cfg.Delivery.StandupTarget == "" {
		cfg.Delivery.StandupTarget = "standup"
	}
	if cfg.Poll.Urgent == "" {
		cfg.Poll.Urgent = "@every 1m"
	}
	if cfg.Poll.Full == "" {
		cfg.Poll.Full = "@every 10m"
	}
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = filepath.Join(home, "reports")
	}
	if cfg.ActivityEntries <= 0 {
		cfg.ActivityEntries = 10
	}
	if len(cfg.Agents) == 0 {
		cfg.Agents = DefaultRoster()
	}
	return cfg, nil
}

// DefaultRoster is the built-in four-agent roster used when config.yaml does
// not define one.
func DefaultRoster() []AgentConfig {
	return []AgentConfig{
		{Name: "hydra", Role: "coordinator", Model: "claude-sonnet", HeartbeatMinutes: 15, Skills: []string{"coordination"}, CostTier: "premium"},
		{Name: "forge", Role: "dev", Model: "claude-sonnet", HeartbeatMinutes: 30, Skills: []string{"dev", "code", "bug", "feature"}, CostTier: "premium"},
		{Name: "scout", Role: "research", Model: "claude-haiku", HeartbeatMinutes: 60, Skills: []string{"research", "marketing", "seo", "content", "growth"}, CostTier: "cheap"},
		{Name: "bolt", Role: "ops", Model: "claude-haiku", HeartbeatMinutes: 30, Skills: []string{"ops", "devops", "security", "infra", "automation"}, CostTier: "cheap"},
	}
}
