package core

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Sync.StaggerInterval != 5*time.Second {
		t.Fatalf("unexpected stagger interval %s", cfg.Sync.StaggerInterval)
	}
	if cfg.Sync.ActiveWindow != 90*24*time.Hour {
		t.Fatalf("unexpected active window %s", cfg.Sync.ActiveWindow)
	}
	if cfg.Sync.SingleUserBudget != 15*time.Minute {
		t.Fatalf("unexpected single user budget %s", cfg.Sync.SingleUserBudget)
	}
	if cfg.Sync.WeeklyBatchBudget != 3*time.Hour {
		t.Fatalf("unexpected weekly batch budget %s", cfg.Sync.WeeklyBatchBudget)
	}
	if cfg.Sync.ProgressLogEvery != 50 {
		t.Fatalf("unexpected progress interval %d", cfg.Sync.ProgressLogEvery)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty service name", func(c *Config) { c.ServiceName = " " }},
		{"negative stagger", func(c *Config) { c.Sync.StaggerInterval = -time.Second }},
		{"zero active window", func(c *Config) { c.Sync.ActiveWindow = 0 }},
		{"zero single user budget", func(c *Config) { c.Sync.SingleUserBudget = 0 }},
		{"zero weekly budget", func(c *Config) { c.Sync.WeeklyBatchBudget = 0 }},
		{"zero progress interval", func(c *Config) { c.Sync.ProgressLogEvery = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation failure")
			}
		})
	}
}

func TestConfigValidateAllowsZeroStagger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sync.StaggerInterval = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero stagger disables spacing and must validate: %v", err)
	}
}
