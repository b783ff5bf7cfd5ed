package core

import (
	"fmt"
	"strings"
	"time"
)

type SyncConfig struct {
	// StaggerInterval spaces distributed re-sync submissions so downstream
	// provider API calls never burst past per-account rate limits.
	StaggerInterval time.Duration `koanf:"stagger_interval" mapstructure:"stagger_interval"`
	// ActiveWindow bounds how far back a login still counts as active for
	// the weekly re-sync.
	ActiveWindow time.Duration `koanf:"active_window" mapstructure:"active_window"`
	// SingleUserBudget is the wall-clock limit the executor enforces on one
	// user's sync. Users in very large organizations need the full budget.
	SingleUserBudget time.Duration `koanf:"single_user_budget" mapstructure:"single_user_budget"`
	// WeeklyBatchBudget is the wall-clock limit for the full weekly batch,
	// which runs every selected user in a single execution slot.
	WeeklyBatchBudget time.Duration `koanf:"weekly_batch_budget" mapstructure:"weekly_batch_budget"`
	// ProgressLogEvery controls how often the weekly batch emits a progress
	// line.
	ProgressLogEvery int `koanf:"progress_log_every" mapstructure:"progress_log_every"`
}

type WebhookConfig struct {
	// DocsURL points notification recipients at the embedding
	// application's webhook documentation. Empty unless configured.
	DocsURL string `koanf:"docs_url" mapstructure:"docs_url"`
}

type Config struct {
	ServiceName string        `koanf:"service_name" mapstructure:"service_name"`
	Sync        SyncConfig    `koanf:"sync" mapstructure:"sync"`
	Webhook     WebhookConfig `koanf:"webhook" mapstructure:"webhook"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "repo-sync",
		Sync: SyncConfig{
			StaggerInterval:   5 * time.Second,
			ActiveWindow:      90 * 24 * time.Hour,
			SingleUserBudget:  15 * time.Minute,
			WeeklyBatchBudget: 3 * time.Hour,
			ProgressLogEvery:  50,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Sync.StaggerInterval < 0 {
		return fmt.Errorf("core: sync.stagger_interval must not be negative")
	}
	if c.Sync.ActiveWindow <= 0 {
		return fmt.Errorf("core: sync.active_window must be positive")
	}
	if c.Sync.SingleUserBudget <= 0 || c.Sync.WeeklyBatchBudget <= 0 {
		return fmt.Errorf("core: sync budgets must be positive")
	}
	if c.Sync.ProgressLogEvery <= 0 {
		return fmt.Errorf("core: sync.progress_log_every must be positive")
	}
	return nil
}
