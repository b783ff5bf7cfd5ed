package command

import (
	"strings"
)

const (
	TypeSyncUser         = "reposync.command.sync_user"
	TypeDistributeResync = "reposync.command.distribute_resync"
	TypeWeeklyResync     = "reposync.command.weekly_resync"
	TypeAttachWebhook    = "reposync.command.attach_webhook"
)

// SyncUserMessage requests a full re-sync of one user's linked accounts.
// RequesterID is the calling identity; the permission boundary requires it to
// match UserID or belong to a superuser.
type SyncUserMessage struct {
	RequesterID string
	UserID      string
}

func (SyncUserMessage) Type() string { return TypeSyncUser }

func (m SyncUserMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return commandValidationError("user_id", "user id is required")
	}
	if strings.TrimSpace(m.RequesterID) == "" {
		return commandValidationError("requester_id", "requester id is required")
	}
	return nil
}

// DistributeResyncMessage fans a re-sync out over the queue. Empty slugs
// target every organization with delegated SSO enabled.
type DistributeResyncMessage struct {
	OrganizationSlugs []string
}

func (DistributeResyncMessage) Type() string { return TypeDistributeResync }

func (DistributeResyncMessage) Validate() error { return nil }

// WeeklyResyncMessage triggers the daily batch over active users.
type WeeklyResyncMessage struct{}

func (WeeklyResyncMessage) Type() string { return TypeWeeklyResync }

func (WeeklyResyncMessage) Validate() error { return nil }

// AttachWebhookMessage provisions a commit webhook for a project. The
// integration is optional; when present it pins the provider choice.
type AttachWebhookMessage struct {
	ProjectID       string
	UserID          string
	IntegrationID   string
	IntegrationType string
}

func (AttachWebhookMessage) Type() string { return TypeAttachWebhook }

func (m AttachWebhookMessage) Validate() error {
	if strings.TrimSpace(m.ProjectID) == "" {
		return commandValidationError("project_id", "project id is required")
	}
	if strings.TrimSpace(m.UserID) == "" {
		return commandValidationError("user_id", "user id is required")
	}
	if strings.TrimSpace(m.IntegrationID) != "" && strings.TrimSpace(m.IntegrationType) == "" {
		return commandValidationError("integration_type", "integration type is required when an integration is given")
	}
	return nil
}
