package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUserNotFound    = errors.New("core: user not found")
	ErrProjectNotFound = errors.New("core: project not found")
)

// SSOProviderAllauth marks organizations whose membership is delegated to
// the OAuth provider; those organizations are the default target of a
// population-wide re-sync.
const SSOProviderAllauth = "allauth"

// Notification message ids rendered by the hosting application. The format
// values each message expects are documented next to the emitting call site
// in package webhooks.
const (
	MessageOAuthWebhookInvalid       = "oauth:webhook:invalid"
	MessageOAuthWebhookNoAccount     = "oauth:webhook:no-account"
	MessageOAuthWebhookNoPermissions = "oauth:webhook:no-permissions"
)

type User struct {
	ID          string
	Username    string
	LastLogin   *time.Time
	IsSuperuser bool
}

type Organization struct {
	ID   string
	Slug string
	SSO  *SSOIntegration
}

type SSOIntegration struct {
	OrganizationID string
	Provider       string
}

type Project struct {
	ID              string
	Slug            string
	RepoURL         string
	HasValidWebhook bool
}

// Integration identifies a provider type explicitly chosen by the caller for
// webhook attachment, bypassing repository-URL auto-detection.
type Integration struct {
	ID        string
	ProjectID string
	Type      string
}

// MemberRole orders organization roles; any role at or above RoleViewer
// counts as membership for re-sync distribution.
type MemberRole int

const (
	RoleNone MemberRole = iota
	RoleViewer
	RoleAdmin
	RoleOwner
)

func ParseMemberRole(value string) MemberRole {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "owner":
		return RoleOwner
	case "admin":
		return RoleAdmin
	case "viewer":
		return RoleViewer
	default:
		return RoleNone
	}
}

type NotificationAttachment struct {
	Type string
	ID   string
}

type Notification struct {
	ID           string
	MessageID    string
	AttachedTo   NotificationAttachment
	Dismissable  bool
	FormatValues map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AddNotificationInput struct {
	MessageID    string
	AttachedTo   NotificationAttachment
	Dismissable  bool
	FormatValues map[string]string
}

// RemoteRepository is the locally persisted snapshot of one repository a
// provider account can see. Provider sync upserts these records.
type RemoteRepository struct {
	ID            string
	ProviderID    string
	AccountID     string
	RemoteID      string
	Name          string
	FullName      string
	CloneURL      string
	HTMLURL       string
	Private       bool
	DefaultBranch string
	UpdatedAt     time.Time
}

// AttachResult is the tri-state outcome of a webhook attachment attempt.
// Invalid configuration is distinct from failure so callers can log it as a
// setup problem rather than a permission problem.
type AttachResult int

const (
	AttachResultFailed AttachResult = iota
	AttachResultAttached
	AttachResultInvalidConfig
)

func (r AttachResult) String() string {
	switch r {
	case AttachResultAttached:
		return "attached"
	case AttachResultInvalidConfig:
		return "invalid_config"
	default:
		return "failed"
	}
}

// JobRequest describes one unit of deferred work handed to the dispatch
// boundary. Delay is a minimum scheduling offset; Budget is the wall-clock
// limit the executor enforces on the running unit.
type JobRequest struct {
	Task           string
	Args           map[string]any
	Delay          time.Duration
	Budget         time.Duration
	IdempotencyKey string
}

const (
	TaskSyncUser         = "reposync.sync_user"
	TaskDistributeResync = "reposync.distribute_resync"
	TaskWeeklyResync     = "reposync.weekly_resync"
	TaskAttachWebhook    = "reposync.attach_webhook"
)
