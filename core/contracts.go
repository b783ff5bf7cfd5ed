package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Provider describes one registered VCS hosting integration. Registration
// order in the registry is the auto-detection priority for webhook
// attachment, so implementations must not assume they are consulted alone.
type Provider interface {
	// ID is the stable provider identifier, e.g. "github".
	ID() string
	// DisplayName is the human-readable provider name used in notifications.
	DisplayName() string
	// ForUser enumerates the user's linked accounts with this provider in a
	// deterministic order.
	ForUser(ctx context.Context, user User) ([]Account, error)
	// IsProjectService reports whether this provider recognizes the
	// project's repository URL.
	IsProjectService(project Project) bool
}

// Account is one linked credential a user holds with a provider.
type Account interface {
	// ID identifies the linked account record.
	ID() string
	// Username is the remote account login, used for logging only.
	Username() string
	// Sync pulls the remote repository listing into local records. An
	// invalid or revoked token surfaces as an error for which
	// IsSyncServiceError reports true; any other error is unexpected.
	Sync(ctx context.Context) error
	// SetupWebhook provisions a commit webhook for the project. A false
	// return with nil error means the provider rejected the hook; the error
	// carries the rejection detail when available.
	SetupWebhook(ctx context.Context, project Project, integration *Integration) (bool, error)
}

type Registry interface {
	Register(provider Provider) error
	Get(providerID string) (Provider, bool)
	All() []Provider
}

type UserStore interface {
	Get(ctx context.Context, id string) (User, error)
	// ActiveOnWeekday selects users whose last login is after since, who
	// hold at least one linked account, and whose last-login ISO weekday
	// (Monday=1..Sunday=7) equals weekday.
	ActiveOnWeekday(ctx context.Context, weekday int, since time.Time) ([]User, error)
}

type OrganizationStore interface {
	FindBySlugs(ctx context.Context, slugs []string) ([]Organization, error)
	// FindWithSSOProvider returns organizations whose SSO integration uses
	// the given provider mode.
	FindWithSSOProvider(ctx context.Context, provider string) ([]Organization, error)
	// Members returns the distinct users holding at least a viewer role in
	// the organization.
	Members(ctx context.Context, organizationID string) ([]User, error)
}

type ProjectStore interface {
	Get(ctx context.Context, id string) (Project, error)
	// MarkValidWebhook flips HasValidWebhook to true. The flag is never
	// reset to false through this store.
	MarkValidWebhook(ctx context.Context, id string) error
}

type NotificationStore interface {
	Add(ctx context.Context, in AddNotificationInput) (Notification, error)
}

type RemoteRepositoryStore interface {
	Upsert(ctx context.Context, repo RemoteRepository) (RemoteRepository, error)
	ListForAccount(ctx context.Context, accountID string) ([]RemoteRepository, error)
}

// LinkedAccount is the persisted shape of a provider credential; providers
// wrap these into Account capabilities.
type LinkedAccount struct {
	ID          string
	UserID      string
	ProviderID  string
	Username    string
	AccessToken string
	TokenValid  bool
	CreatedAt   time.Time
}

type AccountStore interface {
	ListForUser(ctx context.Context, userID string, providerID string) ([]LinkedAccount, error)
}

// JobDispatcher is the consumed dispatch boundary: fire-and-forget
// submission with an optional delay. The core never blocks on completion.
type JobDispatcher interface {
	Submit(ctx context.Context, req JobRequest) error
}

// PermissionChecker guards the single-user sync entry point.
type PermissionChecker interface {
	// UserMatchesOrSuperuser fails when the requester is neither the
	// affected user nor a superuser.
	UserMatchesOrSuperuser(ctx context.Context, requesterID string, userID string) error
}

// URLResolver produces the links embedded in user-facing notifications.
type URLResolver interface {
	ProjectIntegrations(projectSlug string) string
	ConnectAccount(projectSlug string) string
	WebhookDocs() string
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}
