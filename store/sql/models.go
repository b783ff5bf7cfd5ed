package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type userRecord struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          string     `bun:"id,pk"`
	Username    string     `bun:"username,notnull"`
	IsSuperuser bool       `bun:"is_superuser,notnull"`
	LastLogin   *time.Time `bun:"last_login,nullzero"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type linkedAccountRecord struct {
	bun.BaseModel `bun:"table:linked_accounts,alias:la"`

	ID          string    `bun:"id,pk"`
	UserID      string    `bun:"user_id,notnull"`
	ProviderID  string    `bun:"provider_id,notnull"`
	Username    string    `bun:"username,notnull"`
	AccessToken string    `bun:"access_token,notnull"`
	TokenValid  bool      `bun:"token_valid,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type organizationRecord struct {
	bun.BaseModel `bun:"table:organizations,alias:o"`

	ID        string    `bun:"id,pk"`
	Slug      string    `bun:"slug,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type ssoIntegrationRecord struct {
	bun.BaseModel `bun:"table:organization_sso_integrations,alias:osi"`

	ID             string    `bun:"id,pk"`
	OrganizationID string    `bun:"organization_id,notnull"`
	Provider       string    `bun:"provider,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type organizationMemberRecord struct {
	bun.BaseModel `bun:"table:organization_members,alias:om"`

	ID             string    `bun:"id,pk"`
	OrganizationID string    `bun:"organization_id,notnull"`
	UserID         string    `bun:"user_id,notnull"`
	Role           string    `bun:"role,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type projectRecord struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID              string    `bun:"id,pk"`
	Slug            string    `bun:"slug,notnull"`
	RepoURL         string    `bun:"repo_url,notnull"`
	HasValidWebhook bool      `bun:"has_valid_webhook,notnull"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type notificationRecord struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID             string            `bun:"id,pk"`
	MessageID      string            `bun:"message_id,notnull"`
	AttachedToType string            `bun:"attached_to_type,notnull"`
	AttachedToID   string            `bun:"attached_to_id,notnull"`
	Dismissable    bool              `bun:"dismissable,notnull"`
	FormatValues   map[string]string `bun:"format_values,type:jsonb,notnull"`
	CreatedAt      time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type remoteRepositoryRecord struct {
	bun.BaseModel `bun:"table:remote_repositories,alias:rr"`

	ID            string    `bun:"id,pk"`
	ProviderID    string    `bun:"provider_id,notnull"`
	AccountID     string    `bun:"account_id,notnull"`
	RemoteID      string    `bun:"remote_id,notnull"`
	Name          string    `bun:"name,notnull"`
	FullName      string    `bun:"full_name,notnull"`
	CloneURL      string    `bun:"clone_url,notnull"`
	HTMLURL       string    `bun:"html_url,notnull"`
	Private       bool      `bun:"private,notnull"`
	DefaultBranch string    `bun:"default_branch"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
