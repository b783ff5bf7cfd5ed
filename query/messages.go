package query

import (
	"strings"
)

const (
	TypeGetProject             = "reposync.query.project.get"
	TypeListRemoteRepositories = "reposync.query.remote_repositories.list"
	TypeListLinkedAccounts     = "reposync.query.linked_accounts.list"
)

// GetProjectMessage loads one project record, webhook state included.
type GetProjectMessage struct {
	ProjectID string
}

func (GetProjectMessage) Type() string { return TypeGetProject }

func (m GetProjectMessage) Validate() error {
	if strings.TrimSpace(m.ProjectID) == "" {
		return queryValidationError("project_id", "project id is required")
	}
	return nil
}

// ListRemoteRepositoriesMessage lists the repositories mirrored for one
// linked account, most recently synced state.
type ListRemoteRepositoriesMessage struct {
	AccountID string
}

func (ListRemoteRepositoriesMessage) Type() string { return TypeListRemoteRepositories }

func (m ListRemoteRepositoriesMessage) Validate() error {
	if strings.TrimSpace(m.AccountID) == "" {
		return queryValidationError("account_id", "account id is required")
	}
	return nil
}

// ListLinkedAccountsMessage lists a user's credentials with one provider.
type ListLinkedAccountsMessage struct {
	UserID     string
	ProviderID string
}

func (ListLinkedAccountsMessage) Type() string { return TypeListLinkedAccounts }

func (m ListLinkedAccountsMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return queryValidationError("user_id", "user id is required")
	}
	if strings.TrimSpace(m.ProviderID) == "" {
		return queryValidationError("provider_id", "provider id is required")
	}
	return nil
}
