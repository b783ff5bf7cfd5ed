package sqlstore

import (
	"time"

	"github.com/goliatone/go-repo-sync/core"
)

func (r *userRecord) toDomain() core.User {
	if r == nil {
		return core.User{}
	}
	user := core.User{
		ID:          r.ID,
		Username:    r.Username,
		IsSuperuser: r.IsSuperuser,
	}
	if r.LastLogin != nil {
		lastLogin := r.LastLogin.UTC()
		user.LastLogin = &lastLogin
	}
	return user
}

func (r *linkedAccountRecord) toDomain() core.LinkedAccount {
	if r == nil {
		return core.LinkedAccount{}
	}
	return core.LinkedAccount{
		ID:          r.ID,
		UserID:      r.UserID,
		ProviderID:  r.ProviderID,
		Username:    r.Username,
		AccessToken: r.AccessToken,
		TokenValid:  r.TokenValid,
		CreatedAt:   r.CreatedAt,
	}
}

func (r *organizationRecord) toDomain(sso *ssoIntegrationRecord) core.Organization {
	if r == nil {
		return core.Organization{}
	}
	organization := core.Organization{
		ID:   r.ID,
		Slug: r.Slug,
	}
	if sso != nil {
		organization.SSO = &core.SSOIntegration{
			OrganizationID: sso.OrganizationID,
			Provider:       sso.Provider,
		}
	}
	return organization
}

func (r *projectRecord) toDomain() core.Project {
	if r == nil {
		return core.Project{}
	}
	return core.Project{
		ID:              r.ID,
		Slug:            r.Slug,
		RepoURL:         r.RepoURL,
		HasValidWebhook: r.HasValidWebhook,
	}
}

func newNotificationRecord(in core.AddNotificationInput, now time.Time) *notificationRecord {
	return &notificationRecord{
		MessageID:      in.MessageID,
		AttachedToType: in.AttachedTo.Type,
		AttachedToID:   in.AttachedTo.ID,
		Dismissable:    in.Dismissable,
		FormatValues:   copyStringMap(in.FormatValues),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (r *notificationRecord) toDomain() core.Notification {
	if r == nil {
		return core.Notification{}
	}
	return core.Notification{
		ID:        r.ID,
		MessageID: r.MessageID,
		AttachedTo: core.NotificationAttachment{
			Type: r.AttachedToType,
			ID:   r.AttachedToID,
		},
		Dismissable:  r.Dismissable,
		FormatValues: copyStringMap(r.FormatValues),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func newRemoteRepositoryRecord(repo core.RemoteRepository, now time.Time) *remoteRepositoryRecord {
	return &remoteRepositoryRecord{
		ID:            repo.ID,
		ProviderID:    repo.ProviderID,
		AccountID:     repo.AccountID,
		RemoteID:      repo.RemoteID,
		Name:          repo.Name,
		FullName:      repo.FullName,
		CloneURL:      repo.CloneURL,
		HTMLURL:       repo.HTMLURL,
		Private:       repo.Private,
		DefaultBranch: repo.DefaultBranch,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (r *remoteRepositoryRecord) toDomain() core.RemoteRepository {
	if r == nil {
		return core.RemoteRepository{}
	}
	return core.RemoteRepository{
		ID:            r.ID,
		ProviderID:    r.ProviderID,
		AccountID:     r.AccountID,
		RemoteID:      r.RemoteID,
		Name:          r.Name,
		FullName:      r.FullName,
		CloneURL:      r.CloneURL,
		HTMLURL:       r.HTMLURL,
		Private:       r.Private,
		DefaultBranch: r.DefaultBranch,
		UpdatedAt:     r.UpdatedAt,
	}
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
