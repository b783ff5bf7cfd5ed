package webhooks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-repo-sync/core"
)

// Attacher provisions a commit webhook for one project on behalf of one
// user. Provider resolution prefers an explicitly chosen integration; with
// none, the first registered provider recognizing the project wins.
type Attacher struct {
	Projects core.ProjectStore
	Users    core.UserStore
	Registry core.Registry
	// ServiceMap resolves an integration type to a provider id when the
	// caller pre-selected an integration, mirroring the fixed mapping the
	// dashboard exposes.
	ServiceMap    map[string]string
	Notifications core.NotificationStore
	URLs          core.URLResolver
	Observer      core.Observer
}

func NewAttacher(
	projects core.ProjectStore,
	users core.UserStore,
	registry core.Registry,
	serviceMap map[string]string,
	notifications core.NotificationStore,
	urls core.URLResolver,
) *Attacher {
	return &Attacher{
		Projects:      projects,
		Users:         users,
		Registry:      registry,
		ServiceMap:    serviceMap,
		Notifications: notifications,
		URLs:          urls,
	}
}

// Attach tries to set up a commit webhook and reports the outcome as a
// tri-state: attached, failed, or invalid configuration. Exactly one
// notification is created per failed call, and the project's webhook flag is
// only touched on a confirmed success.
func (a *Attacher) Attach(
	ctx context.Context,
	projectID string,
	userID string,
	integration *core.Integration,
) (result core.AttachResult, err error) {
	if a == nil || a.Projects == nil || a.Users == nil || a.Registry == nil {
		return core.AttachResultFailed, fmt.Errorf("webhooks: attacher requires project store, user store, and registry")
	}
	if a.Notifications == nil || a.URLs == nil {
		return core.AttachResultFailed, fmt.Errorf("webhooks: attacher requires notification store and url resolver")
	}
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"project_id": projectID,
		"user_id":    userID,
	}
	defer func() {
		fields["result"] = result.String()
		a.Observer.ObserveOperation(ctx, startedAt, "attach_webhook", err, fields)
	}()

	project, lookupErr := a.Projects.Get(ctx, strings.TrimSpace(projectID))
	if lookupErr != nil {
		if errors.Is(lookupErr, core.ErrProjectNotFound) {
			return core.AttachResultFailed, nil
		}
		err = lookupErr
		return core.AttachResultFailed, err
	}
	user, lookupErr := a.Users.Get(ctx, strings.TrimSpace(userID))
	if lookupErr != nil {
		if errors.Is(lookupErr, core.ErrUserNotFound) {
			return core.AttachResultFailed, nil
		}
		err = lookupErr
		return core.AttachResultFailed, err
	}
	fields["project_slug"] = project.Slug

	provider, ok := a.resolveProvider(project, integration)
	if !ok {
		a.Observer.LogInfo(ctx, "no registered provider can serve this project", map[string]any{
			"project_slug": project.Slug,
		})
		if notifyErr := a.notifyInvalidConfig(ctx, project); notifyErr != nil {
			err = notifyErr
			return core.AttachResultInvalidConfig, err
		}
		return core.AttachResultInvalidConfig, nil
	}
	fields["provider_id"] = provider.ID()

	accounts, listErr := provider.ForUser(ctx, user)
	if listErr != nil {
		err = listErr
		return core.AttachResultFailed, err
	}

	for _, account := range accounts {
		ok, setupErr := account.SetupWebhook(ctx, project, integration)
		if setupErr != nil {
			a.Observer.LogInfo(ctx, "webhook setup attempt failed", map[string]any{
				"project_slug": project.Slug,
				"provider_id":  provider.ID(),
				"account":      account.Username(),
				"error":        setupErr.Error(),
			})
		}
		if !ok {
			continue
		}
		if markErr := a.Projects.MarkValidWebhook(ctx, project.ID); markErr != nil {
			err = markErr
			return core.AttachResultFailed, err
		}
		return core.AttachResultAttached, nil
	}

	if len(accounts) > 0 {
		err = a.notify(ctx, project, core.MessageOAuthWebhookNoPermissions, map[string]string{
			"provider_name":    provider.DisplayName(),
			"url_docs_webhook": a.URLs.WebhookDocs(),
		})
	} else {
		err = a.notify(ctx, project, core.MessageOAuthWebhookNoAccount, map[string]string{
			"provider_name":       provider.DisplayName(),
			"url_connect_account": a.URLs.ConnectAccount(project.Slug),
		})
	}
	return core.AttachResultFailed, err
}

// resolveProvider picks the target provider: the service-map entry for an
// explicit integration, otherwise the first registered provider whose
// project predicate matches.
func (a *Attacher) resolveProvider(project core.Project, integration *core.Integration) (core.Provider, bool) {
	if integration != nil {
		providerID, ok := a.ServiceMap[strings.TrimSpace(integration.Type)]
		if !ok {
			return nil, false
		}
		return a.Registry.Get(providerID)
	}
	for _, provider := range a.Registry.All() {
		if provider.IsProjectService(project) {
			return provider, true
		}
	}
	return nil, false
}

func (a *Attacher) notifyInvalidConfig(ctx context.Context, project core.Project) error {
	return a.notify(ctx, project, core.MessageOAuthWebhookInvalid, map[string]string{
		"url_integrations": a.URLs.ProjectIntegrations(project.Slug),
	})
}

func (a *Attacher) notify(ctx context.Context, project core.Project, messageID string, formatValues map[string]string) error {
	if a == nil || a.Notifications == nil {
		return fmt.Errorf("webhooks: notification store is required")
	}
	_, err := a.Notifications.Add(ctx, core.AddNotificationInput{
		MessageID: messageID,
		AttachedTo: core.NotificationAttachment{
			Type: "project",
			ID:   project.ID,
		},
		Dismissable:  true,
		FormatValues: formatValues,
	})
	return err
}
