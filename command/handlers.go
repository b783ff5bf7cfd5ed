package command

import (
	"context"
	"strings"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-repo-sync/core"
)

type SyncService interface {
	SyncUser(ctx context.Context, userID string) error
}

type DistributeService interface {
	Distribute(ctx context.Context, organizationSlugs []string) error
}

type WeeklyService interface {
	Run(ctx context.Context) error
}

type AttachService interface {
	Attach(ctx context.Context, projectID string, userID string, integration *core.Integration) (core.AttachResult, error)
}

type SyncUserCommand struct {
	service     SyncService
	permissions core.PermissionChecker
}

func NewSyncUserCommand(service SyncService, permissions core.PermissionChecker) *SyncUserCommand {
	return &SyncUserCommand{service: service, permissions: permissions}
}

func (c *SyncUserCommand) Execute(ctx context.Context, msg SyncUserMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: sync service is required")
	}
	if c.permissions == nil {
		return commandDependencyError("command: permission checker is required")
	}
	if err := c.permissions.UserMatchesOrSuperuser(ctx, msg.RequesterID, msg.UserID); err != nil {
		return err
	}
	return c.service.SyncUser(ctx, msg.UserID)
}

type DistributeResyncCommand struct {
	service DistributeService
}

func NewDistributeResyncCommand(service DistributeService) *DistributeResyncCommand {
	return &DistributeResyncCommand{service: service}
}

func (c *DistributeResyncCommand) Execute(ctx context.Context, msg DistributeResyncMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: distribute service is required")
	}
	return c.service.Distribute(ctx, msg.OrganizationSlugs)
}

type WeeklyResyncCommand struct {
	service WeeklyService
}

func NewWeeklyResyncCommand(service WeeklyService) *WeeklyResyncCommand {
	return &WeeklyResyncCommand{service: service}
}

func (c *WeeklyResyncCommand) Execute(ctx context.Context, msg WeeklyResyncMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: weekly service is required")
	}
	return c.service.Run(ctx)
}

type AttachWebhookCommand struct {
	service AttachService
}

func NewAttachWebhookCommand(service AttachService) *AttachWebhookCommand {
	return &AttachWebhookCommand{service: service}
}

func (c *AttachWebhookCommand) Execute(ctx context.Context, msg AttachWebhookMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: attach service is required")
	}
	var integration *core.Integration
	if strings.TrimSpace(msg.IntegrationID) != "" {
		integration = &core.Integration{
			ID:        strings.TrimSpace(msg.IntegrationID),
			ProjectID: strings.TrimSpace(msg.ProjectID),
			Type:      strings.TrimSpace(msg.IntegrationType),
		}
	}
	result, err := c.service.Attach(ctx, msg.ProjectID, msg.UserID, integration)
	if err != nil {
		return err
	}
	storeResult(ctx, result)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
