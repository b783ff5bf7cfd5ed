package command

import (
	"context"
	"fmt"
	"testing"

	"github.com/goliatone/go-repo-sync/core"
)

type stubSyncService struct {
	syncedIDs []string
	fail      error
}

func (s *stubSyncService) SyncUser(_ context.Context, userID string) error {
	if s.fail != nil {
		return s.fail
	}
	s.syncedIDs = append(s.syncedIDs, userID)
	return nil
}

type stubDistributeService struct {
	slugs [][]string
}

func (s *stubDistributeService) Distribute(_ context.Context, organizationSlugs []string) error {
	s.slugs = append(s.slugs, organizationSlugs)
	return nil
}

type stubWeeklyService struct {
	runs int
}

func (s *stubWeeklyService) Run(context.Context) error {
	s.runs++
	return nil
}

type stubAttachService struct {
	result       core.AttachResult
	fail         error
	integrations []*core.Integration
}

func (s *stubAttachService) Attach(_ context.Context, projectID string, userID string, integration *core.Integration) (core.AttachResult, error) {
	s.integrations = append(s.integrations, integration)
	return s.result, s.fail
}

type allowAllChecker struct{}

func (allowAllChecker) UserMatchesOrSuperuser(context.Context, string, string) error { return nil }

type denyAllChecker struct{}

func (denyAllChecker) UserMatchesOrSuperuser(_ context.Context, requesterID string, userID string) error {
	return core.NewPermissionDeniedError(requesterID, userID)
}

func TestSyncUserCommand_ExecuteChecksPermission(t *testing.T) {
	service := &stubSyncService{}
	cmd := NewSyncUserCommand(service, denyAllChecker{})

	err := cmd.Execute(context.Background(), SyncUserMessage{RequesterID: "u_2", UserID: "u_1"})
	if err == nil {
		t.Fatalf("expected permission denial")
	}
	if len(service.syncedIDs) != 0 {
		t.Fatalf("denied request must not reach the service")
	}
}

func TestSyncUserCommand_ExecuteDelegates(t *testing.T) {
	service := &stubSyncService{}
	cmd := NewSyncUserCommand(service, allowAllChecker{})

	if err := cmd.Execute(context.Background(), SyncUserMessage{RequesterID: "u_1", UserID: "u_1"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(service.syncedIDs) != 1 || service.syncedIDs[0] != "u_1" {
		t.Fatalf("unexpected sync calls %v", service.syncedIDs)
	}
}

func TestSyncUserCommand_ExecuteRequiresDependencies(t *testing.T) {
	if err := NewSyncUserCommand(nil, allowAllChecker{}).Execute(context.Background(), SyncUserMessage{}); err == nil {
		t.Fatalf("expected dependency error without service")
	}
	if err := NewSyncUserCommand(&stubSyncService{}, nil).Execute(context.Background(), SyncUserMessage{}); err == nil {
		t.Fatalf("expected dependency error without permission checker")
	}
}

func TestSyncUserMessage_Validate(t *testing.T) {
	if err := (SyncUserMessage{RequesterID: "u_1", UserID: "u_2"}).Validate(); err != nil {
		t.Fatalf("valid message rejected: %v", err)
	}
	if err := (SyncUserMessage{RequesterID: "u_1"}).Validate(); err == nil {
		t.Fatalf("expected user id requirement")
	}
	if err := (SyncUserMessage{UserID: "u_1"}).Validate(); err == nil {
		t.Fatalf("expected requester id requirement")
	}
}

func TestDistributeResyncCommand_ExecutePassesSlugs(t *testing.T) {
	service := &stubDistributeService{}
	cmd := NewDistributeResyncCommand(service)

	if err := cmd.Execute(context.Background(), DistributeResyncMessage{OrganizationSlugs: []string{"acme"}}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(service.slugs) != 1 || service.slugs[0][0] != "acme" {
		t.Fatalf("unexpected slugs %v", service.slugs)
	}
}

func TestWeeklyResyncCommand_Execute(t *testing.T) {
	service := &stubWeeklyService{}
	cmd := NewWeeklyResyncCommand(service)

	if err := cmd.Execute(context.Background(), WeeklyResyncMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if service.runs != 1 {
		t.Fatalf("expected one run, got %d", service.runs)
	}
}

func TestAttachWebhookCommand_ExecuteBuildsIntegration(t *testing.T) {
	service := &stubAttachService{result: core.AttachResultAttached}
	cmd := NewAttachWebhookCommand(service)

	msg := AttachWebhookMessage{
		ProjectID:       "p_1",
		UserID:          "u_1",
		IntegrationID:   " i_1 ",
		IntegrationType: "github_webhook",
	}
	if err := cmd.Execute(context.Background(), msg); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(service.integrations) != 1 {
		t.Fatalf("expected one attach call")
	}
	integration := service.integrations[0]
	if integration == nil || integration.ID != "i_1" || integration.Type != "github_webhook" {
		t.Fatalf("unexpected integration %+v", integration)
	}
}

func TestAttachWebhookCommand_ExecuteWithoutIntegration(t *testing.T) {
	service := &stubAttachService{result: core.AttachResultFailed}
	cmd := NewAttachWebhookCommand(service)

	if err := cmd.Execute(context.Background(), AttachWebhookMessage{ProjectID: "p_1", UserID: "u_1"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if service.integrations[0] != nil {
		t.Fatalf("expected nil integration, got %+v", service.integrations[0])
	}
}

func TestAttachWebhookCommand_ExecutePropagatesError(t *testing.T) {
	service := &stubAttachService{fail: fmt.Errorf("store offline")}
	cmd := NewAttachWebhookCommand(service)

	if err := cmd.Execute(context.Background(), AttachWebhookMessage{ProjectID: "p_1", UserID: "u_1"}); err == nil {
		t.Fatalf("expected error to surface")
	}
}

func TestAttachWebhookMessage_Validate(t *testing.T) {
	valid := AttachWebhookMessage{ProjectID: "p_1", UserID: "u_1"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid message rejected: %v", err)
	}
	if err := (AttachWebhookMessage{UserID: "u_1"}).Validate(); err == nil {
		t.Fatalf("expected project id requirement")
	}
	if err := (AttachWebhookMessage{ProjectID: "p_1"}).Validate(); err == nil {
		t.Fatalf("expected user id requirement")
	}
	withID := AttachWebhookMessage{ProjectID: "p_1", UserID: "u_1", IntegrationID: "i_1"}
	if err := withID.Validate(); err == nil {
		t.Fatalf("integration id without type must fail")
	}
}

func TestMessageTypes(t *testing.T) {
	if (SyncUserMessage{}).Type() != TypeSyncUser {
		t.Fatalf("unexpected sync user type")
	}
	if (DistributeResyncMessage{}).Type() != TypeDistributeResync {
		t.Fatalf("unexpected distribute type")
	}
	if (WeeklyResyncMessage{}).Type() != TypeWeeklyResync {
		t.Fatalf("unexpected weekly type")
	}
	if (AttachWebhookMessage{}).Type() != TypeAttachWebhook {
		t.Fatalf("unexpected attach type")
	}
}
