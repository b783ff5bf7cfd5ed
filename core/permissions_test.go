package core

import (
	"context"
	"testing"
)

func TestUserPermissionChecker_SameUserAllowed(t *testing.T) {
	checker := NewUserPermissionChecker(memoryUserStore{})

	if err := checker.UserMatchesOrSuperuser(context.Background(), "u_1", "u_1"); err != nil {
		t.Fatalf("self sync must be allowed: %v", err)
	}
}

func TestUserPermissionChecker_SuperuserAllowed(t *testing.T) {
	checker := NewUserPermissionChecker(memoryUserStore{users: map[string]User{
		"admin": {ID: "admin", IsSuperuser: true},
	}})

	if err := checker.UserMatchesOrSuperuser(context.Background(), "admin", "u_2"); err != nil {
		t.Fatalf("superuser must be allowed: %v", err)
	}
}

func TestUserPermissionChecker_OtherUserDenied(t *testing.T) {
	checker := NewUserPermissionChecker(memoryUserStore{users: map[string]User{
		"u_1": {ID: "u_1"},
	}})

	err := checker.UserMatchesOrSuperuser(context.Background(), "u_1", "u_2")
	if err == nil {
		t.Fatalf("expected denial")
	}
	if !goerrorsTextCodeIs(err, SyncErrorPermissionDenied) {
		t.Fatalf("expected permission denied code, got %v", err)
	}
}

func TestUserPermissionChecker_UnknownRequesterDenied(t *testing.T) {
	checker := NewUserPermissionChecker(memoryUserStore{})

	if err := checker.UserMatchesOrSuperuser(context.Background(), "ghost", "u_2"); err == nil {
		t.Fatalf("expected denial for unknown requester")
	}
	if err := checker.UserMatchesOrSuperuser(context.Background(), "", "u_2"); err == nil {
		t.Fatalf("expected denial for blank requester")
	}
}

func TestStaticURLResolver(t *testing.T) {
	resolver := NewStaticURLResolver("https://app.example.com/", "https://docs.example.com/webhooks")

	if got := resolver.ProjectIntegrations("my-project"); got != "https://app.example.com/projects/my-project/integrations/" {
		t.Fatalf("unexpected integrations url %q", got)
	}
	if got := resolver.ConnectAccount("my-project"); got != "https://app.example.com/projects/my-project/integrations/" {
		t.Fatalf("unexpected connect url %q", got)
	}
	if got := resolver.WebhookDocs(); got != "https://docs.example.com/webhooks" {
		t.Fatalf("unexpected docs url %q", got)
	}
}

func TestStaticURLResolver_UnsetDocsURLStaysEmpty(t *testing.T) {
	resolver := NewStaticURLResolver("", "")
	if got := resolver.WebhookDocs(); got != "" {
		t.Fatalf("expected empty docs url when unconfigured, got %q", got)
	}
	if got := DefaultConfig().Webhook.DocsURL; got != "" {
		t.Fatalf("default config must not ship a docs url, got %q", got)
	}
}
