package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestNewSyncServiceError(t *testing.T) {
	cause := fmt.Errorf("401 from api")
	err := NewSyncServiceError("github", cause)

	if !IsSyncServiceError(err) {
		t.Fatalf("expected sync service error kind")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected the cause to stay on the unwrap chain")
	}
	if IsAggregateSyncError(err) {
		t.Fatalf("per-provider error must not look like the aggregate")
	}
	if err.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status code %d", err.Code)
	}
	if got := err.Metadata["provider_id"]; got != "github" {
		t.Fatalf("unexpected provider metadata %v", got)
	}
}

func TestNewAggregateSyncErrorMessage(t *testing.T) {
	err := NewAggregateSyncError([]string{"github", "bitbucket"})

	want := "our access to the following providers is invalid or was revoked: github, bitbucket"
	if err.Message != want {
		t.Fatalf("unexpected message:\n got %q\nwant %q", err.Message, want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("rendered error %q should carry the provider enumeration", err.Error())
	}
	if !IsAggregateSyncError(err) {
		t.Fatalf("expected aggregate error kind")
	}
	if IsSyncServiceError(err) {
		t.Fatalf("aggregate must not satisfy the per-provider check")
	}
}

func TestIsSyncServiceErrorRejectsPlainErrors(t *testing.T) {
	if IsSyncServiceError(fmt.Errorf("boom")) {
		t.Fatalf("plain error must not match")
	}
	if IsSyncServiceError(nil) {
		t.Fatalf("nil must not match")
	}
}

func TestSyncErrorMapperFillsEnvelope(t *testing.T) {
	mapped := SyncErrorMapper(fmt.Errorf("backend exploded"))
	if mapped == nil {
		t.Fatalf("expected mapped error")
	}
	if mapped.TextCode == "" {
		t.Fatalf("expected a text code")
	}
	if mapped.Code == 0 {
		t.Fatalf("expected an http status")
	}
}

func TestSyncErrorMapperKeepsRichErrors(t *testing.T) {
	original := goerrors.New("nope", goerrors.CategoryAuthz)
	mapped := SyncErrorMapper(original)
	if mapped.TextCode != SyncErrorPermissionDenied {
		t.Fatalf("expected authz default text code, got %q", mapped.TextCode)
	}
	if mapped.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", mapped.Code)
	}
}

func TestSyncErrorMapperNil(t *testing.T) {
	if SyncErrorMapper(nil) != nil {
		t.Fatalf("nil input must map to nil")
	}
}

func TestPermissionDeniedError(t *testing.T) {
	err := NewPermissionDeniedError("u_1", "u_2")
	if err.TextCode != SyncErrorPermissionDenied {
		t.Fatalf("unexpected text code %q", err.TextCode)
	}
	if err.Code != http.StatusForbidden {
		t.Fatalf("unexpected status %d", err.Code)
	}
}
