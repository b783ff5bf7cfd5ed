package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	SyncErrorBadInput              = "SYNC_BAD_INPUT"
	SyncErrorProviderNotFound      = "SYNC_PROVIDER_NOT_FOUND"
	SyncErrorServiceFailure        = "SYNC_SERVICE_ERROR"
	SyncErrorProviderAccessRevoked = "SYNC_PROVIDER_ACCESS_REVOKED"
	SyncErrorPermissionDenied      = "SYNC_PERMISSION_DENIED"
	SyncErrorRateLimited           = "SYNC_RATE_LIMITED"
	SyncErrorInternal              = "SYNC_INTERNAL_ERROR"
)

// NewSyncServiceError builds the per-account sync failure raised by provider
// integrations when a token is invalid or revoked. The sync engine recovers
// this kind locally and aggregates it; any other error aborts the run.
func NewSyncServiceError(providerID string, cause error) *goerrors.Error {
	trimmed := strings.TrimSpace(providerID)
	message := fmt.Sprintf("provider %q sync failed: invalid or revoked access token", trimmed)
	var err *goerrors.Error
	if cause != nil {
		err = goerrors.Wrap(cause, goerrors.CategoryAuth, message)
	} else {
		err = goerrors.New(message, goerrors.CategoryAuth)
	}
	return err.
		WithCode(http.StatusUnauthorized).
		WithTextCode(SyncErrorServiceFailure).
		WithMetadata(map[string]any{"provider_id": trimmed})
}

func IsSyncServiceError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == SyncErrorServiceFailure
}

// NewAggregateSyncError summarizes a full user sync in which one or more
// providers failed. providerIDs must already be deduplicated and in registry
// order so the message is reproducible across runs.
func NewAggregateSyncError(providerIDs []string) *goerrors.Error {
	joined := strings.Join(providerIDs, ", ")
	return goerrors.New(
		fmt.Sprintf("our access to the following providers is invalid or was revoked: %s", joined),
		goerrors.CategoryAuth,
	).
		WithCode(http.StatusUnauthorized).
		WithTextCode(SyncErrorProviderAccessRevoked).
		WithMetadata(map[string]any{"failed_providers": append([]string(nil), providerIDs...)})
}

func IsAggregateSyncError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == SyncErrorProviderAccessRevoked
}

func NewPermissionDeniedError(requesterID string, userID string) *goerrors.Error {
	return goerrors.New(
		fmt.Sprintf("requester %q may not sync user %q", strings.TrimSpace(requesterID), strings.TrimSpace(userID)),
		goerrors.CategoryAuthz,
	).
		WithCode(http.StatusForbidden).
		WithTextCode(SyncErrorPermissionDenied)
}

// SyncErrorMapper wraps arbitrary errors into the repo-sync error envelope.
func SyncErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return ensureSyncErrorEnvelope(rich)
	}
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureSyncErrorEnvelope(mapped)
}

func ensureSyncErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = syncHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultSyncTextCode(err.Category)
	}
	return err
}

func defaultSyncTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return SyncErrorBadInput
	case goerrors.CategoryNotFound:
		return SyncErrorProviderNotFound
	case goerrors.CategoryAuth:
		return SyncErrorServiceFailure
	case goerrors.CategoryAuthz:
		return SyncErrorPermissionDenied
	case goerrors.CategoryRateLimit:
		return SyncErrorRateLimited
	default:
		return SyncErrorInternal
	}
}

func syncHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
