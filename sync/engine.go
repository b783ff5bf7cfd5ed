package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-repo-sync/core"
)

// Engine synchronizes all linked provider accounts for one user. Iteration
// is strictly sequential: provider API calls are rate limited per account,
// and failure aggregation requires every provider to be attempted.
type Engine struct {
	Users    core.UserStore
	Registry core.Registry
	Observer core.Observer
	Now      func() time.Time
}

func NewEngine(users core.UserStore, registry core.Registry) *Engine {
	return &Engine{
		Users:    users,
		Registry: registry,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// SyncUser re-syncs every linked account of every registered provider for
// the user. A missing user is a silent no-op. Per-account sync failures of
// the provider-sync kind are recovered and aggregated; the returned error
// names each failed provider exactly once, in registry order. Any other
// error aborts the run immediately.
func (e *Engine) SyncUser(ctx context.Context, userID string) (err error) {
	if e == nil || e.Users == nil || e.Registry == nil {
		return fmt.Errorf("sync: engine requires user store and registry")
	}
	startedAt := e.now()
	fields := map[string]any{"user_id": userID}
	defer func() {
		e.Observer.ObserveOperation(ctx, startedAt, "sync_user", err, fields)
	}()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("sync: user id is required")
	}

	user, lookupErr := e.Users.Get(ctx, userID)
	if lookupErr != nil {
		if errors.Is(lookupErr, core.ErrUserNotFound) {
			return nil
		}
		err = lookupErr
		return err
	}
	fields["username"] = user.Username

	var failed []string
	seen := map[string]struct{}{}
	for _, provider := range e.Registry.All() {
		accounts, listErr := provider.ForUser(ctx, user)
		if listErr != nil {
			err = listErr
			return err
		}
		for _, account := range accounts {
			syncErr := account.Sync(ctx)
			if syncErr == nil {
				continue
			}
			if !core.IsSyncServiceError(syncErr) {
				err = syncErr
				return err
			}
			if _, ok := seen[provider.ID()]; !ok {
				seen[provider.ID()] = struct{}{}
				failed = append(failed, provider.ID())
			}
		}
	}

	if len(failed) > 0 {
		fields["failed_providers"] = strings.Join(failed, ", ")
		err = core.NewAggregateSyncError(failed)
		return err
	}
	return nil
}

func (e *Engine) now() time.Time {
	if e != nil && e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}
