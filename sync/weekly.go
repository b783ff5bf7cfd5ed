package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-repo-sync/core"
)

// WeeklyScheduler re-syncs active users, pinned to the ISO weekday of each
// user's last login so a daily run spreads the full population evenly over
// the week. Users are synced in-process rather than through the queue: the
// scheduler already owns a long execution slot, and one queued job per user
// would only multiply overhead.
type WeeklyScheduler struct {
	Users    core.UserStore
	Engine   *Engine
	Config   core.SyncConfig
	Observer core.Observer
	Now      func() time.Time
}

func NewWeeklyScheduler(users core.UserStore, engine *Engine, cfg core.SyncConfig) *WeeklyScheduler {
	return &WeeklyScheduler{
		Users:  users,
		Engine: engine,
		Config: cfg,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Run selects users whose last login falls on today's ISO weekday within the
// active window and re-syncs each one. A failing user is logged with its
// progress position and skipped; the batch succeeds once every selected user
// was attempted. Only context cancellation aborts the loop.
func (s *WeeklyScheduler) Run(ctx context.Context) (err error) {
	if s == nil || s.Users == nil || s.Engine == nil {
		return fmt.Errorf("sync: weekly scheduler requires user store and engine")
	}
	now := s.now()
	fields := map[string]any{}
	defer func() {
		s.Observer.ObserveOperation(ctx, now, "weekly_resync", err, fields)
	}()

	weekday := isoWeekday(now)
	since := now.Add(-s.activeWindow())
	users, selectErr := s.Users.ActiveOnWeekday(ctx, weekday, since)
	if selectErr != nil {
		err = selectErr
		return err
	}
	fields["total_users"] = len(users)
	fields["weekday"] = weekday

	s.Observer.LogInfo(ctx, "triggering re-sync of remote repositories for active users", map[string]any{
		"total_users": len(users),
		"weekday":     weekday,
	})

	every := s.progressLogEvery()
	attempted := 0
	for i, user := range users {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			return err
		}
		if i%every == 0 {
			s.Observer.LogInfo(ctx, "progress on re-syncing remote repositories for active users", map[string]any{
				"progress":    fmt.Sprintf("%d/%d", i, len(users)),
				"total_users": len(users),
			})
		}
		if syncErr := s.Engine.SyncUser(ctx, user.ID); syncErr != nil {
			s.Observer.LogError(ctx, "there was a problem re-syncing remote repositories", map[string]any{
				"user_id":  user.ID,
				"username": user.Username,
				"progress": fmt.Sprintf("%d/%d", i, len(users)),
				"error":    syncErr.Error(),
			})
		}
		attempted++
	}
	fields["attempted_users"] = attempted
	return nil
}

func (s *WeeklyScheduler) activeWindow() time.Duration {
	if s != nil && s.Config.ActiveWindow > 0 {
		return s.Config.ActiveWindow
	}
	return core.DefaultConfig().Sync.ActiveWindow
}

func (s *WeeklyScheduler) progressLogEvery() int {
	if s != nil && s.Config.ProgressLogEvery > 0 {
		return s.Config.ProgressLogEvery
	}
	return core.DefaultConfig().Sync.ProgressLogEvery
}

func (s *WeeklyScheduler) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// isoWeekday maps time.Weekday onto ISO numbering: Monday=1 .. Sunday=7.
func isoWeekday(t time.Time) int {
	weekday := int(t.Weekday())
	if weekday == 0 {
		return 7
	}
	return weekday
}
