package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"testing"
	"time"

	"github.com/goliatone/go-repo-sync/core"
)

type capturedLine struct {
	level  string
	msg    string
	fields map[string]any
}

type lineLogger struct {
	mu       *stdsync.Mutex
	records  *[]capturedLine
	defaults map[string]any
}

func newLineLogger() *lineLogger {
	records := []capturedLine{}
	return &lineLogger{mu: &stdsync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *lineLogger) WithFields(fields map[string]any) core.Logger {
	merged := make(map[string]any, len(l.defaults)+len(fields))
	for key, value := range l.defaults {
		merged[key] = value
	}
	for key, value := range fields {
		merged[key] = value
	}
	return &lineLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *lineLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *lineLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *lineLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *lineLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *lineLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *lineLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *lineLogger) WithContext(context.Context) core.Logger {
	return &lineLogger{mu: l.mu, records: l.records, defaults: l.defaults}
}

func (l *lineLogger) record(level string, msg string, args ...any) {
	fields := make(map[string]any, len(l.defaults)+len(args)/2)
	for key, value := range l.defaults {
		fields[key] = value
	}
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLine{level: level, msg: msg, fields: fields})
}

func (l *lineLogger) snapshot() []capturedLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := *l.records
	out := make([]capturedLine, len(items))
	copy(out, items)
	return out
}

func countByMessage(lines []capturedLine, msg string) int {
	count := 0
	for _, line := range lines {
		if line.msg == msg {
			count++
		}
	}
	return count
}

// fixedMonday is a Monday so isoWeekday(now) == 1 in every test.
var fixedMonday = time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)

func weeklyFixture(users []core.User, failing map[string]error, cfg core.SyncConfig) (*WeeklyScheduler, *lineLogger, *int) {
	synced := 0
	userStore := stubUserStore{
		getFn: func(_ context.Context, id string) (core.User, error) {
			for _, user := range users {
				if user.ID == id {
					return user, nil
				}
			}
			return core.User{}, core.ErrUserNotFound
		},
		activeFn: func(_ context.Context, weekday int, since time.Time) ([]core.User, error) {
			if weekday != 1 {
				return nil, fmt.Errorf("expected monday selection, got weekday %d", weekday)
			}
			return users, nil
		},
	}
	registry := core.NewProviderRegistry()
	_ = registry.Register(syncCountingProvider{failing: failing, synced: &synced})

	engine := NewEngine(userStore, registry)
	scheduler := NewWeeklyScheduler(userStore, engine, cfg)
	scheduler.Now = func() time.Time { return fixedMonday }

	logger := newLineLogger()
	scheduler.Observer = core.Observer{Logger: logger}
	return scheduler, logger, &synced
}

// syncCountingProvider returns one account per user whose Sync outcome is
// looked up in the failing map by the user id it was created for.
type syncCountingProvider struct {
	failing map[string]error
	synced  *int
}

func (p syncCountingProvider) ID() string          { return "github" }
func (p syncCountingProvider) DisplayName() string { return "GitHub" }

func (p syncCountingProvider) ForUser(_ context.Context, user core.User) ([]core.Account, error) {
	return []core.Account{countingAccount{userID: user.ID, failing: p.failing, synced: p.synced}}, nil
}

func (p syncCountingProvider) IsProjectService(core.Project) bool { return false }

type countingAccount struct {
	userID  string
	failing map[string]error
	synced  *int
}

func (a countingAccount) ID() string       { return "acct-" + a.userID }
func (a countingAccount) Username() string { return a.userID }

func (a countingAccount) Sync(context.Context) error {
	if err, ok := a.failing[a.userID]; ok {
		return err
	}
	*a.synced++
	return nil
}

func (a countingAccount) SetupWebhook(context.Context, core.Project, *core.Integration) (bool, error) {
	return false, nil
}

func usersNamed(count int) []core.User {
	users := make([]core.User, 0, count)
	for i := 0; i < count; i++ {
		users = append(users, core.User{ID: fmt.Sprintf("u_%d", i), Username: fmt.Sprintf("user%d", i)})
	}
	return users
}

func TestWeeklyScheduler_RunSyncsSelectedUsers(t *testing.T) {
	scheduler, _, synced := weeklyFixture(usersNamed(3), nil, core.SyncConfig{})

	if err := scheduler.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if *synced != 3 {
		t.Fatalf("expected 3 synced accounts, got %d", *synced)
	}
}

func TestWeeklyScheduler_RunIsolatesFailingUsers(t *testing.T) {
	failing := map[string]error{
		"u_1": fmt.Errorf("api exploded"),
	}
	scheduler, logger, synced := weeklyFixture(usersNamed(4), failing, core.SyncConfig{})

	if err := scheduler.Run(context.Background()); err != nil {
		t.Fatalf("one failing user must not fail the batch: %v", err)
	}
	if *synced != 3 {
		t.Fatalf("expected 3 successful users, got %d", *synced)
	}
	lines := logger.snapshot()
	if countByMessage(lines, "there was a problem re-syncing remote repositories") != 1 {
		t.Fatalf("expected one failure line, logs: %v", lines)
	}
}

func TestWeeklyScheduler_RunLogsProgress(t *testing.T) {
	scheduler, logger, _ := weeklyFixture(usersNamed(5), nil, core.SyncConfig{ProgressLogEvery: 2})

	if err := scheduler.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := logger.snapshot()
	// Positions 0, 2, and 4 emit progress for five users at interval two.
	if got := countByMessage(lines, "progress on re-syncing remote repositories for active users"); got != 3 {
		t.Fatalf("expected 3 progress lines, got %d", got)
	}
}

func TestWeeklyScheduler_RunStopsOnContextCancel(t *testing.T) {
	scheduler, _, synced := weeklyFixture(usersNamed(10), nil, core.SyncConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := scheduler.Run(ctx); err == nil {
		t.Fatalf("expected context error")
	}
	if *synced != 0 {
		t.Fatalf("no user should sync after cancellation, got %d", *synced)
	}
}

func TestWeeklyScheduler_RunPropagatesSelectionError(t *testing.T) {
	userStore := stubUserStore{
		activeFn: func(context.Context, int, time.Time) ([]core.User, error) {
			return nil, fmt.Errorf("query timeout")
		},
	}
	engine := NewEngine(userStore, core.NewProviderRegistry())
	scheduler := NewWeeklyScheduler(userStore, engine, core.SyncConfig{})

	if err := scheduler.Run(context.Background()); err == nil {
		t.Fatalf("expected selection error to surface")
	}
}

func TestIsoWeekday(t *testing.T) {
	// 2025-06-02 is a Monday, 2025-06-08 a Sunday.
	if got := isoWeekday(fixedMonday); got != 1 {
		t.Fatalf("monday = %d, want 1", got)
	}
	sunday := time.Date(2025, time.June, 8, 9, 0, 0, 0, time.UTC)
	if got := isoWeekday(sunday); got != 7 {
		t.Fatalf("sunday = %d, want 7", got)
	}
}
