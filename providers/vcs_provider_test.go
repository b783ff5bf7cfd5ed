package providers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-repo-sync/core"
)

type fakeDriver struct {
	repos      []core.RemoteRepository
	listErr    error
	hookResult bool
	hookErr    error
	host       string
}

func (d fakeDriver) ListRepositories(context.Context, core.LinkedAccount) ([]core.RemoteRepository, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	return append([]core.RemoteRepository(nil), d.repos...), nil
}

func (d fakeDriver) CreateWebhook(context.Context, core.LinkedAccount, core.Project, *core.Integration) (bool, error) {
	return d.hookResult, d.hookErr
}

func (d fakeDriver) RecognizesRepoURL(repoURL string) bool {
	return HostMatches(repoURL, d.host)
}

type memoryAccountStore struct {
	accounts []core.LinkedAccount
}

func (s memoryAccountStore) ListForUser(_ context.Context, userID string, providerID string) ([]core.LinkedAccount, error) {
	out := []core.LinkedAccount{}
	for _, account := range s.accounts {
		if account.UserID == userID && account.ProviderID == providerID {
			out = append(out, account)
		}
	}
	return out, nil
}

type memoryRepoStore struct {
	upserts []core.RemoteRepository
}

func (s *memoryRepoStore) Upsert(_ context.Context, repo core.RemoteRepository) (core.RemoteRepository, error) {
	s.upserts = append(s.upserts, repo)
	return repo, nil
}

func (s *memoryRepoStore) ListForAccount(context.Context, string) ([]core.RemoteRepository, error) {
	return append([]core.RemoteRepository(nil), s.upserts...), nil
}

func vcsFixture(t *testing.T, driver Driver, accounts ...core.LinkedAccount) (*VCSProvider, *memoryRepoStore) {
	t.Helper()
	repos := &memoryRepoStore{}
	provider, err := NewVCSProvider(VCSConfig{
		ID:          "github",
		DisplayName: "GitHub",
		Driver:      driver,
		Accounts:    memoryAccountStore{accounts: accounts},
		Repos:       repos,
		Now:         func() time.Time { return time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return provider, repos
}

func TestVCSProvider_ForUserWrapsLinkedAccounts(t *testing.T) {
	provider, _ := vcsFixture(t, fakeDriver{},
		core.LinkedAccount{ID: "a_1", UserID: "u_1", ProviderID: "github", Username: "ada", TokenValid: true},
		core.LinkedAccount{ID: "a_2", UserID: "u_2", ProviderID: "github", Username: "bob", TokenValid: true},
	)

	accounts, err := provider.ForUser(context.Background(), core.User{ID: "u_1"})
	if err != nil {
		t.Fatalf("for user: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID() != "a_1" || accounts[0].Username() != "ada" {
		t.Fatalf("unexpected accounts %v", accounts)
	}
}

func TestVCSProvider_AccountSyncUpsertsRepositories(t *testing.T) {
	driver := fakeDriver{repos: []core.RemoteRepository{
		{RemoteID: "1", Name: "docs", FullName: "acme/docs"},
		{RemoteID: "2", Name: "api", FullName: "acme/api"},
	}}
	provider, repos := vcsFixture(t, driver,
		core.LinkedAccount{ID: "a_1", UserID: "u_1", ProviderID: "github", TokenValid: true},
	)

	accounts, err := provider.ForUser(context.Background(), core.User{ID: "u_1"})
	if err != nil {
		t.Fatalf("for user: %v", err)
	}
	if err := accounts[0].Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(repos.upserts) != 2 {
		t.Fatalf("expected 2 upserts, got %d", len(repos.upserts))
	}
	first := repos.upserts[0]
	if first.ProviderID != "github" || first.AccountID != "a_1" {
		t.Fatalf("sync must stamp provider and account, got %+v", first)
	}
	if first.UpdatedAt.IsZero() {
		t.Fatalf("sync must stamp the update time")
	}
}

func TestVCSProvider_AccountSyncInvalidTokenIsServiceError(t *testing.T) {
	provider, repos := vcsFixture(t, fakeDriver{},
		core.LinkedAccount{ID: "a_1", UserID: "u_1", ProviderID: "github", TokenValid: false},
	)

	accounts, err := provider.ForUser(context.Background(), core.User{ID: "u_1"})
	if err != nil {
		t.Fatalf("for user: %v", err)
	}
	syncErr := accounts[0].Sync(context.Background())
	if !core.IsSyncServiceError(syncErr) {
		t.Fatalf("expected sync service error, got %v", syncErr)
	}
	if len(repos.upserts) != 0 {
		t.Fatalf("invalid token must not touch the store")
	}
}

func TestVCSProvider_AccountSyncAPITokenRejection(t *testing.T) {
	driver := fakeDriver{listErr: fmt.Errorf("github: list repositories status 401: %w", ErrTokenInvalid)}
	provider, _ := vcsFixture(t, driver,
		core.LinkedAccount{ID: "a_1", UserID: "u_1", ProviderID: "github", TokenValid: true},
	)

	accounts, _ := provider.ForUser(context.Background(), core.User{ID: "u_1"})
	syncErr := accounts[0].Sync(context.Background())
	if !core.IsSyncServiceError(syncErr) {
		t.Fatalf("expected sync service error for rejected token, got %v", syncErr)
	}
}

func TestVCSProvider_AccountSyncUnexpectedErrorPassesThrough(t *testing.T) {
	driver := fakeDriver{listErr: fmt.Errorf("connection reset")}
	provider, _ := vcsFixture(t, driver,
		core.LinkedAccount{ID: "a_1", UserID: "u_1", ProviderID: "github", TokenValid: true},
	)

	accounts, _ := provider.ForUser(context.Background(), core.User{ID: "u_1"})
	syncErr := accounts[0].Sync(context.Background())
	if syncErr == nil || core.IsSyncServiceError(syncErr) {
		t.Fatalf("unexpected errors must pass through unwrapped, got %v", syncErr)
	}
}

func TestVCSProvider_SetupWebhookRequiresValidToken(t *testing.T) {
	provider, _ := vcsFixture(t, fakeDriver{hookResult: true},
		core.LinkedAccount{ID: "a_1", UserID: "u_1", ProviderID: "github", TokenValid: false},
	)

	accounts, _ := provider.ForUser(context.Background(), core.User{ID: "u_1"})
	ok, err := accounts[0].SetupWebhook(context.Background(), core.Project{}, nil)
	if ok || err == nil {
		t.Fatalf("invalid token must fail setup, got %v/%v", ok, err)
	}
}

func TestVCSProvider_IsProjectService(t *testing.T) {
	provider, _ := vcsFixture(t, fakeDriver{host: "github.com"})

	if !provider.IsProjectService(core.Project{RepoURL: "https://github.com/acme/docs"}) {
		t.Fatalf("expected github repo to match")
	}
	if provider.IsProjectService(core.Project{RepoURL: "https://gitlab.com/acme/docs"}) {
		t.Fatalf("gitlab repo must not match")
	}
}

func TestNewVCSProviderValidation(t *testing.T) {
	_, err := NewVCSProvider(VCSConfig{DisplayName: "GitHub", Driver: fakeDriver{}, Accounts: memoryAccountStore{}, Repos: &memoryRepoStore{}})
	if err == nil {
		t.Fatalf("expected id requirement")
	}
	_, err = NewVCSProvider(VCSConfig{ID: "github", Driver: fakeDriver{}, Accounts: memoryAccountStore{}, Repos: &memoryRepoStore{}})
	if err == nil {
		t.Fatalf("expected display name requirement")
	}
	_, err = NewVCSProvider(VCSConfig{ID: "github", DisplayName: "GitHub", Accounts: memoryAccountStore{}, Repos: &memoryRepoStore{}})
	if err == nil {
		t.Fatalf("expected driver requirement")
	}
}
