package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-repo-sync/core"
)

type VCSConfig struct {
	ID          string
	DisplayName string
	Driver      Driver
	Accounts    core.AccountStore
	Repos       core.RemoteRepositoryStore
	Now         func() time.Time
}

// VCSProvider implements core.Provider for one VCS host: it enumerates the
// user's linked accounts and wraps each into an Account capability whose
// Sync mirrors the remote repository listing into local records.
type VCSProvider struct {
	cfg VCSConfig
}

func NewVCSProvider(cfg VCSConfig) (*VCSProvider, error) {
	cfg.ID = strings.TrimSpace(strings.ToLower(cfg.ID))
	if cfg.ID == "" {
		return nil, fmt.Errorf("providers: provider id is required")
	}
	cfg.DisplayName = strings.TrimSpace(cfg.DisplayName)
	if cfg.DisplayName == "" {
		return nil, fmt.Errorf("providers: display name is required for provider %q", cfg.ID)
	}
	if cfg.Driver == nil {
		return nil, fmt.Errorf("providers: driver is required for provider %q", cfg.ID)
	}
	if cfg.Accounts == nil {
		return nil, fmt.Errorf("providers: account store is required for provider %q", cfg.ID)
	}
	if cfg.Repos == nil {
		return nil, fmt.Errorf("providers: remote repository store is required for provider %q", cfg.ID)
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time {
			return time.Now().UTC()
		}
	}
	return &VCSProvider{cfg: cfg}, nil
}

func (p *VCSProvider) ID() string {
	if p == nil {
		return ""
	}
	return p.cfg.ID
}

func (p *VCSProvider) DisplayName() string {
	if p == nil {
		return ""
	}
	return p.cfg.DisplayName
}

func (p *VCSProvider) ForUser(ctx context.Context, user core.User) ([]core.Account, error) {
	if p == nil {
		return nil, fmt.Errorf("providers: vcs provider is nil")
	}
	linked, err := p.cfg.Accounts.ListForUser(ctx, user.ID, p.cfg.ID)
	if err != nil {
		return nil, err
	}
	accounts := make([]core.Account, 0, len(linked))
	for _, record := range linked {
		accounts = append(accounts, &vcsAccount{provider: p, record: record})
	}
	return accounts, nil
}

func (p *VCSProvider) IsProjectService(project core.Project) bool {
	if p == nil {
		return false
	}
	return p.cfg.Driver.RecognizesRepoURL(project.RepoURL)
}

type vcsAccount struct {
	provider *VCSProvider
	record   core.LinkedAccount
}

func (a *vcsAccount) ID() string {
	if a == nil {
		return ""
	}
	return a.record.ID
}

func (a *vcsAccount) Username() string {
	if a == nil {
		return ""
	}
	return a.record.Username
}

func (a *vcsAccount) Sync(ctx context.Context) error {
	if a == nil || a.provider == nil {
		return fmt.Errorf("providers: account is not configured")
	}
	if !a.record.TokenValid {
		return core.NewSyncServiceError(a.provider.cfg.ID, ErrTokenInvalid)
	}
	repos, err := a.provider.cfg.Driver.ListRepositories(ctx, a.record)
	if err != nil {
		if errors.Is(err, ErrTokenInvalid) {
			return core.NewSyncServiceError(a.provider.cfg.ID, err)
		}
		return err
	}
	now := a.provider.cfg.Now().UTC()
	for _, repo := range repos {
		repo.ProviderID = a.provider.cfg.ID
		repo.AccountID = a.record.ID
		repo.UpdatedAt = now
		if _, upsertErr := a.provider.cfg.Repos.Upsert(ctx, repo); upsertErr != nil {
			return upsertErr
		}
	}
	return nil
}

func (a *vcsAccount) SetupWebhook(ctx context.Context, project core.Project, integration *core.Integration) (bool, error) {
	if a == nil || a.provider == nil {
		return false, fmt.Errorf("providers: account is not configured")
	}
	if !a.record.TokenValid {
		return false, ErrTokenInvalid
	}
	return a.provider.cfg.Driver.CreateWebhook(ctx, a.record, project, integration)
}

var _ core.Provider = (*VCSProvider)(nil)
