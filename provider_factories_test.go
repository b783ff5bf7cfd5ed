package reposync

import (
	"testing"

	"github.com/goliatone/go-repo-sync/providers/bitbucket"
	"github.com/goliatone/go-repo-sync/providers/github"
	"github.com/goliatone/go-repo-sync/providers/gitlab"
)

func TestBuiltInProviderFactories(t *testing.T) {
	accounts := &rootAccountStore{}
	repos := &rootRemoteRepositoryStore{}
	rateLimits := NewRateLimitPolicy()
	if rateLimits == nil {
		t.Fatalf("expected rate limit policy")
	}

	cases := []struct {
		name string
		id   string
		fn   func() (string, error)
	}{
		{
			name: "github",
			id:   github.ProviderID,
			fn: func() (string, error) {
				provider, err := GitHubProvider(github.Config{
					WebhookEndpoint: "https://app.example.com/api/webhook/github",
					Accounts:        accounts,
					Repos:           repos,
					RateLimits:      rateLimits,
				})
				if err != nil {
					return "", err
				}
				return provider.ID(), nil
			},
		},
		{
			name: "gitlab",
			id:   gitlab.ProviderID,
			fn: func() (string, error) {
				provider, err := GitLabProvider(gitlab.Config{
					WebhookEndpoint: "https://app.example.com/api/webhook/gitlab",
					Accounts:        accounts,
					Repos:           repos,
					RateLimits:      rateLimits,
				})
				if err != nil {
					return "", err
				}
				return provider.ID(), nil
			},
		},
		{
			name: "bitbucket",
			id:   bitbucket.ProviderID,
			fn: func() (string, error) {
				provider, err := BitbucketProvider(bitbucket.Config{
					WebhookEndpoint: "https://app.example.com/api/webhook/bitbucket",
					Accounts:        accounts,
					Repos:           repos,
					RateLimits:      rateLimits,
				})
				if err != nil {
					return "", err
				}
				return provider.ID(), nil
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := tc.fn()
			if err != nil {
				t.Fatalf("build provider: %v", err)
			}
			if id != tc.id {
				t.Fatalf("expected provider id %q, got %q", tc.id, id)
			}
		})
	}
}

func TestBuiltInProviderFactories_RequireWebhookEndpoint(t *testing.T) {
	if _, err := GitHubProvider(github.Config{
		Accounts: &rootAccountStore{},
		Repos:    &rootRemoteRepositoryStore{},
	}); err == nil {
		t.Fatalf("expected missing webhook endpoint to fail")
	}
}
