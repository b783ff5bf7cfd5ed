package reposync

import (
	"github.com/goliatone/go-repo-sync/core"
	"github.com/goliatone/go-repo-sync/providers/bitbucket"
	"github.com/goliatone/go-repo-sync/providers/github"
	"github.com/goliatone/go-repo-sync/providers/gitlab"
	"github.com/goliatone/go-repo-sync/ratelimit"
)

// NewRateLimitPolicy returns an in-memory adaptive limiter suitable for
// sharing across the provider configs of one process.
func NewRateLimitPolicy() *ratelimit.AdaptivePolicy {
	return ratelimit.NewAdaptivePolicy(ratelimit.NewMemoryStateStore())
}

func GitHubProvider(cfg github.Config) (core.Provider, error) {
	return github.New(cfg)
}

func GitLabProvider(cfg gitlab.Config) (core.Provider, error) {
	return gitlab.New(cfg)
}

func BitbucketProvider(cfg bitbucket.Config) (core.Provider, error) {
	return bitbucket.New(cfg)
}
