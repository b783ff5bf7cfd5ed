package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repo-sync/core"
)

const projectCacheKeyPrefix = "go-repo-sync::project::v1"

// CachedProjectStore front-loads project reads with a cache. Webhook
// attachment reads the same project once per fallback attempt, so the cache
// saves a query per linked account.
type CachedProjectStore struct {
	base  core.ProjectStore
	cache repositorycache.CacheService
}

func NewCachedProjectStore(base core.ProjectStore, cacheService repositorycache.CacheService) (*CachedProjectStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base project store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: project cache service is required")
	}
	return &CachedProjectStore{base: base, cache: cacheService}, nil
}

// ProjectCacheKey returns the deterministic cache key contract for project
// reads: go-repo-sync::project::v1::<project_id> with the id URL-path escaped.
func ProjectCacheKey(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", fmt.Errorf("sqlstore: project id is required")
	}
	return projectCacheKeyPrefix + "::" + url.PathEscape(trimmed), nil
}

func (s *CachedProjectStore) Get(ctx context.Context, id string) (core.Project, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Project{}, fmt.Errorf("sqlstore: cached project store is not configured")
	}
	cacheKey, err := ProjectCacheKey(id)
	if err != nil {
		return core.Project{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.Project, error) {
		return s.base.Get(ctx, id)
	})
}

func (s *CachedProjectStore) MarkValidWebhook(ctx context.Context, id string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached project store is not configured")
	}
	if err := s.base.MarkValidWebhook(ctx, id); err != nil {
		return err
	}
	cacheKey, err := ProjectCacheKey(id)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

var _ core.ProjectStore = (*CachedProjectStore)(nil)
