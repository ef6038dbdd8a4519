package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-zaaknotify/core"
)

const caseTypeConfigCacheKeyPrefix = "go-zaaknotify::case_type_config::v1"

// CachedCaseTypeConfigStore fronts the config store with a read-through
// cache. Config rows change rarely but every status webhook in override
// mode reads them, so misses are cached alongside hits via the sentinel
// flag in the cached value.
type CachedCaseTypeConfigStore struct {
	base  *CaseTypeConfigStore
	cache repositorycache.CacheService
}

type cachedCaseTypeConfig struct {
	Config core.CaseTypeConfig
	Found  bool
}

type cachedStatusTypeOverride struct {
	Override core.StatusTypeOverride
	Found    bool
}

func NewCachedCaseTypeConfigStore(
	base *CaseTypeConfigStore,
	cacheService repositorycache.CacheService,
) (*CachedCaseTypeConfigStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base case type config store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: case type config cache service is required")
	}
	return &CachedCaseTypeConfigStore{base: base, cache: cacheService}, nil
}

// CaseTypeConfigCacheKey returns the deterministic cache key contract for
// config reads: go-zaaknotify::case_type_config::v1::<catalog>::<identification>
// with each segment URL-path escaped.
func CaseTypeConfigCacheKey(catalog, identification string) string {
	segments := []string{
		url.PathEscape(strings.TrimSpace(catalog)),
		url.PathEscape(strings.TrimSpace(identification)),
	}
	return strings.Join(append([]string{caseTypeConfigCacheKeyPrefix}, segments...), "::")
}

func statusTypeOverrideCacheKey(configID, statusTypeURL string) string {
	segments := []string{
		"override",
		url.PathEscape(strings.TrimSpace(configID)),
		url.PathEscape(strings.TrimSpace(statusTypeURL)),
	}
	return strings.Join(append([]string{caseTypeConfigCacheKeyPrefix}, segments...), "::")
}

func (s *CachedCaseTypeConfigStore) Get(ctx context.Context, catalog, identification string) (core.CaseTypeConfig, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.CaseTypeConfig{}, fmt.Errorf("sqlstore: cached case type config store is not configured")
	}
	cacheKey := CaseTypeConfigCacheKey(catalog, identification)

	cached, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedCaseTypeConfig, error) {
		config, fetchErr := s.base.Get(ctx, catalog, identification)
		if fetchErr != nil {
			if isNotFound(fetchErr) {
				return cachedCaseTypeConfig{}, nil
			}
			return cachedCaseTypeConfig{}, fetchErr
		}
		return cachedCaseTypeConfig{Config: config, Found: true}, nil
	})
	if err != nil {
		return core.CaseTypeConfig{}, err
	}
	if !cached.Found {
		return core.CaseTypeConfig{}, fmt.Errorf(
			"sqlstore: case type config for %q/%q: %w", catalog, identification, core.ErrNotFound,
		)
	}
	return cached.Config, nil
}

func (s *CachedCaseTypeConfigStore) GetStatusTypeOverride(ctx context.Context, configID, statusTypeURL string) (core.StatusTypeOverride, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.StatusTypeOverride{}, fmt.Errorf("sqlstore: cached case type config store is not configured")
	}
	cacheKey := statusTypeOverrideCacheKey(configID, statusTypeURL)

	cached, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedStatusTypeOverride, error) {
		override, fetchErr := s.base.GetStatusTypeOverride(ctx, configID, statusTypeURL)
		if fetchErr != nil {
			if isNotFound(fetchErr) {
				return cachedStatusTypeOverride{}, nil
			}
			return cachedStatusTypeOverride{}, fetchErr
		}
		return cachedStatusTypeOverride{Override: override, Found: true}, nil
	})
	if err != nil {
		return core.StatusTypeOverride{}, err
	}
	if !cached.Found {
		return core.StatusTypeOverride{}, fmt.Errorf(
			"sqlstore: status type override for %q: %w", statusTypeURL, core.ErrNotFound,
		)
	}
	return cached.Override, nil
}

func (s *CachedCaseTypeConfigStore) Upsert(ctx context.Context, in core.CaseTypeConfig) (core.CaseTypeConfig, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.CaseTypeConfig{}, fmt.Errorf("sqlstore: cached case type config store is not configured")
	}
	out, err := s.base.Upsert(ctx, in)
	if err != nil {
		return core.CaseTypeConfig{}, err
	}
	if err := s.cache.Delete(ctx, CaseTypeConfigCacheKey(out.Catalog, out.Identification)); err != nil {
		return core.CaseTypeConfig{}, err
	}
	// A config previously looked up without a catalog may be cached under
	// the catalog-absent key as well.
	if out.Catalog != "" {
		if err := s.cache.Delete(ctx, CaseTypeConfigCacheKey("", out.Identification)); err != nil {
			return core.CaseTypeConfig{}, err
		}
	}
	return out, nil
}

func (s *CachedCaseTypeConfigStore) UpsertStatusTypeOverride(ctx context.Context, in core.StatusTypeOverride) (core.StatusTypeOverride, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.StatusTypeOverride{}, fmt.Errorf("sqlstore: cached case type config store is not configured")
	}
	out, err := s.base.UpsertStatusTypeOverride(ctx, in)
	if err != nil {
		return core.StatusTypeOverride{}, err
	}
	if err := s.cache.Delete(ctx, statusTypeOverrideCacheKey(out.CaseTypeConfigID, out.StatusTypeURL)); err != nil {
		return core.StatusTypeOverride{}, err
	}
	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}

var _ core.CaseTypeConfigStore = (*CachedCaseTypeConfigStore)(nil)
