// Package options serves the per-tenant dropdown vocabularies used to
// normalise categorical case fields, behind a short-lived cache.
package options

import (
	"context"
	"time"

	"github.com/case-import-api/internal/models"
	"github.com/case-import-api/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultTTL is how long a category stays cached.
const DefaultTTL = 5 * time.Minute

// Lookup returns the configured options of a category.
type Lookup interface {
	Options(ctx context.Context, tenantID, category string) ([]models.DropdownOption, error)
}

// Cache stores option lists by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]models.DropdownOption, bool, error)
	Set(ctx context.Context, key string, opts []models.DropdownOption, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Invalidator is a Lookup that can drop what it cached for a category.
type Invalidator interface {
	Invalidate(ctx context.Context, tenantID, category string) error
}

// Key builds the cache key of a tenant category.
func Key(tenantID, category string) string {
	return "options:" + tenantID + ":" + category
}

// CachedLookup reads through the cache to the repository.
type CachedLookup struct {
	repo  repository.OptionRepository
	cache Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedLookup creates a CachedLookup. A non-positive ttl selects DefaultTTL.
func NewCachedLookup(repo repository.OptionRepository, cache Cache, ttl time.Duration, log zerolog.Logger) *CachedLookup {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedLookup{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log.With().Str("component", "options").Logger(),
	}
}

// Options implements Lookup. Cache failures are logged and bypassed.
func (l *CachedLookup) Options(ctx context.Context, tenantID, category string) ([]models.DropdownOption, error) {
	key := Key(tenantID, category)

	opts, ok, err := l.cache.Get(ctx, key)
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("Options cache read failed")
	}
	if ok {
		return opts, nil
	}

	opts, err = l.repo.ListByCategory(ctx, tenantID, category)
	if err != nil {
		return nil, errors.Wrapf(err, "list options for %s", category)
	}

	if err := l.cache.Set(ctx, key, opts, l.ttl); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("Options cache write failed")
	}
	return opts, nil
}

var _ Invalidator = (*CachedLookup)(nil)

// Invalidate drops a cached category.
func (l *CachedLookup) Invalidate(ctx context.Context, tenantID, category string) error {
	return l.cache.Delete(ctx, Key(tenantID, category))
}

type uncached struct {
	repo repository.OptionRepository
}

// Uncached adapts the repository to Lookup with no cache in front.
func Uncached(repo repository.OptionRepository) Lookup {
	return uncached{repo: repo}
}

func (u uncached) Options(ctx context.Context, tenantID, category string) ([]models.DropdownOption, error) {
	opts, err := u.repo.ListByCategory(ctx, tenantID, category)
	if err != nil {
		return nil, errors.Wrapf(err, "list options for %s", category)
	}
	return opts, nil
}
