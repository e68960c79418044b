package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/elecmate/materials-compare/internal/domain"
)

const defaultCatalogCacheTTL = 6 * time.Hour

// CachedCatalog wraps a CatalogSearcher with a read-through cache.
// Cache failures never fail a search.
type CachedCatalog struct {
	next         domain.CatalogSearcher
	cache        domain.CacheRepository
	preprocessor *QueryPreprocessor
	ttl          time.Duration
	logger       zerolog.Logger
}

// NewCachedCatalog creates a caching decorator around next
func NewCachedCatalog(
	next domain.CatalogSearcher,
	cache domain.CacheRepository,
	ttl time.Duration,
	logger zerolog.Logger,
) *CachedCatalog {
	if ttl <= 0 {
		ttl = defaultCatalogCacheTTL
	}

	return &CachedCatalog{
		next:         next,
		cache:        cache,
		preprocessor: NewQueryPreprocessor(logger),
		ttl:          ttl,
		logger:       logger,
	}
}

// SearchCatalog serves from cache when possible, otherwise searches and caches
// non-empty results.
// Flow: check cache -> search provider -> cache -> return
func (c *CachedCatalog) SearchCatalog(ctx context.Context, term string, limit int) ([]domain.Product, error) {
	key := c.cacheKey(term, limit)

	if cached, err := c.getFromCache(ctx, key); err == nil {
		return cached, nil
	}

	products, err := c.next.SearchCatalog(ctx, term, limit)
	if err != nil {
		return nil, err
	}

	if len(products) > 0 {
		if err := c.setInCache(ctx, key, products); err != nil {
			loggerFrom(ctx, c.logger).Warn().Err(err).Str("key", key).Msg("failed to cache catalog results")
		}
	}

	return products, nil
}

// cacheKey creates a cache key from the case and whitespace folded term.
// Format: "catalog:{term}:{limit}"
func (c *CachedCatalog) cacheKey(term string, limit int) string {
	return fmt.Sprintf("catalog:%s:%d", c.preprocessor.Normalize(term), limit)
}

func (c *CachedCatalog) getFromCache(ctx context.Context, key string) ([]domain.Product, error) {
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		if derr := c.cache.Delete(ctx, key); derr != nil {
			loggerFrom(ctx, c.logger).Warn().Err(derr).Str("key", key).Msg("failed to evict corrupt cache entry")
		}
		return nil, domain.ErrCacheMiss
	}
	return products, nil
}

func (c *CachedCatalog) setInCache(ctx context.Context, key string, products []domain.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, key, raw, c.ttl)
}
