package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CatalogSearcher returns candidate products for a free-text query, cheapest first.
type CatalogSearcher interface {
	SearchCatalog(ctx context.Context, term string, limit int) ([]Product, error)
}

// TermExpander proposes alternative search phrasings for an ambiguous item name.
// It is optional; callers must tolerate errors and empty results.
type TermExpander interface {
	ExpandTerms(ctx context.Context, name string) ([]string, error)
}

// DeliveryLookup maps a supplier slug to its delivery cost tiers
type DeliveryLookup interface {
	LookupDelivery(supplierSlug string) DeliveryTiers
}
