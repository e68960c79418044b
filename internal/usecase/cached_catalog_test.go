package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elecmate/materials-compare/internal/domain"
)

func TestCachedCatalog_CacheKey(t *testing.T) {
	c := NewCachedCatalog(newFakeCatalog(), newFakeCache(), 0, zerolog.Nop())

	assert.Equal(t, "catalog:2.5 mm t&e:30", c.cacheKey("2.5  mm T&E", 30))
	assert.Equal(t, c.cacheKey("Twin and Earth", 15), c.cacheKey("  twin AND earth ", 15))
	assert.NotEqual(t, c.cacheKey("Type A RCD", 30), c.cacheKey("Type RCD", 30))
	assert.NotEqual(t, c.cacheKey("T&E cable", 30), c.cacheKey("T E cable", 30))
	assert.NotEqual(t, c.cacheKey("mcb", 15), c.cacheKey("mcb", 30))
	assert.Equal(t, defaultCatalogCacheTTL, c.ttl)
}

func TestCachedCatalog_SearchCatalog(t *testing.T) {
	cached := []domain.Product{product("c1", "screwfix", "4.99")}
	fresh := []domain.Product{product("f1", "toolstation", "5.49")}

	tests := []struct {
		name        string
		setupCache  func(*fakeCache)
		catalog     *fakeCatalog
		want        []domain.Product
		wantErr     error
		wantCalls   int
		wantCached  bool
		wantSetCall bool
		wantEvicted bool
	}{
		{
			name: "cache hit skips provider",
			setupCache: func(c *fakeCache) {
				raw, _ := json.Marshal(cached)
				c.data["catalog:mcb:30"] = raw
			},
			catalog:   newFakeCatalog().with("mcb", fresh...),
			want:      cached,
			wantCalls: 0,
		},
		{
			name:        "cache miss fetches and stores",
			setupCache:  func(c *fakeCache) {},
			catalog:     newFakeCatalog().with("mcb", fresh...),
			want:        fresh,
			wantCalls:   1,
			wantCached:  true,
			wantSetCall: true,
		},
		{
			name:       "empty results are not cached",
			setupCache: func(c *fakeCache) {},
			catalog:    newFakeCatalog(),
			want:       nil,
			wantCalls:  1,
		},
		{
			name:       "cache unavailable falls through",
			setupCache: func(c *fakeCache) { c.getError = domain.ErrCacheUnavailable },
			catalog:    newFakeCatalog().with("mcb", fresh...),
			want:       fresh,
			wantCalls:  1,
			// Set still succeeds on the fake, so the value lands.
			wantCached:  true,
			wantSetCall: true,
		},
		{
			name:        "set failure is not fatal",
			setupCache:  func(c *fakeCache) { c.setError = errors.New("redis down") },
			catalog:     newFakeCatalog().with("mcb", fresh...),
			want:        fresh,
			wantCalls:   1,
			wantSetCall: true,
		},
		{
			name: "corrupt entry is evicted and refetched",
			setupCache: func(c *fakeCache) {
				c.data["catalog:mcb:30"] = []byte("{not json")
			},
			catalog:     newFakeCatalog().with("mcb", fresh...),
			want:        fresh,
			wantCalls:   1,
			wantCached:  true,
			wantSetCall: true,
			wantEvicted: true,
		},
		{
			name:       "provider error is returned uncached",
			setupCache: func(c *fakeCache) {},
			catalog:    newFakeCatalog().failing("mcb", domain.ErrCatalogFailure),
			wantErr:    domain.ErrCatalogFailure,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newFakeCache()
			tt.setupCache(cache)
			c := NewCachedCatalog(tt.catalog, cache, time.Hour, zerolog.Nop())

			got, err := c.SearchCatalog(context.Background(), "mcb", 30)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, cache.setCalled)
			} else {
				require.NoError(t, err)
				assert.Len(t, got, len(tt.want))
				for i := range tt.want {
					assert.Equal(t, tt.want[i].ProductID, got[i].ProductID)
					assert.True(t, tt.want[i].Price.Equal(got[i].Price))
				}
			}

			assert.Equal(t, tt.wantCalls, tt.catalog.callCount())
			if tt.wantEvicted {
				assert.Equal(t, []string{"catalog:mcb:30"}, cache.deleted)
			} else {
				assert.Empty(t, cache.deleted)
			}
			assert.Equal(t, tt.wantSetCall, cache.setCalled)
			if tt.wantCached {
				_, ok := cache.data["catalog:mcb:30"]
				assert.True(t, ok)
			}
		})
	}
}

func TestCachedCatalog_SecondSearchIsServedFromCache(t *testing.T) {
	catalog := newFakeCatalog().with("rcbo 32a", product("r1", "screwfix", "21.99"))
	c := NewCachedCatalog(catalog, newFakeCache(), time.Hour, zerolog.Nop())

	first, err := c.SearchCatalog(context.Background(), "rcbo 32a", 15)
	require.NoError(t, err)
	second, err := c.SearchCatalog(context.Background(), "RCBO 32A", 15)
	require.NoError(t, err)

	assert.Equal(t, 1, catalog.callCount())
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ProductID, second[0].ProductID)
	assert.True(t, first[0].Price.Equal(second[0].Price))
}

func TestCachedCatalog_DistinctTermsEachReachProvider(t *testing.T) {
	catalog := newFakeCatalog().
		with("Type A RCD", product("rcd-a", "screwfix", "24.99")).
		with("Type RCD", product("rcd-ac", "toolstation", "18.50"))
	c := NewCachedCatalog(catalog, newFakeCache(), time.Hour, zerolog.Nop())

	first, err := c.SearchCatalog(context.Background(), "Type A RCD", 30)
	require.NoError(t, err)
	second, err := c.SearchCatalog(context.Background(), "Type RCD", 30)
	require.NoError(t, err)

	assert.Equal(t, 2, catalog.callCount())
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "rcd-a", first[0].ProductID)
	assert.Equal(t, "rcd-ac", second[0].ProductID)
}
