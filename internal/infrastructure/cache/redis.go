package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/elecmate/materials-compare/internal/domain"
)

const keyNamespace = "matcomp"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisCache is a CacheRepository shared between service instances.
// Connection problems surface as domain.ErrCacheUnavailable.
type RedisCache struct {
	store cmdable
	raw   *redis.Client
}

// NewRedisCache connects to the server at redisURL and verifies connectivity
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("redis url is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisCache{store: raw, raw: raw}, nil
}

// Get returns the payload stored at key
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.store.Get(ctx, c.buildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return value, nil
}

// Set stores a payload with a TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.store.Set(ctx, c.buildKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// Delete removes key
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.store.Del(ctx, c.buildKey(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// Ping verifies the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *RedisCache) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func (c *RedisCache) buildKey(key string) string {
	return keyNamespace + ":" + strings.TrimSpace(key)
}
