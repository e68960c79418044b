package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elecmate/materials-compare/internal/domain"
)

type mockCmdable struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	failErr error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	if m.failErr != nil {
		return redis.NewStatusResult("", m.failErr)
	}
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if m.failErr != nil {
		return redis.NewStatusResult("", m.failErr)
	}
	m.data[key] = value.([]byte)
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.failErr != nil {
		return redis.NewStringResult("", m.failErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if m.failErr != nil {
		return redis.NewIntResult(0, m.failErr)
	}
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisCache_Lifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	cache := &RedisCache{store: mock}

	require.NoError(t, cache.Set(ctx, "catalog:mcb:30", []byte(`[{"product_id":"p1"}]`), time.Hour))
	assert.Equal(t, time.Hour, mock.ttls["matcomp:catalog:mcb:30"], "keys are namespaced")

	got, err := cache.Get(ctx, "catalog:mcb:30")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"product_id":"p1"}]`, string(got))

	require.NoError(t, cache.Delete(ctx, "catalog:mcb:30"))

	_, err = cache.Get(ctx, "catalog:mcb:30")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestRedisCache_ConnectionErrors(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	mock.failErr = errors.New("dial tcp: connection refused")
	cache := &RedisCache{store: mock}

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
	assert.NotErrorIs(t, err, domain.ErrCacheMiss)

	assert.ErrorIs(t, cache.Set(ctx, "k", []byte("v"), time.Minute), domain.ErrCacheUnavailable)
	assert.ErrorIs(t, cache.Delete(ctx, "k"), domain.ErrCacheUnavailable)

	assert.Error(t, cache.Ping(ctx))
}

func TestRedisCache_CloseWithoutClient(t *testing.T) {
	cache := &RedisCache{store: newMockCmdable()}
	assert.NoError(t, cache.Close())
}

func TestNewRedisCache_RejectsBadURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "empty", url: ""},
		{name: "wrong scheme", url: "http://localhost:6379"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, err := NewRedisCache(context.Background(), tt.url)
			assert.Nil(t, cache)
			assert.Error(t, err)
		})
	}
}
