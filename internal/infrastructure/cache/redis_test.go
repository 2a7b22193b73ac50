package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

// newTestRedis connects to MKPRICE_TEST_REDIS_URL, skipping when it is unset
func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()

	url := os.Getenv("MKPRICE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MKPRICE_TEST_REDIS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cache, err := NewRedisCache(ctx, RedisConfig{
		URL:       url,
		KeyPrefix: "mkprice-test:" + uuid.NewString() + ":",
	})
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	return cache
}

func TestRedisCache_RoundTrip(t *testing.T) {
	cache := newTestRedis(t)
	ctx := context.Background()

	_, err := cache.Get(ctx, "catalog:groups")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "catalog:groups", []byte(`[]`), time.Minute))

	got, err := cache.Get(ctx, "catalog:groups")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)

	exists, err := cache.Exists(ctx, "catalog:groups")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cache.Delete(ctx, "catalog:groups"))

	exists, err = cache.Exists(ctx, "catalog:groups")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisConfig{URL: "not-a-redis-url"})
	assert.Error(t, err)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, RedisConfig{
		URL:         "redis://127.0.0.1:1/0",
		DialTimeout: 200 * time.Millisecond,
	})
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
}

func TestWrapRedis(t *testing.T) {
	assert.NoError(t, wrapRedis(nil))
	assert.ErrorIs(t, wrapRedis(redis.Nil), domain.ErrCacheMiss)
	assert.ErrorIs(t, wrapRedis(context.DeadlineExceeded), domain.ErrCacheUnavailable)
}
