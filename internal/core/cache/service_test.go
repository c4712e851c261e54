package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Unreachable(t *testing.T) {
	cacheCfg := &config.CacheConfig{Enabled: true, TTL: time.Minute}

	_, err := NewService(cacheCfg, &config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	s := NewServiceWithClient(cacheCfg, client)
	defer s.Close()

	_, err = s.Get(context.Background(), NamespaceLatestMenu, "1:")
	require.Error(t, err)
	assert.False(t, IsMiss(err))
	assert.Equal(t, "redis", s.Stats()["backend"])
}

// 需要 REDIS_ADDR 才會執行
func TestService_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	s, err := NewService(&config.CacheConfig{Enabled: true, TTL: time.Minute}, &config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, NamespaceFoodLookup, "avena", `[{"nombre":"Avena"}]`))
	got, err := s.Get(ctx, NamespaceFoodLookup, "avena")
	require.NoError(t, err)
	assert.Equal(t, `[{"nombre":"Avena"}]`, got)

	require.NoError(t, s.Delete(ctx, NamespaceFoodLookup, "avena"))
	_, err = s.Get(ctx, NamespaceFoodLookup, "avena")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.NoError(t, s.Ping(ctx))
}
