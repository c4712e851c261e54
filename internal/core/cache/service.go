package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Service Redis 快取
type Service struct {
	client *redis.Client
	config *config.CacheConfig
	hits   int64
	misses int64
}

// NewService 創建 Redis 快取並測試連線
func NewService(cfg *config.CacheConfig, redisCfg *config.RedisConfig) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線", zap.String("addr", redisCfg.Addr))

	return NewServiceWithClient(cfg, client), nil
}

// NewServiceWithClient 使用既有的 Redis client
func NewServiceWithClient(cfg *config.CacheConfig, client *redis.Client) *Service {
	return &Service{client: client, config: cfg}
}

// Get 獲取緩存
func (s *Service) Get(ctx context.Context, namespace, key string) (string, error) {
	data, err := s.client.Get(ctx, generateKey(namespace, key)).Result()
	if err != nil {
		if err == redis.Nil {
			atomic.AddInt64(&s.misses, 1)
			common.LogCacheMiss(namespace, key)
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	atomic.AddInt64(&s.hits, 1)
	return data, nil
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, namespace, key, value string) error {
	if err := s.client.Set(ctx, generateKey(namespace, key), value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete 刪除緩存
func (s *Service) Delete(ctx context.Context, namespace, key string) error {
	if err := s.client.Del(ctx, generateKey(namespace, key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// Ping 檢查 Redis 連線（就緒檢查用）
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Stats 快取統計
func (s *Service) Stats() map[string]interface{} {
	return map[string]interface{}{
		"backend": "redis",
		"hits":    atomic.LoadInt64(&s.hits),
		"misses":  atomic.LoadInt64(&s.misses),
		"pool":    s.client.PoolStats().TotalConns,
	}
}

// Close 關閉連線
func (s *Service) Close() error {
	return s.client.Close()
}
