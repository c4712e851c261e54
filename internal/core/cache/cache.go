package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

// 快取命名空間
const (
	NamespaceLatestMenu = "menu:latest"
	NamespaceFoodLookup = "fooddata:lookup"
)

// Store 快取介面，記憶體與 Redis 共用
type Store interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
	Stats() map[string]interface{}
	Close() error
}

// New 依設定建立快取；停用時回傳 nil
func New(cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}
	if cfg.Redis.Enabled {
		return NewService(&cfg.Cache, &cfg.Redis)
	}
	return NewManager(&cfg.Cache), nil
}

// GetJSON 讀取並解析 JSON 快取
func GetJSON(ctx context.Context, s Store, namespace, key string, out interface{}) error {
	if s == nil {
		return common.ErrCacheDisabled
	}
	raw, err := s.Get(ctx, namespace, key)
	if err != nil {
		return err
	}
	if err := common.ParseJSON(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal cache: %w", err)
	}
	common.LogCacheHit(namespace, key)
	return nil
}

// SetJSON 以 JSON 寫入快取，store 為 nil 時不做任何事
func SetJSON(ctx context.Context, s Store, namespace, key string, value interface{}) error {
	if s == nil {
		return nil
	}
	raw, err := common.ToJSON(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.Set(ctx, namespace, key, raw)
}

// Invalidate 刪除快取，store 為 nil 時不做任何事
func Invalidate(ctx context.Context, s Store, namespace, key string) error {
	if s == nil {
		return nil
	}
	return s.Delete(ctx, namespace, key)
}

// IsMiss 是否為未命中或停用
func IsMiss(err error) bool {
	return errors.Is(err, common.ErrCacheMiss) || errors.Is(err, common.ErrCacheDisabled)
}

// generateKey 生成緩存鍵
func generateKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, hashString(key))
}

// hashString 計算字符串的 SHA-256 哈希值
func hashString(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}
