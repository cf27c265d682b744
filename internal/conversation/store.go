package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/BaSui01/medidash/internal/cache"
)

// ErrContextNotFound 上下文不存在或已过期
var ErrContextNotFound = errors.New("conversation context not found")

// ContextStore 搜索上下文存储
type ContextStore interface {
	Save(ctx context.Context, conversationID string, sc SearchContext) error
	Load(ctx context.Context, conversationID string) (*SearchContext, error)
}

// RedisContextStore 基于 cache.Manager 的实现
type RedisContextStore struct {
	cache *cache.Manager
	ttl   time.Duration
}

// NewRedisContextStore 创建存储，ttl 为 0 时使用缓存默认 TTL
func NewRedisContextStore(c *cache.Manager, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{cache: c, ttl: ttl}
}

func contextKey(conversationID string) string {
	return "conversation:" + conversationID + ":context"
}

// Save 写入上下文
func (s *RedisContextStore) Save(ctx context.Context, conversationID string, sc SearchContext) error {
	return s.cache.SetJSON(ctx, contextKey(conversationID), sc, s.ttl)
}

// Load 读取上下文
func (s *RedisContextStore) Load(ctx context.Context, conversationID string) (*SearchContext, error) {
	var sc SearchContext
	if err := s.cache.GetJSON(ctx, contextKey(conversationID), &sc); err != nil {
		if cache.IsCacheMiss(err) {
			return nil, ErrContextNotFound
		}
		return nil, err
	}
	return &sc, nil
}
