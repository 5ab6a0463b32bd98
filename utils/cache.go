package utils

import (
	"SwipeVault/internal/repo"
	"SwipeVault/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

var errCacheUnavailable = errors.New("cache unavailable")

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis cache client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

// Get reads a cached value.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return errCacheUnavailable
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Set writes a cached value.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if c.client == nil {
		return errCacheUnavailable
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, string(data), expiration).Err()
}

// Delete removes a cache entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if c.client == nil {
		return errCacheUnavailable
	}
	return c.client.Del(ctx, key).Err()
}

// DeleteByPattern deletes cache entries by pattern.
func (c *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return errCacheUnavailable
	}
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

// Exists checks whether a cache key exists.
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, errCacheUnavailable
	}
	count, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type CacheManager struct {
	cache Cache
}

var globalCacheManager *CacheManager
var cacheManagerOnce sync.Once

// InitCacheManager initializes the cache manager.
func InitCacheManager() {
	cacheManagerOnce.Do(func() {
		globalCacheManager = &CacheManager{
			cache: NewRedisCache(repo.Redis),
		}
	})
}

// GetCacheManager returns the cache manager.
func GetCacheManager() *CacheManager {
	if globalCacheManager == nil {
		InitCacheManager()
	}
	return globalCacheManager
}

// BuildCacheKey builds a cache key.
func BuildCacheKey(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key += fmt.Sprintf(":%v", param)
	}
	return key
}

const (
	CacheKeySwipeURL        = "swipe:url"
	CacheKeyResearchFileURL = "research:file:url"
	CacheKeyResearchList    = "research:list"
)

// GetSignedURLFromCache reads a cached signed read URL.
func GetSignedURLFromCache(ctx context.Context, prefix, id string) (string, bool) {
	manager := GetCacheManager()
	key := BuildCacheKey(prefix, id)

	var url string
	if err := manager.cache.Get(ctx, key, &url); err != nil {
		return "", false
	}
	if url == "" {
		return "", false
	}
	return url, true
}

// SetSignedURLToCache caches a signed read URL. The entry must expire before
// the URL itself does, so callers pass a TTL below the signing expiry.
func SetSignedURLToCache(ctx context.Context, prefix, id, url string, expiration time.Duration) error {
	manager := GetCacheManager()
	key := BuildCacheKey(prefix, id)
	return manager.cache.Set(ctx, key, url, expiration)
}

// InvalidateSignedURLCache clears a cached signed read URL.
func InvalidateSignedURLCache(ctx context.Context, prefix, id string) error {
	manager := GetCacheManager()
	key := BuildCacheKey(prefix, id)
	return manager.cache.Delete(ctx, key)
}

type ResearchListCache struct {
	Items []model.ResearchItem `json:"items"`
	Total int64                `json:"total"`
}

// GetResearchListFromCache reads a cached research item list.
func GetResearchListFromCache(ctx context.Context, userId uint64, page, pageSize int) (*ResearchListCache, bool) {
	manager := GetCacheManager()
	key := BuildCacheKey(CacheKeyResearchList, userId, page, pageSize)

	var result ResearchListCache
	if err := manager.cache.Get(ctx, key, &result); err != nil {
		return nil, false
	}
	return &result, true
}

// SetResearchListToCache writes a cached research item list.
func SetResearchListToCache(
	ctx context.Context,
	userId uint64,
	page int,
	pageSize int,
	data *ResearchListCache,
	expiration time.Duration,
) error {
	manager := GetCacheManager()
	key := BuildCacheKey(CacheKeyResearchList, userId, page, pageSize)
	return manager.cache.Set(ctx, key, data, expiration)
}

// InvalidateResearchListCache clears cached research item lists for a user.
func InvalidateResearchListCache(ctx context.Context, userId uint64) error {
	manager := GetCacheManager()
	keyPattern := BuildCacheKey(CacheKeyResearchList, userId) + ":*"
	cache, ok := manager.cache.(*RedisCache)
	if !ok {
		return manager.cache.Delete(ctx, keyPattern)
	}
	return cache.DeleteByPattern(ctx, keyPattern)
}
