package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Cache stores extracted job descriptions keyed by URL.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

func cacheKey(urlStr string) string {
	sum := sha256.Sum256([]byte(urlStr))
	return "jobdesc:" + hex.EncodeToString(sum[:])
}

// RedisCache keeps extracted postings in Redis so replicas share them.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached value, reporting false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores value with the given expiry.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is a process-local Cache used when Redis is not configured.
// It keeps the most recently used postings; each entry also honours the ttl
// given to Set when that is shorter than the cache-wide one.
type MemoryCache struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

// NewMemoryCache creates a cache holding at most maxEntries postings for up
// to ttl each.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, memoryEntry](maxEntries, nil, ttl),
		now: time.Now,
	}
}

// Get returns the cached value, reporting false on a miss or expiry.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	entry, ok := c.lru.Get(key)
	if !ok {
		return "", false, nil
	}
	if c.now().After(entry.expiresAt) {
		c.lru.Remove(key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set stores value, evicting the least recently used entry when full.
func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.lru.Add(key, memoryEntry{value: value, expiresAt: c.now().Add(ttl)})
	return nil
}
