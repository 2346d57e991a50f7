package main

import (
	"context"
	"fmt"

	"github.com/jonathan/flower-resume/internal/assets"
	"github.com/jonathan/flower-resume/internal/config"
	"github.com/jonathan/flower-resume/internal/fetch"
	"github.com/jonathan/flower-resume/internal/llm"
	"github.com/jonathan/flower-resume/internal/server/ratelimit"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// memoryCacheEntries bounds the job description cache when Redis is not configured.
const memoryCacheEntries = 256

// newRedis connects to REDIS_URL and checks the connection.
func newRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// newLLMClient builds the client for the configured provider.
func newLLMClient(ctx context.Context, c config.LLMConfig) (llm.Client, error) {
	lc, err := llm.ConfigFor(c.Provider, c.ModelLite, c.ModelStandard, c.ModelAdvanced)
	if err != nil {
		return nil, err
	}
	lc.BaseURL = c.OpenAIBaseURL
	return llm.NewClient(ctx, lc, c.APIKey())
}

// newLimiter uses the Redis store when rdb is set and in-memory buckets otherwise.
func newLimiter(c config.RateLimitConfig, rdb *redis.Client, logger *zap.Logger) (*ratelimit.Limiter, error) {
	var store ratelimit.Store
	if rdb != nil && c.Enabled {
		rs, err := ratelimit.NewRedisStore(rdb, "")
		if err != nil {
			return nil, err
		}
		store = rs
	}
	return ratelimit.NewLimiter(ratelimit.FromConfig(c), store, logger), nil
}

// newFetcher caches extracted postings in Redis when available.
func newFetcher(rdb *redis.Client, logger *zap.Logger) *fetch.Fetcher {
	opts := fetch.DefaultOptions()
	var cache fetch.Cache
	if rdb != nil {
		cache = fetch.NewRedisCache(rdb)
	} else {
		cache = fetch.NewMemoryCache(memoryCacheEntries, opts.CacheTTL)
	}
	return fetch.New(opts, cache, logger)
}

// newAssets returns an upload service; without a bucket uploads are disabled.
func newAssets(ctx context.Context, c config.StorageConfig, logger *zap.Logger) (*assets.Service, error) {
	maxBytes := int64(c.MaxUploadMB) << 20
	if !c.Enabled() {
		logger.Warn("storage bucket not configured, image uploads disabled")
		return assets.NewService(nil, maxBytes, logger), nil
	}
	uploader, err := assets.NewS3Uploader(ctx, c)
	if err != nil {
		return nil, err
	}
	return assets.NewService(uploader, maxBytes, logger), nil
}
