// Package ratelimit provides per-client, per-endpoint rate limiting with an
// in-memory token bucket store or the same bucket kept in Redis.
package ratelimit

import (
	"context"
	"time"

	"github.com/jonathan/flower-resume/internal/logging"
	"go.uber.org/zap"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns the limits used when no configuration is given.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// Store counts requests for a key under one endpoint configuration.
type Store interface {
	Take(ctx context.Context, key string, ep EndpointConfig) (Info, error)
	Close() error
}

// Limiter applies the whitelist, blacklist and endpoint limits and delegates
// counting to a Store.
type Limiter struct {
	config *Config
	store  Store
	logger *zap.Logger
}

// NewLimiter creates a limiter. A nil store selects the in-memory token
// bucket store.
func NewLimiter(config *Config, store Store, logger *zap.Logger) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	logger = logging.OrNop(logger)
	if store == nil {
		cleanup := time.Duration(0)
		if config.Enabled {
			cleanup = config.CleanupInterval
		}
		store = NewMemoryStore(cleanup)
	}
	return &Limiter{config: config, store: store, logger: logger}
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
// Store failures are logged and the request is allowed.
func (l *Limiter) Allow(ctx context.Context, clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if endpointConfig == nil {
		// Use global default, counted per path
		endpointConfig = &EndpointConfig{
			Path:   endpoint,
			Method: method,
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}

	// Unlimited endpoint (e.g., health check)
	if endpointConfig.Limit <= 0 || endpointConfig.Window <= 0 {
		return true, Info{Allowed: true}
	}

	// Endpoints sharing a configuration share one budget per client
	key := clientID + ":" + endpointConfig.Method + ":" + endpointConfig.Path
	info, err := l.store.Take(ctx, key, *endpointConfig)
	if err != nil {
		l.logger.Warn("rate limit store unavailable, allowing request", zap.String("key", key), zap.Error(err))
		return true, Info{Allowed: true}
	}
	return info.Allowed, info
}

// Stop releases the store.
func (l *Limiter) Stop() {
	if err := l.store.Close(); err != nil {
		l.logger.Warn("failed to close rate limit store", zap.Error(err))
	}
}
