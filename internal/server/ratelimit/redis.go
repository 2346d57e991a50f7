package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript is the Redis form of TokenBucket: a hash holding the
// token count and the last refill time in milliseconds. Tokens are returned
// as a string because Lua numbers are truncated to integers on the way out.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local rate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'ts')
	local tokens = tonumber(state[1])
	local ts = tonumber(state[2])
	if tokens == nil or ts == nil then
		tokens = capacity
		ts = now
	end
	if now > ts then
		tokens = math.min(capacity, tokens + (now - ts) * rate)
		ts = now
	end

	local allowed = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'tokens', tostring(tokens), 'ts', tostring(ts))
	redis.call('PEXPIRE', key, ttl)
	return {allowed, tostring(tokens)}
`)

// RedisStore keeps one token bucket per key in Redis so limits hold across
// replicas. Buckets behave like MemoryStore's, burst included.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a store using client. Keys are namespaced by prefix.
func NewRedisStore(client *redis.Client, prefix string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}, nil
}

// Take consumes a token from the bucket for key.
func (s *RedisStore) Take(ctx context.Context, key string, ep EndpointConfig) (Info, error) {
	capacity := ep.Burst
	if capacity <= 0 {
		capacity = ep.Limit
	}
	windowMs := float64(ep.Window.Milliseconds())
	if ep.Limit <= 0 || windowMs <= 0 {
		return Info{}, fmt.Errorf("invalid rate limit for %s: %d per %s", ep.Path, ep.Limit, ep.Window)
	}
	perMs := float64(ep.Limit) / windowMs
	// A bucket left alone for this long is full again, so it can expire.
	ttlMs := int64(math.Ceil(float64(capacity) * windowMs / float64(ep.Limit)))

	now := s.now()
	result, err := tokenBucketScript.Run(ctx, s.client, []string{s.prefix + key},
		capacity,
		perMs,
		now.UnixMilli(),
		ttlMs,
	).Slice()
	if err != nil {
		return Info{}, fmt.Errorf("redis rate limit check failed: %w", err)
	}
	if len(result) != 2 {
		return Info{}, errors.New("unexpected redis script result")
	}
	allowedFlag, ok := result[0].(int64)
	if !ok {
		return Info{}, fmt.Errorf("unexpected redis script result %v", result[0])
	}
	rawTokens, ok := result[1].(string)
	if !ok {
		return Info{}, fmt.Errorf("unexpected redis script result %v", result[1])
	}
	tokens, err := strconv.ParseFloat(rawTokens, 64)
	if err != nil {
		return Info{}, fmt.Errorf("unexpected token count %q: %w", rawTokens, err)
	}

	msUntil := func(missing float64) time.Duration {
		return time.Duration(missing / perMs * float64(time.Millisecond))
	}
	info := Info{
		Allowed:   allowedFlag == 1,
		Limit:     ep.Limit,
		Remaining: int(tokens),
		ResetTime: now.Add(msUntil(float64(capacity) - tokens)),
	}
	if !info.Allowed {
		info.RetryAfter = msUntil(1 - tokens)
	}
	return info, nil
}

// Close is a no-op; the client is owned by the caller.
func (s *RedisStore) Close() error {
	return nil
}
