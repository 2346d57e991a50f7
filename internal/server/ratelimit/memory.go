package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket represents a token bucket rate limiter.
// It allows a certain number of requests (tokens) per time window,
// with tokens refilling at a steady rate.
type TokenBucket struct {
	capacity   int        // Maximum tokens (burst capacity)
	refillRate float64    // Tokens per second
	tokens     float64    // Current tokens available
	lastRefill time.Time  // Last time tokens were refilled
	mu         sync.Mutex // Mutex for thread safety
}

// newTokenBucket creates a new token bucket with the specified capacity and refill rate.
func newTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity), // Start with full bucket
		lastRefill: time.Now(),
	}
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed.Seconds()*tb.refillRate)
	tb.lastRefill = now
}

// take consumes a token if one is available and reports the bucket state
// after the attempt.
func (tb *TokenBucket) take() (allowed bool, remaining int, resetTime time.Time, retryAfter time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.refill(now)

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		allowed = true
	} else {
		retryAfter = time.Duration((1.0 - tb.tokens) / tb.refillRate * float64(time.Second))
	}

	remaining = int(tb.tokens)
	resetTime = now
	if tb.tokens < float64(tb.capacity) {
		secondsUntilFull := (float64(tb.capacity) - tb.tokens) / tb.refillRate
		resetTime = now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	}
	return allowed, remaining, resetTime, retryAfter
}

// MemoryStore keeps one token bucket per key in process memory.
type MemoryStore struct {
	buckets       map[string]*TokenBucket
	lastAccess    map[string]time.Time
	mu            sync.Mutex
	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewMemoryStore creates a store; a positive cleanupInterval starts a
// goroutine that drops buckets idle for over an hour.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		buckets:    make(map[string]*TokenBucket),
		lastAccess: make(map[string]time.Time),
	}
	if cleanupInterval > 0 {
		s.cleanupTicker = time.NewTicker(cleanupInterval)
		s.cleanupStop = make(chan struct{})
		go s.cleanup()
	}
	return s
}

// Take consumes a token from the bucket for key.
func (s *MemoryStore) Take(_ context.Context, key string, ep EndpointConfig) (Info, error) {
	bucket := s.getBucket(key, ep)
	allowed, remaining, resetTime, retryAfter := bucket.take()
	return Info{
		Allowed:    allowed,
		Limit:      ep.Limit,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: retryAfter,
	}, nil
}

// getBucket gets or creates a token bucket for the given key.
func (s *MemoryStore) getBucket(key string, ep EndpointConfig) *TokenBucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastAccess[key] = time.Now()
	if bucket, exists := s.buckets[key]; exists {
		return bucket
	}

	// Refill rate = limit / window duration in seconds
	capacity := ep.Burst
	if capacity <= 0 {
		capacity = ep.Limit
	}
	bucket := newTokenBucket(capacity, float64(ep.Limit)/ep.Window.Seconds())
	s.buckets[key] = bucket
	return bucket
}

// cleanup removes old unused buckets to prevent memory leaks.
func (s *MemoryStore) cleanup() {
	for {
		select {
		case <-s.cleanupTicker.C:
			s.cleanupBuckets(time.Now().Add(-1 * time.Hour))
		case <-s.cleanupStop:
			return
		}
	}
}

// cleanupBuckets removes buckets that haven't been accessed since cutoff.
func (s *MemoryStore) cleanupBuckets(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, lastAccess := range s.lastAccess {
		if lastAccess.Before(cutoff) {
			delete(s.buckets, key)
			delete(s.lastAccess, key)
		}
	}
}

func (s *MemoryStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() {
		if s.cleanupTicker != nil {
			s.cleanupTicker.Stop()
			close(s.cleanupStop)
		}
	})
	return nil
}
