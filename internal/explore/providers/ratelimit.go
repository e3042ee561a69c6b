package providers

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting settings for one provider.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits provides conservative defaults per provider, well below
// the published limits so one process never trips a quota.
var DefaultRateLimits = map[string]RateLimitConfig{
	NameAniList:     {RequestsPerSecond: 1.5, BurstSize: 2}, // AniList allows 90/min
	NameTMDB:        {RequestsPerSecond: 4.0, BurstSize: 8},
	NameMangaDex:    {RequestsPerSecond: 1.0, BurstSize: 2}, // MangaDex asks ~1/sec for search
	NameOpenLibrary: {RequestsPerSecond: 1.0, BurstSize: 2},
}

// RateLimiter is a token bucket for one provider, shared process-wide across
// requests, with a backoff period honored after 429 responses. It is the only
// state explore shares between requests.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a rate limiter with the default config for the
// named provider.
func NewRateLimiter(name string) *RateLimiter {
	cfg, ok := DefaultRateLimits[name]
	if !ok {
		cfg = RateLimitConfig{RequestsPerSecond: 1.0, BurstSize: 2}
	}
	return NewRateLimiterWithConfig(cfg)
}

// NewRateLimiterWithConfig creates a rate limiter with a custom config.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Wait blocks until a request may be made, honoring both the bucket and any
// backoff recorded from a 429. Returns the context error when the deadline
// passes first.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}
	return r.limiter.Wait(ctx)
}

// RecordRateLimited sets a backoff period after a 429 response.
// Pass the Retry-After value in seconds; non-positive uses a 60s default.
func (r *RateLimiter) RecordRateLimited(retryAfterSeconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if retryAfterSeconds <= 0 {
		retryAfterSeconds = 60
	}
	r.retryAt = time.Now().Add(time.Duration(retryAfterSeconds) * time.Second)
}
