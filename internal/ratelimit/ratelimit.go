// Package ratelimit provides a keyed token-bucket rate limiter for
// outbound API calls.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// KeyedRateLimiter manages per-key rate limiting. Each unique key gets
// its own independent limiter, so uploads to different recognition hosts
// do not throttle each other.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// New creates a new keyed rate limiter allowing rps requests per second
// with the given burst.
func New(rps float64, burst int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// Wait blocks until a request for the given key is allowed or ctx is
// cancelled.
func (krl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return krl.getLimiter(key).Wait(ctx)
}

// Allow reports whether a request for the given key may proceed right
// now, without blocking.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).Allow()
}

func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	limiter, exists := krl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(krl.limit, krl.burst)
		krl.limiters[key] = limiter
	}
	return limiter
}
