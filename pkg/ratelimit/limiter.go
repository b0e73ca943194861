package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Keyed hands out one token bucket per key, e.g. per Telegram chat ID.
// Buckets are created lazily and never evicted.
type Keyed[K comparable] struct {
	mu      sync.Mutex
	buckets map[K]*rate.Limiter
	every   rate.Limit
	burst   int
}

func NewKeyed[K comparable](every rate.Limit, burst int) *Keyed[K] {
	return &Keyed[K]{buckets: map[K]*rate.Limiter{}, every: every, burst: burst}
}

func (k *Keyed[K]) For(key K) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.buckets[key]
	if !ok {
		l = rate.NewLimiter(k.every, k.burst)
		k.buckets[key] = l
	}
	return l
}

// PerMinute builds a limiter allowing n requests per minute with a burst of n/10
// (at least 1). A non-positive n means unlimited.
func PerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := n / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), burst)
}
