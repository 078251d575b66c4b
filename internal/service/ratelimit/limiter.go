package ratelimit

import (
	"sync"
	"time"
)

// staleAfter controls when an idle bucket is dropped. Keys are typically
// client IP + endpoint, so the map would otherwise grow without bound.
const staleAfter = 10 * time.Minute

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// Limiter is a token-bucket rate limiter keyed by arbitrary string.
// Capacity and refill rate are supplied per call, so different endpoints
// can share one limiter with different budgets.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	sweepAt time.Time
}

func New() *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		sweepAt: time.Now().Add(staleAfter),
	}
}

// Allow consumes one token for key, creating the bucket on first use.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.sweepAt) {
		for k, b := range l.buckets {
			if now.Sub(b.last) > staleAfter {
				delete(l.buckets, k)
			}
		}
		l.sweepAt = now.Add(staleAfter)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
