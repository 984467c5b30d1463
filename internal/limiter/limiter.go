// Package limiter provides fixed-window request rate limiting for the
// public widget endpoints.
package limiter

import (
	"context"
	"sync"
	"time"
)

// Limiter reports whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type windowBucket struct {
	count       int
	windowStart time.Time
}

// MemoryLimiter is an in-process fixed-window limiter used when Redis is
// not configured. Counters reset when a new window opens; stale buckets
// are dropped opportunistically on access.
type MemoryLimiter struct {
	window time.Duration
	max    int
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]windowBucket
}

func NewMemoryLimiter(window time.Duration, max int) *MemoryLimiter {
	return NewMemoryLimiterWithClock(window, max, time.Now)
}

// NewMemoryLimiterWithClock is used by tests to control window rollover.
func NewMemoryLimiterWithClock(window time.Duration, max int, now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		window:  window,
		max:     max,
		now:     now,
		buckets: make(map[string]windowBucket),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket, ok := l.buckets[key]
	if !ok || now.Sub(bucket.windowStart) >= l.window {
		bucket = windowBucket{windowStart: now}
	}

	bucket.count++
	l.buckets[key] = bucket

	if len(l.buckets) > 10000 {
		l.evictStale(now)
	}

	return bucket.count <= l.max, nil
}

func (l *MemoryLimiter) evictStale(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.windowStart) >= l.window {
			delete(l.buckets, k)
		}
	}
}
