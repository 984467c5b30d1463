package service

import (
	"context"
	"sync"
	"time"

	"github.com/attica-health/carebot/internal/domain"
)

const defaultProjectCacheTTL = 30 * time.Second

// ProjectFetcher loads tenant configuration by its public widget key.
type ProjectFetcher interface {
	GetByKey(ctx context.Context, publicKey string) (*domain.Project, error)
}

type projectCacheEntry struct {
	project   *domain.Project
	expiresAt time.Time
}

// ProjectCache memoizes project lookups for a short TTL so every widget
// request does not hit the database. Only successful lookups are cached;
// a missing or failing fetch is retried on the next request.
type ProjectCache struct {
	fetcher ProjectFetcher
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]projectCacheEntry
}

func NewProjectCache(fetcher ProjectFetcher) *ProjectCache {
	return &ProjectCache{
		fetcher: fetcher,
		ttl:     defaultProjectCacheTTL,
		now:     time.Now,
		entries: make(map[string]projectCacheEntry),
	}
}

// NewProjectCacheWithClock is used by tests to control expiry.
func NewProjectCacheWithClock(fetcher ProjectFetcher, ttl time.Duration, now func() time.Time) *ProjectCache {
	c := NewProjectCache(fetcher)
	c.ttl = ttl
	c.now = now
	return c
}

// GetByKey returns the project for a public key, hitting the fetcher only
// when the cached entry is absent or stale.
func (c *ProjectCache) GetByKey(ctx context.Context, publicKey string) (*domain.Project, error) {
	c.mu.RLock()
	entry, ok := c.entries[publicKey]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expiresAt) {
		return entry.project, nil
	}

	project, err := c.fetcher.GetByKey(ctx, publicKey)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[publicKey] = projectCacheEntry{
		project:   project,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()

	return project, nil
}

// Invalidate drops a cached entry, for use after project updates.
func (c *ProjectCache) Invalidate(publicKey string) {
	c.mu.Lock()
	delete(c.entries, publicKey)
	c.mu.Unlock()
}
