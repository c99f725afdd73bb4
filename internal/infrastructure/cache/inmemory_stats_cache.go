package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shulesync/backend/internal/domain/billing"
)

// statsEntry is a cached value with its expiry
type statsEntry struct {
	stats     billing.DashboardStats
	expiresAt time.Time
}

// InMemoryStatsCache implements StatsCache with a mutex-guarded map.
// Suitable for single-instance deployments and testing.
type InMemoryStatsCache struct {
	mu        sync.RWMutex
	entries   map[string]statsEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryStatsCache creates an in-memory stats cache and starts its
// background cleanup goroutine.
func NewInMemoryStatsCache() *InMemoryStatsCache {
	c := &InMemoryStatsCache{
		entries:  make(map[string]statsEntry),
		stopChan: make(chan struct{}),
	}
	c.wg.Add(1)
	go c.cleanupLoop()
	return c
}

// Get returns the cached stats for key, or found=false on a miss
func (c *InMemoryStatsCache) Get(_ context.Context, key string) (billing.DashboardStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return billing.DashboardStats{}, false
	}
	return e.stats, true
}

// Set stores stats under key for ttl
func (c *InMemoryStatsCache) Set(_ context.Context, key string, stats billing.DashboardStats, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = statsEntry{stats: stats, expiresAt: time.Now().Add(ttl)}
}

// Invalidate drops the entry for key
func (c *InMemoryStatsCache) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryStatsCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// Size returns the number of entries (for testing/monitoring)
func (c *InMemoryStatsCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryStatsCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryStatsCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Ensure InMemoryStatsCache implements StatsCache
var _ StatsCache = (*InMemoryStatsCache)(nil)
