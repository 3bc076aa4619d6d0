package analytics

import (
	"sync"
	"time"
)

// statsCache holds the per-video stats for a short time
type statsCache struct {
	mu          sync.RWMutex
	stats       []Stats
	lastRefresh time.Time
	ttl         time.Duration
	now         func() time.Time
}

// newStatsCache creates a new statistics cache with the specified TTL
func newStatsCache(ttl time.Duration) *statsCache {
	return &statsCache{ttl: ttl, now: time.Now}
}

// get returns the cached stats if present and fresh
func (c *statsCache) get() ([]Stats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.lastRefresh.IsZero() || c.now().Sub(c.lastRefresh) > c.ttl {
		return nil, false
	}
	return c.stats, true
}

// set stores stats and stamps the refresh time
func (c *statsCache) set(stats []Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats = stats
	c.lastRefresh = c.now()
}
