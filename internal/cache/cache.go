// ABOUTME: In-memory caching of vulnerability source query results.
// ABOUTME: Uses TTL-based expiration to balance data freshness with upstream rate limits.

package cache

import (
	"sync"
	"time"

	"github.com/openhomesec/VulnTrack/internal/types"

	"github.com/sirupsen/logrus"
)

type entry struct {
	items     []types.SourceItem
	expiresAt time.Time
}

// SearchCache keeps recent source query results keyed by search keyword.
type SearchCache struct {
	entries map[string]*entry
	mutex   sync.RWMutex
	ttl     time.Duration
	logger  *logrus.Logger
}

// NewSearchCache creates a cache with the given TTL and starts its cleanup
// loop.
func NewSearchCache(ttl time.Duration, logger *logrus.Logger) *SearchCache {
	c := &SearchCache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		logger:  logger,
	}

	go c.startCleanup()

	return c
}

// Get returns the cached result for a keyword, if present and fresh.
func (c *SearchCache) Get(keyword string) ([]types.SourceItem, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, exists := c.entries[keyword]
	if !exists {
		return nil, false
	}

	// Expired entries stay until cleanup; taking a write lock here is not
	// worth it.
	if time.Now().After(e.expiresAt) {
		return nil, false
	}

	c.logger.WithField("keyword", keyword).Debug("Source cache hit")
	return e.items, true
}

// Set stores a query result for a keyword.
func (c *SearchCache) Set(keyword string, items []types.SourceItem) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[keyword] = &entry{
		items:     items,
		expiresAt: time.Now().Add(c.ttl),
	}

	c.logger.WithFields(logrus.Fields{
		"keyword":    keyword,
		"item_count": len(items),
	}).Debug("Cached source query result")
}

func (c *SearchCache) startCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *SearchCache) cleanup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	expiredCount := 0

	for keyword, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, keyword)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		c.logger.WithFields(logrus.Fields{
			"expired_entries":   expiredCount,
			"remaining_entries": len(c.entries),
		}).Debug("Source cache cleanup completed")
	}
}

// Stats returns the total and expired entry counts.
func (c *SearchCache) Stats() (total int, expired int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := time.Now()
	total = len(c.entries)

	for _, e := range c.entries {
		if now.After(e.expiresAt) {
			expired++
		}
	}

	return total, expired
}
