package resolver

import (
	"sync"
	"time"

	"jukebot/pkg/types"
)

// cacheMaxEntries bounds the source cache; eviction is oldest-first.
const cacheMaxEntries = 256

// CacheStore persists source-cache entries across restarts. Implemented
// by the bolt store; both methods are best effort.
type CacheStore interface {
	LoadSourceCache() (map[string]types.BackendID, error)
	SaveSourceCacheEntry(query string, backend types.BackendID) error
}

type cacheEntry struct {
	backend  types.BackendID
	storedAt time.Time
}

// sourceCache remembers which backend satisfied a query last so later
// calls promote it to effective primary. It never stores track data.
type sourceCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   func() time.Time
	entries map[string]cacheEntry
	order   []string // insertion order, for eviction
}

func newSourceCache(ttl time.Duration, clock func() time.Time) *sourceCache {
	return &sourceCache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]cacheEntry),
	}
}

func (c *sourceCache) get(query string) (types.BackendID, bool) {
	c.mu.RLock()
	e, ok := c.entries[query]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if c.clock().Sub(e.storedAt) <= c.ttl {
		return e.backend, true
	}
	c.mu.Lock()
	// re-check: a put may have refreshed the entry in between
	if cur, ok := c.entries[query]; ok && c.clock().Sub(cur.storedAt) > c.ttl {
		delete(c.entries, query)
		c.dropFromOrder(query)
	}
	c.mu.Unlock()
	return "", false
}

func (c *sourceCache) put(query string, backend types.BackendID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[query]; !exists {
		c.order = append(c.order, query)
		if len(c.order) > cacheMaxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
	}
	c.entries[query] = cacheEntry{backend: backend, storedAt: c.clock()}
}

// seed loads persisted entries; their TTL restarts from now.
func (c *sourceCache) seed(m map[string]types.BackendID) {
	for q, b := range m {
		if q == "" || !b.Valid() {
			continue
		}
		c.put(q, b)
	}
}

func (c *sourceCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *sourceCache) dropFromOrder(query string) {
	for i, q := range c.order {
		if q == query {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
