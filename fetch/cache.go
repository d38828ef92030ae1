package fetch

import (
	"context"
	"sync"
	"time"
)

// MaxCachedDocuments is the default capacity of a Cache.
const MaxCachedDocuments = 100

type cacheEntry struct {
	data      []byte
	fetchTime time.Time
}

// Cache remembers successful fetches of the wrapped Fetcher. It is safe for
// concurrent use.
//
// A positive TTL expires entries after that duration, zero keeps them
// forever, and a negative TTL disables caching. When the cache is full the
// oldest entry is evicted.
type Cache struct {
	fetcher    Fetcher
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

// NewCache wraps f. A maxEntries of zero or less means MaxCachedDocuments.
func NewCache(f Fetcher, ttl time.Duration, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = MaxCachedDocuments
	}
	return &Cache{
		fetcher:    f,
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		entries:    make(map[string]*cacheEntry),
	}
}

// Fetch returns the cached document for uri or fetches and stores it.
func (c *Cache) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if c.ttl >= 0 {
		c.mu.Lock()
		entry, ok := c.entries[uri]
		if ok && c.fresh(entry) {
			c.mu.Unlock()
			return append([]byte(nil), entry.data...), nil
		}
		c.mu.Unlock()
	}

	data, err := c.fetcher.Fetch(ctx, uri)
	if err != nil || c.ttl < 0 {
		return data, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[uri]; !ok && len(c.entries) >= c.maxEntries {
		c.evict()
	}
	c.entries[uri] = &cacheEntry{data: append([]byte(nil), data...), fetchTime: c.now()}
	return data, nil
}

// Len returns the number of cached documents, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops every cached document.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

func (c *Cache) fresh(entry *cacheEntry) bool {
	return c.ttl == 0 || c.now().Sub(entry.fetchTime) < c.ttl
}

// evict removes expired entries, or the oldest one if none expired.
// The caller holds c.mu.
func (c *Cache) evict() {
	var oldestURI string
	var oldest time.Time
	removed := false
	for uri, entry := range c.entries {
		if !c.fresh(entry) {
			delete(c.entries, uri)
			removed = true
			continue
		}
		if oldestURI == "" || entry.fetchTime.Before(oldest) {
			oldestURI, oldest = uri, entry.fetchTime
		}
	}
	if !removed && oldestURI != "" {
		delete(c.entries, oldestURI)
	}
}
