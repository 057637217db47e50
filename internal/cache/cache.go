// Package cache keeps recently fetched source payloads in memory so repeated
// runs within one process do not hit the network again.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Entry is a cached payload body.
type Entry struct {
	Body        []byte
	ContentType string
	FetchedAt   time.Time
}

// Cache is a TTL cache of payload entries keyed by URL.
type Cache struct {
	store *gocache.Cache
}

// New creates a cache. Entries expire after ttl; expired entries are purged
// every cleanupInterval.
func New(ttl, cleanupInterval time.Duration) *Cache {
	return &Cache{store: gocache.New(ttl, cleanupInterval)}
}

// Get returns the entry for key.
func (c *Cache) Get(key string) (Entry, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return Entry{}, false
	}
	e, ok := v.(Entry)
	return e, ok
}

// Set stores an entry with the default TTL.
func (c *Cache) Set(key string, e Entry) {
	c.store.Set(key, e, gocache.DefaultExpiration)
}

// SetWithTTL stores an entry with a custom TTL.
func (c *Cache) SetWithTTL(key string, e Entry, ttl time.Duration) {
	c.store.Set(key, e, ttl)
}

// Delete removes an entry.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of cached entries, including expired ones not yet purged.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}
