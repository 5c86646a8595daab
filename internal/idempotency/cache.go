package idempotency

import (
	"sync"
	"time"
)

// Entry is a captured HTTP outcome, replayed byte-for-byte on a repeat of
// the same (identity, key). Entries are immutable once stored.
type Entry struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Location    string
}

type cachedEntry struct {
	entry     Entry
	expiresAt time.Time
}

// Cache is a single-node concurrent response cache with per-entry expiry.
// Horizontal scaling needs a shared store behind the same interface; this
// process-local map mirrors the source system's deployment.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]cachedEntry
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

// NewCache returns a Cache whose entries expire after ttlWindow.
func NewCache(ttlWindow time.Duration) *Cache {
	return &Cache{
		entries:   make(map[string]cachedEntry),
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// Get returns the stored entry for the key, if present and unexpired.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	ce, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	if c.nowFunc().After(ce.expiresAt) {
		c.mu.Lock()
		// re-check under the write lock; another writer may have refreshed it
		if cur, ok := c.entries[key]; ok && c.nowFunc().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return Entry{}, false
	}
	return ce.entry, true
}

// Set stores the entry under key. Concurrent writers on the same key are a
// last-writer-wins race, acceptable because both captured the same payment.
func (c *Cache) Set(key string, e Entry) {
	c.mu.Lock()
	c.entries[key] = cachedEntry{entry: e, expiresAt: c.nowFunc().Add(c.ttlWindow)}
	c.mu.Unlock()
}

// Sweep drops expired entries. Intended to run periodically from the server
// loop so abandoned keys do not accumulate between reads.
func (c *Cache) Sweep() {
	now := c.nowFunc()
	c.mu.Lock()
	for k, ce := range c.entries {
		if now.After(ce.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
