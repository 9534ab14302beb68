package data

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"home-battery-roi/internal/scenario"
)

// CacheEntry is one stored run.
type CacheEntry struct {
	Report    *scenario.Report
	ExpiresAt time.Time
}

// RunCache keeps finished runs in memory so that trajectories and ledgers
// can be fetched after the run request returned. Entries expire after the
// configured TTL.
type RunCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
	now   func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewRunCache creates a cache and starts its cleanup goroutine.
// Call Close to stop it.
func NewRunCache(ttl time.Duration) *RunCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &RunCache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go c.cleanup(5 * time.Minute)
	return c
}

// Put stores a report under a new random id and returns the id.
func (c *RunCache) Put(report *scenario.Report) string {
	id := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[id] = &CacheEntry{
		Report:    report,
		ExpiresAt: c.now().Add(c.ttl),
	}
	return id
}

// Get retrieves a report if present and not expired.
func (c *RunCache) Get(id string) (*scenario.Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[id]
	if !ok || c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Report, true
}

// Len returns the number of stored entries, expired or not.
func (c *RunCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the cleanup goroutine.
func (c *RunCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

// cleanup periodically removes expired entries
func (c *RunCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *RunCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, key)
		}
	}
}
