package cache

import (
	"sync"
	"time"
)

// Entry represents a cached value with its expiry time
type Entry[T any] struct {
	Value     T
	ExpiresAt time.Time
}

// Cache provides thread-safe caching with TTL support
type Cache[T any] struct {
	data   map[string]*Entry[T]
	mutex  sync.RWMutex
	ttl    time.Duration
	stopCh chan struct{}
}

// New creates a new Cache instance with the specified TTL
func New[T any](ttl time.Duration) *Cache[T] {
	c := &Cache[T]{
		data:   make(map[string]*Entry[T]),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}

	// Start cleanup goroutine
	go c.cleanup()

	return c
}

// Get retrieves a value from the cache if it exists and hasn't expired
func (c *Cache[T]) Get(key string) (T, bool) {
	value, _, ok := c.GetWithExpiry(key)
	return value, ok
}

// GetWithExpiry retrieves a value along with the time it expires at
func (c *Cache[T]) GetWithExpiry(key string) (T, time.Time, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.data[key]
	if !exists || time.Now().After(entry.ExpiresAt) {
		var zero T
		return zero, time.Time{}, false
	}

	return entry.Value, entry.ExpiresAt, true
}

// Set stores a value in the cache and returns its expiry time
func (c *Cache[T]) Set(key string, value T) time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	expiresAt := time.Now().Add(c.ttl)
	c.data[key] = &Entry[T]{
		Value:     value,
		ExpiresAt: expiresAt,
	}
	return expiresAt
}

// Delete removes a key from the cache
func (c *Cache[T]) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
}

// Clear removes all entries from the cache
func (c *Cache[T]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]*Entry[T])
}

// Size returns the number of entries in the cache
func (c *Cache[T]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.data)
}

// TTL returns the configured time-to-live
func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

// cleanup runs periodically to remove expired entries
func (c *Cache[T]) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

// removeExpired removes all expired entries from the cache
func (c *Cache[T]) removeExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, entry := range c.data {
		if now.After(entry.ExpiresAt) {
			delete(c.data, key)
		}
	}
}

// Stop stops the cleanup goroutine
func (c *Cache[T]) Stop() {
	close(c.stopCh)
}
