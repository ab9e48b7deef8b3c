// Package mutex provides keyed locking for request deduplication. The
// trust score service keys entries by tier and token address, so only
// one aggregation per key runs at a time and concurrent callers wait
// for the cache entry the first one writes.
package mutex

import (
	"sync"
	"time"
)

// RequestMutex is a set of named mutexes with idle-entry cleanup
type RequestMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
	idleTTL time.Duration
	stopCh  chan struct{}
	stop    sync.Once
}

type entry struct {
	lock     sync.Mutex
	lastUsed time.Time
}

// New creates a RequestMutex that drops entries idle for longer than
// idleTTL
func New(idleTTL time.Duration) *RequestMutex {
	rm := &RequestMutex{
		entries: make(map[string]*entry),
		idleTTL: idleTTL,
		stopCh:  make(chan struct{}),
	}
	go rm.janitor()
	return rm
}

// Lock acquires the mutex for the given key, creating it on first use
func (rm *RequestMutex) Lock(key string) {
	rm.mu.Lock()
	e, ok := rm.entries[key]
	if !ok {
		e = &entry{}
		rm.entries[key] = e
	}
	e.lastUsed = time.Now()
	rm.mu.Unlock()

	e.lock.Lock()
}

// Unlock releases the mutex for the given key
func (rm *RequestMutex) Unlock(key string) {
	rm.mu.Lock()
	e, ok := rm.entries[key]
	rm.mu.Unlock()

	if ok {
		e.lock.Unlock()
	}
}

// Size returns how many keys currently hold an entry
func (rm *RequestMutex) Size() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.entries)
}

func (rm *RequestMutex) janitor() {
	ticker := time.NewTicker(rm.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rm.removeIdle()
		case <-rm.stopCh:
			return
		}
	}
}

// removeIdle drops entries that are both idle past the TTL and not
// currently held
func (rm *RequestMutex) removeIdle() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	now := time.Now()
	for key, e := range rm.entries {
		if now.Sub(e.lastUsed) <= rm.idleTTL {
			continue
		}
		if e.lock.TryLock() {
			e.lock.Unlock()
			delete(rm.entries, key)
		}
	}
}

// Stop terminates the cleanup goroutine
func (rm *RequestMutex) Stop() {
	rm.stop.Do(func() { close(rm.stopCh) })
}
