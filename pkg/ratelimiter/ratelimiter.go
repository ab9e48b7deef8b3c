// Package ratelimiter meters the free teaser endpoint per client IP
// with a fixed counting window. Paid endpoints are not limited; payment
// is their throttle.
package ratelimiter

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter tracks per-IP request counts in memory
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	span    time.Duration
}

// New creates a RateLimiter allowing limit requests per span
func New(limit int, span time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		span:    span,
	}
}

// IsAllowed records a request for the IP and reports whether it fits
// in the current window
func (rl *RateLimiter) IsAllowed(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[ip]
	if !ok || now.After(w.resetAt) {
		rl.windows[ip] = &window{count: 1, resetAt: now.Add(rl.span)}
		return true
	}

	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

// GetRequestInfo returns the IP's current count and when its window
// resets
func (rl *RateLimiter) GetRequestInfo(ip string) (count int, resetTime time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[ip]
	if !ok || time.Now().After(w.resetAt) {
		return 0, time.Now().Add(rl.span)
	}
	return w.count, w.resetAt
}

// Cleanup drops windows that have already reset
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, w := range rl.windows {
		if now.After(w.resetAt) {
			delete(rl.windows, ip)
		}
	}
}
