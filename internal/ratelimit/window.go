package ratelimit

import (
	"sync"
	"time"
)

// entry is one client's counter within its current fixed window.
type entry struct {
	count       int
	windowStart time.Time
}

// WindowLimiter is an in-memory fixed-window rate limiter. Each unique key
// gets its own counter that resets whenever a full window has elapsed since
// the window started. Expired entries are dropped opportunistically on every
// Allow call; there is no background sweeper. An expired entry that survives
// a while only costs memory, never correctness, because it is treated as a
// fresh window on next access.
type WindowLimiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*entry

	// now is swappable for tests.
	now func() time.Time
}

// NewWindowLimiter creates a fixed-window limiter allowing max requests per
// key within each window.
func NewWindowLimiter(max int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		max:     max,
		window:  window,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow checks whether a request from the given key should be allowed.
func (l *WindowLimiter) Allow(key string) (bool, Info) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) >= l.window {
		// First request, or the previous window has fully elapsed.
		l.entries[key] = &entry{count: 1, windowStart: now}
		return true, Info{
			Limit:     l.max,
			Remaining: l.max - 1,
			ResetAt:   now.Add(l.window),
		}
	}

	e.count++
	resetAt := e.windowStart.Add(l.window)

	if e.count > l.max {
		return false, Info{
			Limit:      l.max,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfter(resetAt.Sub(now)),
		}
	}

	return true, Info{
		Limit:     l.max,
		Remaining: l.max - e.count,
		ResetAt:   resetAt,
	}
}

// Reset clears all counters. Exposed for test isolation.
func (l *WindowLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]*entry)
}

// sweep drops every entry whose window has fully elapsed. Amortized cleanup,
// called with the mutex held.
func (l *WindowLimiter) sweep(now time.Time) {
	for key, e := range l.entries {
		if now.Sub(e.windowStart) >= l.window {
			delete(l.entries, key)
		}
	}
}

// retryAfter rounds the remaining window up to whole seconds, floored at 1s,
// so the Retry-After hint is never zero while a denial is in effect.
func retryAfter(remaining time.Duration) time.Duration {
	secs := (remaining + time.Second - 1) / time.Second
	if secs < 1 {
		secs = 1
	}
	return secs * time.Second
}
