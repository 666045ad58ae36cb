// Package gate bounds how many heavy jobs may execute concurrently,
// independent of which client owns them. It is an admission-control gate,
// not a work queue: acquisition never blocks and a full gate rejects
// immediately with a short retry hint supplied by the caller.
package gate

import "sync"

// Gate is a process-wide counter capped at a configured maximum.
type Gate struct {
	mu       sync.Mutex
	inFlight int
	cap      int
}

// New creates a gate admitting at most cap concurrent jobs.
func New(cap int) *Gate {
	return &Gate{cap: cap}
}

// TryAcquire attempts to take a slot. It succeeds and increments the counter
// iff the current count is below the cap; otherwise it fails without mutating
// state. The returned release function is idempotent: a slot is given back
// exactly once no matter how many completion or disconnect paths invoke it.
func (g *Gate) TryAcquire() (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight >= g.cap {
		return nil, false
	}
	g.inFlight++

	released := false
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if released {
			return
		}
		released = true
		if g.inFlight > 0 {
			g.inFlight--
		}
	}, true
}

// InFlight returns the number of currently held slots.
func (g *Gate) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// Cap returns the configured maximum.
func (g *Gate) Cap() int {
	return g.cap
}

// Reset forcibly clears the counter. Exposed for test isolation; release
// functions handed out before a reset become no-ops only through their own
// released flags, so production code must never call this.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight = 0
}
