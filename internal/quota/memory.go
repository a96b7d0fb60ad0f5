package quota

import (
	"sync"
	"time"
)

// record tracks one client identity's consumption in the current window.
type record struct {
	count   int
	resetAt time.Time
}

// MemoryGuard is an in-memory Guard with daily fixed windows. A single
// mutex protects the identity map; every mutation of a record's count and
// resetAt happens under it, so updates to a record are atomic with respect
// to each other. Expired records are reclaimed two ways: a lazy sweep on
// every Check, and a background goroutine on a fixed cadence so the map
// cannot grow unbounded even when Check is never called.
type MemoryGuard struct {
	limit           int
	cleanupInterval time.Duration

	mu      sync.Mutex
	records map[string]*record
	done    chan struct{}
	closed  bool

	now func() time.Time // overridable in tests
}

// NewMemoryGuard creates a guard with the given daily limit and cleanup
// interval. It starts a background goroutine for eviction.
func NewMemoryGuard(dailyLimit int, cleanupInterval time.Duration) *MemoryGuard {
	g := &MemoryGuard{
		limit:           dailyLimit,
		cleanupInterval: cleanupInterval,
		records:         make(map[string]*record),
		done:            make(chan struct{}),
		now:             time.Now,
	}
	go g.cleanup()
	return g
}

// Check reports whether the identity may proceed in the current window.
// A missing record is created eagerly with a zero count; an expired record
// is reset in place before evaluation.
func (g *MemoryGuard) Check(identity string) Decision {
	now := g.now().UTC()

	g.mu.Lock()
	defer g.mu.Unlock()

	g.sweepLocked(now)

	r, exists := g.records[identity]
	if !exists {
		r = &record{resetAt: nextReset(now)}
		g.records[identity] = r
	} else if !r.resetAt.After(now) {
		r.count = 0
		r.resetAt = nextReset(now)
	}

	remaining := g.limit - r.count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   r.count < g.limit,
		Limit:     g.limit,
		Remaining: remaining,
		ResetAt:   r.resetAt,
	}
}

// Increment records one consumed unit for the identity. An expired record
// is refreshed before incrementing so a stale count is never carried into
// a new window.
func (g *MemoryGuard) Increment(identity string) {
	now := g.now().UTC()

	g.mu.Lock()
	defer g.mu.Unlock()

	r, exists := g.records[identity]
	if !exists {
		g.records[identity] = &record{count: 1, resetAt: nextReset(now)}
		return
	}
	if !r.resetAt.After(now) {
		r.count = 0
		r.resetAt = nextReset(now)
	}
	r.count++
}

// Stats returns the identity's current usage without mutating anything.
// Absent or expired records project fresh-window defaults.
func (g *MemoryGuard) Stats(identity string) Stats {
	now := g.now().UTC()

	g.mu.Lock()
	defer g.mu.Unlock()

	r, exists := g.records[identity]
	if !exists || !r.resetAt.After(now) {
		return Stats{
			Used:      0,
			Remaining: g.limit,
			Limit:     g.limit,
			ResetAt:   nextReset(now),
		}
	}

	remaining := g.limit - r.count
	if remaining < 0 {
		remaining = 0
	}

	return Stats{
		Used:      r.count,
		Remaining: remaining,
		Limit:     g.limit,
		ResetAt:   r.resetAt,
	}
}

// Close stops the background cleanup goroutine.
func (g *MemoryGuard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed {
		g.closed = true
		close(g.done)
	}
}

// sweepLocked removes records whose window has passed. Caller must hold mu.
func (g *MemoryGuard) sweepLocked(now time.Time) {
	for identity, r := range g.records {
		if !r.resetAt.After(now) {
			delete(g.records, identity)
		}
	}
}

// cleanup periodically evicts expired records.
func (g *MemoryGuard) cleanup() {
	ticker := time.NewTicker(g.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.done:
			return
		case <-ticker.C:
			now := g.now().UTC()
			g.mu.Lock()
			g.sweepLocked(now)
			g.mu.Unlock()
		}
	}
}
