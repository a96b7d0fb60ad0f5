// Package quota provides per-client daily request quotas. Each client
// identity gets a fixed window bounded by UTC midnights; a counter
// accumulates toward a configured daily limit and resets when the window
// rolls over. It includes HTTP middleware that enforces the quota on
// selected routes and sets standard rate limit response headers.
package quota

import "time"

// Guard defines the quota tracking contract. Implementations must be safe
// for concurrent use and must never fail: all operations are total
// functions over in-memory state.
type Guard interface {
	// Check reports whether a request from the given identity may proceed
	// in the current window. It never enforces anything itself; callers
	// translate a denied Decision into a quota-exceeded response.
	Check(identity string) Decision

	// Increment records that the identity consumed one unit. It does not
	// enforce the limit; enforcement belongs to a preceding Check. The
	// Check/Increment pair is deliberately not atomic, so a client can
	// overshoot the limit by the number of requests in flight during the
	// race window.
	Increment(identity string)

	// Stats returns a read-only projection of the identity's current
	// usage. It never mutates state and never creates a record.
	Stats(identity string) Stats

	// Close stops background goroutines and releases resources.
	Close()
}

// Decision is the outcome of a Check call.
type Decision struct {
	Allowed   bool      // Whether the request may proceed
	Limit     int       // Configured daily limit
	Remaining int       // Requests left in the current window
	ResetAt   time.Time // When the window rolls over (UTC midnight)
}

// Stats is the usage projection returned by Stats.
type Stats struct {
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetAt   time.Time `json:"reset_at"`
}

// RetryAfter returns the number of seconds until the window resets,
// clamped to zero.
func (d Decision) RetryAfter(now time.Time) int {
	secs := int(d.ResetAt.Sub(now).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}

// nextReset returns the start of the calendar day following now, in UTC.
// The result is always strictly after now, including when now is exactly
// midnight. The computation is done purely in UTC so the server's local
// timezone can never shift the window boundary.
func nextReset(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
}
