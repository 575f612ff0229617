// Package coordination holds the per-scroller concurrency guards: the
// single-flight generation lock and the fixed-window rate counter. Both are
// process-local; the interface exists so a shared backing (distributed lock,
// cache) can be substituted without touching the pipeline.
package coordination

import "github.com/google/uuid"

// Coordinator guards generation and paging for one scroller at a time.
type Coordinator interface {
	// Allow consumes one call from the scroller's rate window. It returns
	// domain.ErrRateLimited once the window's budget is spent; the window
	// resets after its fixed duration.
	Allow(scrollerID uuid.UUID) error

	// AcquireGeneration attempts to take the scroller's generation lock.
	// When acquired it returns true and a release func the caller must
	// invoke when the generation round ends, success or not. When the lock
	// is held by a younger-than-timeout holder it returns false; a holder
	// older than the timeout is treated as abandoned and stolen.
	AcquireGeneration(scrollerID uuid.UUID) (release func(), acquired bool)
}
