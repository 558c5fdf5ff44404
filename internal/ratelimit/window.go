// Package ratelimit provides the admission-control primitives guarding
// outbound calls to the weather provider.
package ratelimit

import (
	"sync"
	"time"
)

// Governor decides whether one unit of work may proceed right now.
// Implementations must be safe for concurrent use.
type Governor interface {
	Admit() bool
}

// SlidingWindow admits at most capacity calls in any trailing window of
// wall-clock time. The window boundary moves continuously with "now", so
// admissions decay smoothly instead of resetting at fixed tick boundaries.
//
// The trade-off versus a token bucket is deliberate: callers may burst up to
// full capacity instantly while slots are free, then hard-stop until old
// admissions age out. That is coarse but sufficient for protecting an
// upstream API from abuse.
//
// Timestamps come from the wall clock by default; a backward clock jump
// makes recent entries look unexpired, which delays admission rather than
// over-admitting.
type SlidingWindow struct {
	capacity int
	window   time.Duration
	nowFn    func() time.Time

	mu     sync.Mutex
	ledger []time.Time
}

// Option configures a SlidingWindow.
type Option func(*SlidingWindow)

// WithClock overrides the time source. Intended for tests.
func WithClock(nowFn func() time.Time) Option {
	return func(w *SlidingWindow) { w.nowFn = nowFn }
}

// NewSlidingWindow creates a governor admitting at most capacity calls per
// trailing window. A capacity <= 0 yields a governor that never admits.
func NewSlidingWindow(capacity int, window time.Duration, opts ...Option) *SlidingWindow {
	w := &SlidingWindow{
		capacity: capacity,
		window:   window,
		nowFn:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Admit reports whether one more call may proceed. On admission the call is
// recorded against the window; on rejection the ledger is left untouched.
// Prune, count and conditional append run as one critical section so that
// racing callers can never over-admit.
func (w *SlidingWindow) Admit() bool {
	if w.capacity <= 0 {
		return false
	}
	now := w.nowFn()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now)
	if len(w.ledger) >= w.capacity {
		return false
	}
	w.ledger = append(w.ledger, now)
	return true
}

// Remaining reports how many admissions are currently available. Advisory
// only: the answer may be stale by the time the caller acts on it.
func (w *SlidingWindow) Remaining() int {
	if w.capacity <= 0 {
		return 0
	}
	now := w.nowFn()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now)
	return w.capacity - len(w.ledger)
}

// prune drops every entry that has aged past the window. Entries newer than
// now (possible after a wall-clock adjustment) are never expired, so a
// backward jump cannot cause spurious admission. Caller must hold mu.
func (w *SlidingWindow) prune(now time.Time) {
	cut := 0
	for cut < len(w.ledger) && now.Sub(w.ledger[cut]) >= w.window {
		cut++
	}
	if cut > 0 {
		w.ledger = append(w.ledger[:0], w.ledger[cut:]...)
	}
}
