// Package ratelimit provides the per-owner admission gate.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a per-key sliding-window request limiter: at most
// `requests` calls are admitted per key within the trailing window.
//
// State is process-local; in a multi-instance deployment each instance
// enforces its own window, so horizontal scaling needs a shared
// backing store instead.
type Limiter struct {
	requests int
	window   time.Duration

	mu      sync.Mutex
	windows map[string][]time.Time

	now func() time.Time
}

// NewLimiter builds a limiter admitting `requests` calls per key per
// `window`.
func NewLimiter(requests int, window time.Duration) *Limiter {
	return &Limiter{
		requests: requests,
		window:   window,
		windows:  make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow records and admits the call when the key's trailing window
// holds fewer than the configured number of requests; otherwise it
// denies without recording. The check-then-append is atomic per key,
// so two concurrent calls cannot both observe "under limit".
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.windows[key][:0]
	for _, t := range l.windows[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.requests {
		l.windows[key] = kept
		return false
	}
	l.windows[key] = append(kept, now)
	return true
}
