package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window rate limiter keyed by an arbitrary identifier
// (client IP for the public endpoints).
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	maxReqs int
	size    time.Duration
	sweep   *time.Ticker
	done    chan struct{}
}

type window struct {
	hits     []time.Time
	lastSeen time.Time
}

// NewLimiter allows maxRequests per key within each sliding window of size.
func NewLimiter(maxRequests int, size time.Duration) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		maxReqs: maxRequests,
		size:    size,
		sweep:   time.NewTicker(5 * time.Minute),
		done:    make(chan struct{}),
	}
	go l.sweepStale()
	return l
}

// Allow reports whether another request for key fits in the current window.
// An empty key is never limited.
func (l *Limiter) Allow(key string) bool {
	if key == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[key]
	if !ok {
		w = &window{}
		l.windows[key] = w
	}

	cutoff := now.Add(-l.size)
	kept := w.hits[:0]
	for _, t := range w.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.hits = kept
	w.lastSeen = now

	if len(w.hits) >= l.maxReqs {
		return false
	}
	w.hits = append(w.hits, now)
	return true
}

func (l *Limiter) sweepStale() {
	for {
		select {
		case <-l.done:
			return
		case <-l.sweep.C:
			stale := time.Now().Add(-15 * time.Minute)
			l.mu.Lock()
			for key, w := range l.windows {
				if w.lastSeen.Before(stale) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop terminates the background sweeper.
func (l *Limiter) Stop() {
	l.sweep.Stop()
	close(l.done)
}
