package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	count int
	start time.Time
}

// Limiter is a fixed-window request counter keyed by source name.
// Windows reset lazily on the first call after they elapse.
type Limiter struct {
	mu  sync.Mutex
	m   map[string]*window
	now func() time.Time
}

func New() *Limiter {
	return &Limiter{m: make(map[string]*window), now: time.Now}
}

// NewWithClock injects the time source for tests.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{m: make(map[string]*window), now: now}
}

// Allow reports whether a request for key fits within limit requests per
// span. A granted request increments the window counter; a denied request
// does not.
func (l *Limiter) Allow(key string, limit int, span time.Duration) bool {
	if limit <= 0 {
		return false
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.m[key]
	if !ok || now.Sub(w.start) > span {
		l.m[key] = &window{count: 1, start: now}
		return true
	}
	if w.count >= limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many requests are left in the current window.
func (l *Limiter) Remaining(key string, limit int, span time.Duration) int {
	if limit <= 0 {
		return 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.m[key]
	if !ok || now.Sub(w.start) > span {
		return limit
	}
	if w.count >= limit {
		return 0
	}
	return limit - w.count
}
