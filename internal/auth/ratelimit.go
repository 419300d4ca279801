package auth

import (
	"sync"
	"time"
)

// Default login rate limit: five attempts per ten minutes per source address.
const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 600 * time.Second
)

// Limiter is a sliding-window attempt counter keyed by source address.
// State is process-local and lost on restart.
type Limiter struct {
	mu        sync.Mutex
	attempts  map[string][]time.Time
	max       int
	window    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewLimiter returns a Limiter admitting at most max attempts per window.
// Non-positive values fall back to the defaults.
func NewLimiter(max int, window time.Duration) *Limiter {
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// Allow records an attempt for addr and reports whether it is admitted.
// A refused attempt is not recorded.
func (l *Limiter) Allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(now)
	}
	recent := l.prune(addr, now)
	if len(recent) >= l.max {
		return false
	}
	l.attempts[addr] = append(recent, now)
	return true
}

// Reset forgets all attempts for addr.
func (l *Limiter) Reset(addr string) {
	l.mu.Lock()
	delete(l.attempts, addr)
	l.mu.Unlock()
}

// Count returns the number of attempts for addr inside the current window.
func (l *Limiter) Count(addr string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(addr, l.now()))
}

// sweep prunes every address so ones that never return are dropped.
// Caller holds l.mu.
func (l *Limiter) sweep(now time.Time) {
	for addr := range l.attempts {
		l.prune(addr, now)
	}
	l.lastSweep = now
}

// prune drops attempts older than the window. Caller holds l.mu.
func (l *Limiter) prune(addr string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	list := l.attempts[addr]
	i := 0
	for i < len(list) && !list[i].After(cutoff) {
		i++
	}
	list = list[i:]
	if len(list) == 0 {
		delete(l.attempts, addr)
		return nil
	}
	l.attempts[addr] = list
	return list
}
