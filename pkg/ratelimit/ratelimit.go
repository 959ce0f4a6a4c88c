package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window hit counter keyed by caller (session ID or IP)
type Limiter struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	window  time.Duration
	maxHits int
	now     func() time.Time
}

func NewLimiter(window time.Duration, maxHits int) *Limiter {
	return &Limiter{
		hits:    make(map[string][]time.Time),
		window:  window,
		maxHits: maxHits,
		now:     time.Now,
	}
}

// Allow records a hit for key and reports whether it fits in the window
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	valid := l.prune(key, now)

	if len(valid) >= l.maxHits {
		return false
	}

	l.hits[key] = append(valid, now)
	return true
}

// Remaining returns how many hits key may still make in the current window
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	left := l.maxHits - len(l.prune(key, l.now()))
	if left < 0 {
		return 0
	}
	return left
}

// prune drops hits older than the window; caller holds mu
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	hits, exists := l.hits[key]
	if !exists {
		return nil
	}

	windowStart := now.Add(-l.window)
	valid := hits[:0]
	for _, hit := range hits {
		if hit.After(windowStart) {
			valid = append(valid, hit)
		}
	}

	if len(valid) == 0 {
		delete(l.hits, key)
		return nil
	}
	l.hits[key] = valid
	return valid
}
