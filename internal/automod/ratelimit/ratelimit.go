// Package ratelimit implements per-key fixed-window cooldown buckets.
//
// Each Limiter enforces one policy: at most Rate events per Per window for a
// single key. Keys are opaque strings (user, channel or guild IDs); buckets
// are created lazily on first use and evicted once their window has been
// expired for a while.
package ratelimit

import (
	"sync"
	"time"
)

// Policy describes a cooldown: at most Rate events per Per window.
type Policy struct {
	Rate int
	Per  time.Duration
}

type bucket struct {
	windowStart time.Time
	count       int
}

// Limiter tracks one cooldown policy across many keys. All methods are safe
// for concurrent use; the check-and-update in Check is atomic under the
// limiter mutex.
type Limiter struct {
	name   string
	policy Policy

	mu      sync.Mutex
	buckets map[string]*bucket
}

// New creates a limiter for the given policy. The name is used for logging
// and stats only.
func New(name string, policy Policy) *Limiter {
	return &Limiter{
		name:    name,
		policy:  policy,
		buckets: make(map[string]*bucket),
	}
}

// Name returns the limiter's name.
func (l *Limiter) Name() string { return l.name }

// Policy returns the limiter's policy.
func (l *Limiter) Policy() Policy { return l.policy }

// Check records an event for key at time now and reports whether it is
// allowed. A zero return means the event was within the rate; a positive
// return is the time remaining until the current window expires and the
// caller may retry.
func (l *Limiter) Check(key string, now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		l.buckets[key] = &bucket{windowStart: now, count: 1}
		return 0
	}

	windowEnd := b.windowStart.Add(l.policy.Per)
	if !now.Before(windowEnd) {
		// Window elapsed: reset and count this event as the first.
		b.windowStart = now
		b.count = 1
		return 0
	}

	b.count++
	if b.count > l.policy.Rate {
		return windowEnd.Sub(now)
	}
	return 0
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// EvictIdle drops buckets whose window expired more than one full window
// before now, and returns how many were removed. Keys re-create their bucket
// on the next event, so eviction never affects correctness, only memory.
func (l *Limiter) EvictIdle(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	cutoff := now.Add(-2 * l.policy.Per)
	for key, b := range l.buckets {
		if b.windowStart.Before(cutoff) {
			delete(l.buckets, key)
			evicted++
		}
	}
	return evicted
}
