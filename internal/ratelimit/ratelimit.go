// Package ratelimit implements a fixed-window counter keyed by
// "{action}:{identity}". Windows expire lazily on the next access; there
// is no background sweep. The store is an interface so a multi-instance
// deployment can plug in a shared backend, but the shipped implementation
// is process-local and resets on restart.
package ratelimit

import (
	"sync"
	"time"
)

type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type Store interface {
	// Hit records one attempt against key and reports whether it is within
	// limit for the current window. Once a window is saturated further hits
	// do not increment the counter.
	Hit(key string, limit int, window time.Duration) Result
}

type bucket struct {
	count   int
	resetAt time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// maxBuckets bounds memory for abusive key churn; expired entries are
// pruned when the map grows past it.
const maxBuckets = 10000

func (s *MemoryStore) Hit(key string, limit int, window time.Duration) Result {
	if limit <= 0 {
		return Result{Allowed: true, Remaining: 0, ResetAt: s.now()}
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{count: 0, resetAt: now.Add(window)}
		s.buckets[key] = b
		s.pruneLocked(now)
	}

	if b.count >= limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: b.resetAt}
	}

	b.count++
	return Result{Allowed: true, Remaining: limit - b.count, ResetAt: b.resetAt}
}

func (s *MemoryStore) pruneLocked(now time.Time) {
	if len(s.buckets) < maxBuckets {
		return
	}

	for key, b := range s.buckets {
		if !now.Before(b.resetAt) {
			delete(s.buckets, key)
		}
	}
}
