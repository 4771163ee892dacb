package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestStore(start time.Time) (*MemoryStore, *time.Time) {
	store := NewMemoryStore()
	current := start
	store.now = func() time.Time { return current }
	return store, &current
}

func TestMemoryStore_ExactLimitBoundary(t *testing.T) {
	store, _ := newTestStore(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	// Exactly limit hits succeed, the limit+1th fails.
	for i := 0; i < 5; i++ {
		res := store.Hit("login:1.2.3.4", 5, time.Minute)
		assert.True(t, res.Allowed, "hit %d should be allowed", i+1)
		assert.Equal(t, 4-i, res.Remaining)
	}

	res := store.Hit("login:1.2.3.4", 5, time.Minute)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestMemoryStore_SaturatedWindowDoesNotIncrement(t *testing.T) {
	store, _ := newTestStore(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		store.Hit("refresh:ip", 3, time.Minute)
	}

	// Hammering a saturated window must not push resetAt or overflow the
	// counter; the deny result is stable.
	first := store.Hit("refresh:ip", 3, time.Minute)
	second := store.Hit("refresh:ip", 3, time.Minute)
	assert.False(t, first.Allowed)
	assert.False(t, second.Allowed)
	assert.Equal(t, first.ResetAt, second.ResetAt)
}

func TestMemoryStore_WindowResets(t *testing.T) {
	store, clock := newTestStore(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 2; i++ {
		store.Hit("contact:ip", 2, 10*time.Minute)
	}
	assert.False(t, store.Hit("contact:ip", 2, 10*time.Minute).Allowed)

	*clock = clock.Add(10*time.Minute + time.Second)

	res := store.Hit("contact:ip", 2, 10*time.Minute)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	store, _ := newTestStore(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	assert.True(t, store.Hit("login:a", 1, time.Minute).Allowed)
	assert.False(t, store.Hit("login:a", 1, time.Minute).Allowed)
	assert.True(t, store.Hit("login:b", 1, time.Minute).Allowed)
	assert.True(t, store.Hit("view:a", 1, time.Minute).Allowed)
}

func TestMemoryStore_ZeroLimitAllows(t *testing.T) {
	store, _ := newTestStore(time.Now())
	assert.True(t, store.Hit("anything", 0, time.Minute).Allowed)
}

func TestMemoryStore_PruneExpiredBuckets(t *testing.T) {
	store, clock := newTestStore(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < maxBuckets; i++ {
		store.Hit(fmt.Sprintf("view:%d", i), 10, time.Minute)
	}

	*clock = clock.Add(2 * time.Minute)
	store.Hit("view:fresh", 10, time.Minute)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Less(t, len(store.buckets), maxBuckets)
}
