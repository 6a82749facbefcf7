package repository

import (
	"sync"
	"time"
)

// entry pairs a cached payload with the wall-clock instant it was
// stored. Entries are immutable; replacing a slot means constructing a
// new entry, never mutating the old one. Freshness is computed at read
// time and never stored.
type entry[T any] struct {
	value    T
	storedAt time.Time
}

func (e *entry[T]) fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.storedAt) < ttl
}

// singletonSlot caches at most one value. Safe for concurrent use.
type singletonSlot[T any] struct {
	mu sync.RWMutex
	e  *entry[T]
}

func (s *singletonSlot[T]) get(now time.Time, ttl time.Duration) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.e == nil || !s.e.fresh(now, ttl) {
		var zero T
		return zero, false
	}
	return s.e.value, true
}

func (s *singletonSlot[T]) put(value T, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.e = &entry[T]{value: value, storedAt: now}
}

func (s *singletonSlot[T]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.e = nil
}

// keyedSlot caches one value per resource identifier. Absence means
// "not cached". Expired entries are not evicted on read; they stay in
// the map until overwritten or the slot is cleared, which keeps lookup
// O(1) without a background sweeper.
type keyedSlot[T any] struct {
	mu sync.RWMutex
	m  map[string]*entry[T]
}

func newKeyedSlot[T any]() *keyedSlot[T] {
	return &keyedSlot[T]{m: make(map[string]*entry[T])}
}

func (s *keyedSlot[T]) get(key string, now time.Time, ttl time.Duration) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m[key]
	if !ok || !e.fresh(now, ttl) {
		var zero T
		return zero, false
	}
	return e.value, true
}

func (s *keyedSlot[T]) put(key string, value T, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = &entry[T]{value: value, storedAt: now}
}

func (s *keyedSlot[T]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[string]*entry[T])
}

// len reports the number of entries, fresh or stale. Used by tests.
func (s *keyedSlot[T]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
