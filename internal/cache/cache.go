// Package cache provides a tag-indexed store for backend query results.
// Entries are grouped by tag; invalidating a tag retires every entry under
// it at once. Invalidation bumps a per-tag generation counter instead of
// walking the entries, so it stays O(1); stale entries are evicted lazily
// on their next lookup.
package cache

import (
	"sync"
	"time"
)

type entryKey struct {
	tag string
	key string
}

type entry struct {
	value    any
	gen      uint64
	storedAt time.Time
}

// Store is a tag-indexed cache safe for concurrent use. A single mutex
// guards both maps, so every operation observes a consistent snapshot
// and invalidation is total: after Invalidate returns, no Get can serve
// an entry stored before it.
type Store struct {
	mu      sync.Mutex
	gens    map[string]uint64
	entries map[entryKey]entry
}

// New creates an empty store
func New() *Store {
	return &Store{
		gens:    make(map[string]uint64),
		entries: make(map[entryKey]entry),
	}
}

// Get returns the cached value for (tag, key). ok is false on a miss,
// including entries retired by a later Invalidate.
func (s *Store) Get(tag, key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := entryKey{tag: tag, key: key}
	e, ok := s.entries[k]
	if !ok {
		return nil, false
	}
	if e.gen < s.gens[tag] {
		delete(s.entries, k)
		return nil, false
	}
	return e.value, true
}

// Put stores value under (tag, key) at the tag's current generation,
// replacing any previous entry for the same key
func (s *Store) Put(tag, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entryKey{tag: tag, key: key}] = entry{
		value:    value,
		gen:      s.gens[tag],
		storedAt: time.Now(),
	}
}

// Invalidate retires every entry stored under tag. Entries written after
// the call belong to the new generation and are served normally.
func (s *Store) Invalidate(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gens[tag]++
}

// Len reports how many entries are resident, stale ones included
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
