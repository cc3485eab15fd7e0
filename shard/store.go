package shard

import "github.com/krisalay/metadata-cache/types"

// This file holds the map operations of a shard. Every method takes the shard
// lock itself; callers never lock.

// Get returns the entry stored under key, expired or not.
func (s *Shard[V]) Get(key string) (*types.CacheEntry[V], bool) {
	s.mu.RLock()
	ent, ok := s.items[key]
	s.mu.RUnlock()
	return ent, ok
}

// Put inserts or replaces the entry under key.
func (s *Shard[V]) Put(key string, ent *types.CacheEntry[V]) {
	s.mu.Lock()
	s.items[key] = ent
	s.mu.Unlock()
}

// Delete removes key and reports whether it was present.
func (s *Shard[V]) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return false
	}
	delete(s.items, key)
	return true
}

/*
CompareAndDelete removes key only if it still maps to ent.

A reader that found an expired entry uses this to drop it. If a writer stored
a fresh entry in between, the fresh one is left alone.
*/
func (s *Shard[V]) CompareAndDelete(key string, ent *types.CacheEntry[V]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.items[key]; !ok || cur != ent {
		return false
	}
	delete(s.items, key)
	return true
}

// DeleteFunc removes every entry for which match returns true and
// returns how many were removed. match runs under the shard write lock.
func (s *Shard[V]) DeleteFunc(match func(*types.CacheEntry[V]) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, ent := range s.items {
		if match(ent) {
			delete(s.items, k)
			removed++
		}
	}
	return removed
}

// Clear drops every entry in the shard.
func (s *Shard[V]) Clear() {
	s.mu.Lock()
	s.items = make(map[string]*types.CacheEntry[V])
	s.mu.Unlock()
}

// Size counts stored entries, including expired ones not yet removed.
func (s *Shard[V]) Size() int {
	s.mu.RLock()
	n := len(s.items)
	s.mu.RUnlock()
	return n
}
