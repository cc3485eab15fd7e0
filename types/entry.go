package types

import "time"

/*
CacheEntry is one stored piece of generated metadata.

Entries are never modified after they are handed to the store. A fresh
generation (or an explicit Set) always builds a new entry and replaces the old
one, so readers can hold an entry without locking.
*/
type CacheEntry[V any] struct {
	Key       CacheKey
	Value     V
	CreatedAt time.Time

	// TTL <= 0 means the entry is expired from the moment it is written.
	TTL time.Duration
}

// NewEntry stamps a new entry at now. Negative TTLs are clamped to zero.
func NewEntry[V any](key CacheKey, value V, ttl time.Duration, now time.Time) *CacheEntry[V] {
	if ttl < 0 {
		ttl = 0
	}
	return &CacheEntry[V]{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		TTL:       ttl,
	}
}

// IsExpiredAt reports whether now - CreatedAt >= TTL.
func (e *CacheEntry[V]) IsExpiredAt(now time.Time) bool {
	return now.Sub(e.CreatedAt) >= e.TTL
}

// ExpiresAt returns the instant the entry stops being served.
func (e *CacheEntry[V]) ExpiresAt() time.Time {
	return e.CreatedAt.Add(e.TTL)
}
