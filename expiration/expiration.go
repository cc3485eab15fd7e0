// This file defines how cache entries expire over time.

package expiration

import "time"

/*
Strategy decides whether an entry written at createdAt with the given ttl is
still servable at now. The cache asks the strategy instead of comparing
timestamps itself, so expiry rules stay in one place.
*/
type Strategy interface {
	IsExpired(createdAt time.Time, ttl time.Duration, now time.Time) bool
}

/*
FixedTTL expires an entry exactly ttl after it was written. Reads do not extend
the lifetime: a page's metadata is regenerated on schedule no matter how hot it
is.

A ttl of zero or less expires the entry immediately, which is how the NoCache
tier disables caching.
*/
type FixedTTL struct{}

// IsExpired reports whether now - createdAt >= ttl.
func (FixedTTL) IsExpired(createdAt time.Time, ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return true
	}
	return now.Sub(createdAt) >= ttl
}

// Normalize clamps negative TTLs to zero.
func Normalize(ttl time.Duration) time.Duration {
	if ttl < 0 {
		return 0
	}
	return ttl
}
