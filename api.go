package cache

import (
	"context"
	"time"

	"github.com/krisalay/metadata-cache/stats"
)

/*
MetadataCache is the public contract of the metadata generation cache.
Sharding, expiry, statistics and request coalescing are hidden behind it.

*Cache[V] is the implementation; facades and host code should depend on this
interface.
*/
type MetadataCache[V any] interface {

	/*
		GetOrGenerate returns the metadata for key, generating it on a miss.

		BEHAVIOR:
		-------------------
		1. If the key is stored and NOT expired:
		   - Return the stored value; gen is not called (cache hit)

		2. Otherwise (cache miss):
		   - If a generation for the same key is already running, wait for it
		   - Else run gen, store its result with ttl, return it

		A failing gen is never cached: every waiter receives the same
		*GenerationError and the next call tries again.

		The returned value is the stored one, not a copy. Callers must treat
		it as immutable; use value types or never mutate what gen returns.
	*/
	GetOrGenerate(ctx context.Context, key Key, ttl time.Duration, gen Generator[V]) (V, error)

	// Get returns a live entry's value. An expired entry is removed and reported absent.
	// As with GetOrGenerate, the value is shared with other readers and must not be mutated.
	Get(key Key) (V, bool)

	// Set stores value under key with ttl, replacing any previous entry.
	// ttl <= 0 stores an entry that is already expired.
	Set(key Key, value V, ttl time.Duration)

	/*
		Delete removes one key immediately.

		This operation is idempotent:
		- Removing a non-existing key is safe and returns false
	*/
	Delete(key Key) bool

	// DeleteByType removes every entry whose ContentType equals contentType.
	DeleteByType(contentType string) int

	// DeleteWhere removes every entry whose key satisfies match.
	DeleteWhere(match func(Key) bool) int

	// Clear removes all entries and resets the statistics.
	Clear()

	// Size counts stored entries, including expired ones not yet swept.
	Size() int

	// Stats returns a point-in-time copy of the statistics.
	Stats() stats.Snapshot

	/*
		StartMaintenance launches the background sweep and stats report.
		StopMaintenance stops them and waits for them to exit.
		Both are idempotent.
	*/
	StartMaintenance(ctx context.Context)
	StopMaintenance()

	/*
		Close gracefully shuts down the cache.

		WHEN TO CALL:
		-------------
		- Application shutdown
		- Tests cleanup
	*/
	Close()
}

var _ MetadataCache[any] = (*Cache[any])(nil)
