package cache

import (
	"context"
	"sync"
	"time"

	"github.com/krisalay/metadata-cache/engine"
	"github.com/krisalay/metadata-cache/expiration"
	"github.com/krisalay/metadata-cache/shard"
	"github.com/krisalay/metadata-cache/stats"
	"github.com/krisalay/metadata-cache/types"
	"golang.org/x/sync/singleflight"
)

/*
Cache is the metadata generation cache.
This struct is the orchestrator that connects:
- shards (storage)
- engine (expiry, timing, statistics, metrics)
- singleflight (one in-flight generation per key)
- the maintenance scheduler

Create one per process with New and own its lifecycle explicitly:
StartMaintenance at boot, Close at shutdown.
*/
type Cache[V any] struct {
	// shards are the actual storage units. Each shard is an independent map with its own lock.
	shards []*shard.Shard[V]

	// selector decides which shard a key should go to.
	selector shard.Selector[V]

	// engine contains the rules of the cache: expiry, generation timing, statistics, metrics.
	engine *engine.CacheEngine

	// sf holds at most one in-flight generation per encoded key.
	sf singleflight.Group

	sweepInterval  time.Duration
	reportInterval time.Duration
	thresholds     stats.Thresholds

	// maintenance lifecycle
	mu       sync.Mutex
	cancel   context.CancelFunc
	maintCtx context.Context
	wg       sync.WaitGroup
}

// New creates a Cache. Background maintenance is not started; call
// StartMaintenance.
func New[V any](opts ...Option) *Cache[V] {
	o := applyOptions(opts...)

	eng := engine.NewCacheEngine(
		o.expiration,
		stats.NewCollector(o.window),
		o.metrics,
		o.logger,
		o.clock,
	)

	return &Cache[V]{
		shards:         shard.New[V](o.shards),
		selector:       shard.HashSelector[V]{},
		engine:         eng,
		sweepInterval:  o.sweepInterval,
		reportInterval: o.reportInterval,
		thresholds:     o.thresholds,
	}
}

/*
lookup finds a live entry for the encoded key k.

If the entry exists but has expired it is removed here, unless a writer has
replaced it in the meantime.
*/
func (c *Cache[V]) lookup(k string) (*types.CacheEntry[V], bool) {
	sh := c.selector.Select(k, c.shards)

	ent, ok := sh.Get(k)
	if !ok {
		return nil, false
	}

	if engine.IsExpired(c.engine, ent) {
		if sh.CompareAndDelete(k, ent) {
			c.engine.OnExpire(1)
			c.publishSize()
		}
		return nil, false
	}
	return ent, true
}

/*
Get retrieves a value from the cache without generating it.
Direct reads are not counted in the statistics; only GetOrGenerate is.
*/
func (c *Cache[V]) Get(key Key) (V, bool) {
	ent, ok := c.lookup(key.String())
	if !ok {
		var zero V
		return zero, false
	}
	return ent.Value, true
}

/*
Set stores a value with an explicit TTL, stamping it with the current time.
Negative TTLs are treated as zero.
*/
func (c *Cache[V]) Set(key Key, value V, ttl time.Duration) {
	k := key.String()
	ent := types.NewEntry(key, value, expiration.Normalize(ttl), c.engine.Now())
	c.selector.Select(k, c.shards).Put(k, ent)
	c.publishSize()
}

// Delete removes a key from the cache immediately.
func (c *Cache[V]) Delete(key Key) bool {
	k := key.String()
	if !c.selector.Select(k, c.shards).Delete(k) {
		return false
	}
	c.publishSize()
	return true
}

// DeleteByType removes every entry of one content type and returns how many
// were removed. Entries of other types are untouched.
func (c *Cache[V]) DeleteByType(contentType string) int {
	return c.DeleteWhere(func(k Key) bool {
		return k.ContentType == contentType
	})
}

// DeleteWhere removes every entry whose key satisfies match.
func (c *Cache[V]) DeleteWhere(match func(Key) bool) int {
	removed := 0
	for _, sh := range c.shards {
		removed += sh.DeleteFunc(func(ent *types.CacheEntry[V]) bool {
			return match(ent.Key)
		})
	}
	if removed > 0 {
		c.publishSize()
	}
	return removed
}

/*
Clear drops every entry and resets the statistics to zero.
Generations already in flight still complete and store their results.
*/
func (c *Cache[V]) Clear() {
	for _, sh := range c.shards {
		sh.Clear()
	}
	c.engine.Stats.Reset()
	c.engine.OnSize(0)
}

// Size returns the number of stored entries, expired ones included until
// they are read or swept.
func (c *Cache[V]) Size() int {
	n := 0
	for _, sh := range c.shards {
		n += sh.Size()
	}
	return n
}

// publishSize sends the current entry count to the metrics sink.
func (c *Cache[V]) publishSize() {
	c.engine.OnSize(c.Size())
}

// Stats returns a point-in-time copy of the statistics.
func (c *Cache[V]) Stats() stats.Snapshot {
	return c.engine.Stats.Snapshot()
}

/*
Close gracefully shuts down the cache by stopping background maintenance.
The stored entries stay readable.
*/
func (c *Cache[V]) Close() {
	c.StopMaintenance()
}
