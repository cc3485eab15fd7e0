package shard

import (
	"sync"

	"github.com/krisalay/metadata-cache/types"
)

/*
A Shard is a small, independent piece of the cache store.

Instead of one big map behind one big lock, entries are spread over several
shards. Each shard:
- Holds some portion of the entries
- Has its own read/write lock

Requests for keys that land on different shards never contend.
*/
type Shard[V any] struct {
	mu sync.RWMutex

	// items maps the encoded CacheKey to its entry.
	items map[string]*types.CacheEntry[V]
}

func NewShard[V any]() *Shard[V] {
	return &Shard[V]{items: make(map[string]*types.CacheEntry[V])}
}

// New builds n shards. n < 1 is treated as 1.
func New[V any](n int) []*Shard[V] {
	if n < 1 {
		n = 1
	}
	s := make([]*Shard[V], n)
	for i := range s {
		s[i] = NewShard[V]()
	}
	return s
}
