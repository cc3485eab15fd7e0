package shard

import "hash/fnv"

/*
This file decides HOW a cache key is assigned to a shard.
If every request went to the same shard, that shard would become a bottleneck.
*/

/*
Selector decides which shard should handle a given key.
The cache does not care HOW this decision is made.
*/
type Selector[V any] interface {
	Select(string, []*Shard[V]) *Shard[V]
}

// HashSelector spreads keys with FNV-1a modulo the shard count.
// The same key always lands on the same shard.
type HashSelector[V any] struct{}

// hash converts a string key into a number. FNV is a fast, non-cryptographic hash.
func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// Select chooses the shard for a given key.
func (HashSelector[V]) Select(key string, shards []*Shard[V]) *Shard[V] {
	idx := hash(key) % uint32(len(shards))
	return shards[idx]
}
