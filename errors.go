package cache

import "github.com/krisalay/metadata-cache/types"

// ErrGenerationFailed matches, via errors.Is, every error caused by a failing generator.
var ErrGenerationFailed = types.ErrGenerationFailed

// GenerationError carries the key and the generator's own error.
type GenerationError = types.GenerationError

// Key identifies a cached metadata instance; see types.CacheKey.
type Key = types.CacheKey

// Generator computes metadata on a cache miss; see types.Generator.
type Generator[V any] = types.Generator[V]

// NewKey builds a key without a variant.
func NewKey(contentType, identifier string) Key {
	return types.NewKey(contentType, identifier)
}
