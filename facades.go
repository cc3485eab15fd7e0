package cache

import (
	"context"

	"github.com/krisalay/metadata-cache/expiration"
)

// Content types used by the built-in facades.
const (
	ContentService  = "service"
	ContentLocation = "location"
	ContentBlog     = "blog"
	ContentIndustry = "industry"
	ContentStatic   = "static"
)

/*
Facade fixes the content type and TTL tier for one category of pages, so a
renderer only passes an identifier and a generator. It holds no state of its
own.
*/
type Facade[V any] struct {
	cache       MetadataCache[V]
	contentType string
	tier        expiration.Tier
}

// NewFacade binds contentType and tier to c.
func NewFacade[V any](c MetadataCache[V], contentType string, tier expiration.Tier) Facade[V] {
	return Facade[V]{cache: c, contentType: contentType, tier: tier}
}

// ServiceMetadata caches service pages for the Service tier.
func ServiceMetadata[V any](c MetadataCache[V]) Facade[V] {
	return NewFacade(c, ContentService, expiration.Service)
}

// LocationMetadata caches location pages for the Location tier.
func LocationMetadata[V any](c MetadataCache[V]) Facade[V] {
	return NewFacade(c, ContentLocation, expiration.Location)
}

// BlogMetadata caches blog posts for the Blog tier.
func BlogMetadata[V any](c MetadataCache[V]) Facade[V] {
	return NewFacade(c, ContentBlog, expiration.Blog)
}

// IndustryMetadata caches industry pages. They list services, so they share
// the Service tier.
func IndustryMetadata[V any](c MetadataCache[V]) Facade[V] {
	return NewFacade(c, ContentIndustry, expiration.Service)
}

// StaticPageMetadata caches pages that only change on deploy.
func StaticPageMetadata[V any](c MetadataCache[V]) Facade[V] {
	return NewFacade(c, ContentStatic, expiration.Static)
}

// ContentType returns the bound content type.
func (f Facade[V]) ContentType() string { return f.contentType }

// Tier returns the bound TTL tier.
func (f Facade[V]) Tier() expiration.Tier { return f.tier }

// Get returns the metadata for identifier, generating it on a miss.
func (f Facade[V]) Get(ctx context.Context, identifier string, gen Generator[V]) (V, error) {
	return f.cache.GetOrGenerate(ctx, NewKey(f.contentType, identifier), f.tier.TTL, gen)
}

// GetVariant is Get for one variant (e.g. a locale) of identifier.
func (f Facade[V]) GetVariant(ctx context.Context, identifier, variant string, gen Generator[V]) (V, error) {
	key := NewKey(f.contentType, identifier).WithVariant(variant)
	return f.cache.GetOrGenerate(ctx, key, f.tier.TTL, gen)
}

// Invalidate removes identifier and all of its variants.
func (f Facade[V]) Invalidate(identifier string) int {
	return f.cache.DeleteWhere(func(k Key) bool {
		return k.ContentType == f.contentType && k.Identifier == identifier
	})
}

// InvalidateAll removes every entry of the bound content type.
func (f Facade[V]) InvalidateAll() int {
	return f.cache.DeleteByType(f.contentType)
}
