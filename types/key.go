package types

import "strings"

// KeySeparator joins the parts of an encoded CacheKey.
const KeySeparator = ':'

const keyEscape = '\\'

/*
CacheKey identifies one cached metadata instance.

  - ContentType groups a class of content ("location", "service", "blog", ...)
  - Identifier names one instance of it, usually a slug
  - Variant disambiguates sub-variants of the same identifier, e.g. a locale.
    An empty Variant means "no variant".
*/
type CacheKey struct {
	ContentType string
	Identifier  string
	Variant     string
}

// NewKey builds a key without a variant.
func NewKey(contentType, identifier string) CacheKey {
	return CacheKey{ContentType: contentType, Identifier: identifier}
}

// WithVariant returns a copy of k with the variant set.
func (k CacheKey) WithVariant(variant string) CacheKey {
	k.Variant = variant
	return k
}

/*
String encodes the key as "type:identifier" or "type:identifier:variant".

Backslashes and separators inside a part are escaped with a backslash, so a
separator in the encoded form is always a part boundary. Two different keys can
never produce the same string.
*/
func (k CacheKey) String() string {
	var b strings.Builder
	b.Grow(len(k.ContentType) + len(k.Identifier) + len(k.Variant) + 2)

	writeKeyPart(&b, k.ContentType)
	b.WriteByte(KeySeparator)
	writeKeyPart(&b, k.Identifier)
	if k.Variant != "" {
		b.WriteByte(KeySeparator)
		writeKeyPart(&b, k.Variant)
	}
	return b.String()
}

func writeKeyPart(b *strings.Builder, part string) {
	for i := 0; i < len(part); i++ {
		c := part[i]
		if c == KeySeparator || c == keyEscape {
			b.WriteByte(keyEscape)
		}
		b.WriteByte(c)
	}
}
