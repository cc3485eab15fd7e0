package types

import "context"

/*
Generator computes the metadata for one key when the cache does not have it.

It is the contract between the cache and whatever builds page metadata
(title and description formatting, keyword merging, structured data, ...).
The cache never looks inside the returned value.

A Generator may block. Only callers asking for the same key wait on it;
other keys keep being served.
*/
type Generator[V any] func(ctx context.Context) (V, error)
