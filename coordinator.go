package cache

import (
	"context"
	"time"

	"github.com/krisalay/metadata-cache/engine"
)

/*
GetOrGenerate returns the metadata for key, running gen on a miss.

FLOW:
-----
1. Store hit  → record hit, return the stored value. gen is not called.
2. Store miss → record miss, then join the in-flight generation for this key
   or start one:
   - re-check the store (another generation may have finished meanwhile)
   - run gen, timing it
   - store the result with ttl
3. singleflight drops the in-flight slot when the generation returns, on
   success and on failure, so a failed key can be retried by the next call.

The generation runs on a context detached from the caller's cancellation: if
the caller that started it gives up, the other waiters still get the result.
A caller whose ctx is done stops waiting and gets ctx.Err().

Generator errors and panics are returned as *GenerationError, matching
ErrGenerationFailed. They are never cached.
*/
func (c *Cache[V]) GetOrGenerate(
	ctx context.Context,
	key Key,
	ttl time.Duration,
	gen Generator[V],
) (V, error) {
	k := key.String()

	if ent, ok := c.lookup(k); ok {
		c.engine.OnHit(key)
		return ent.Value, nil
	}

	c.engine.OnMiss(key)

	genCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(k, func() (any, error) {
		if ent, ok := c.lookup(k); ok {
			return ent.Value, nil
		}

		v, err := engine.Generate(genCtx, c.engine, key, gen)
		if err != nil {
			return nil, err
		}

		c.Set(key, v, ttl)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return v, nil

	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}
