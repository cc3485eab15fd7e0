package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cache "github.com/krisalay/metadata-cache"
	"github.com/krisalay/metadata-cache/expiration"
)

func newTestCache(t *testing.T, opts ...cache.Option) *cache.Cache[meta] {
	t.Helper()
	c := cache.New[meta](append([]cache.Option{cache.WithShards(4)}, opts...)...)
	t.Cleanup(c.Close)
	return c
}

// countingGenerator returns a generator that counts its runs.
func countingGenerator(calls *atomic.Int64, title string) cache.Generator[meta] {
	return func(context.Context) (meta, error) {
		calls.Add(1)
		return meta{Title: title}, nil
	}
}

//
// ================= STORE OPERATIONS =================
//

func TestSetThenGetReturnsStoredPayload(t *testing.T) {
	c := newTestCache(t)
	key := cache.NewKey("location", "toronto")

	c.Set(key, meta{Title: "T"}, time.Minute)

	v, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, meta{Title: "T"}, v)
	assert.Equal(t, 1, c.Size())
}

func TestGetMissingKey(t *testing.T) {
	c := newTestCache(t)

	v, ok := c.Get(cache.NewKey("location", "nowhere"))
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestSetReplacesEntry(t *testing.T) {
	c := newTestCache(t)
	key := cache.NewKey("service", "cleaning")

	c.Set(key, meta{Title: "v1"}, time.Minute)
	c.Set(key, meta{Title: "v2"}, time.Minute)

	v, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "v2", v.Title)
	assert.Equal(t, 1, c.Size())
}

func TestGetAfterTTLRemovesEntry(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, cache.WithClock(clock.Now))
	key := cache.NewKey("location", "toronto")

	c.Set(key, meta{Title: "T"}, time.Minute)
	clock.Advance(59 * time.Second)
	_, ok := c.Get(key)
	require.True(t, ok)

	clock.Advance(time.Second)
	assert.Equal(t, 1, c.Size(), "expired entries count until read or swept")

	_, ok = c.Get(key)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestZeroAndNegativeTTLAreImmediatelyExpired(t *testing.T) {
	c := newTestCache(t)

	for _, ttl := range []time.Duration{0, -time.Second} {
		key := cache.NewKey("blog", ttl.String())
		c.Set(key, meta{Title: "x"}, ttl)
		_, ok := c.Get(key)
		assert.False(t, ok, "ttl %s", ttl)
	}
}

func TestDelete(t *testing.T) {
	c := newTestCache(t)
	key := cache.NewKey("blog", "hello")

	c.Set(key, meta{}, time.Minute)
	assert.True(t, c.Delete(key))
	assert.False(t, c.Delete(key), "delete is idempotent")

	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestDeleteByTypeKeepsOtherTypes(t *testing.T) {
	c := newTestCache(t)

	c.Set(cache.NewKey("service", "cleaning"), meta{}, time.Minute)
	c.Set(cache.NewKey("service", "painting").WithVariant("fr"), meta{}, time.Minute)
	c.Set(cache.NewKey("location", "toronto"), meta{}, time.Minute)
	c.Set(cache.NewKey("location", "service"), meta{}, time.Minute)

	assert.Equal(t, 2, c.DeleteByType("service"))
	assert.Equal(t, 2, c.Size())

	_, ok := c.Get(cache.NewKey("location", "toronto"))
	assert.True(t, ok)
	_, ok = c.Get(cache.NewKey("location", "service"))
	assert.True(t, ok)
}

func TestVariantsAreDistinctEntries(t *testing.T) {
	c := newTestCache(t)
	base := cache.NewKey("location", "montreal")

	c.Set(base, meta{Title: "default"}, time.Minute)
	c.Set(base.WithVariant("fr"), meta{Title: "fr"}, time.Minute)

	v, _ := c.Get(base)
	assert.Equal(t, "default", v.Title)
	v, _ = c.Get(base.WithVariant("fr"))
	assert.Equal(t, "fr", v.Title)
}

func TestClearResetsSizeAndStats(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	var calls atomic.Int64

	for _, slug := range []string{"a", "b", "a"} {
		_, err := c.GetOrGenerate(ctx, cache.NewKey("location", slug), time.Minute, countingGenerator(&calls, slug))
		require.NoError(t, err)
	}
	require.Equal(t, 2, c.Size())
	require.Equal(t, uint64(3), c.Stats().TotalRequests)

	c.Clear()

	assert.Equal(t, 0, c.Size())
	s := c.Stats()
	assert.Zero(t, s.Hits)
	assert.Zero(t, s.Misses)
	assert.Zero(t, s.TotalRequests)
	assert.Zero(t, s.HitRate)
	assert.Zero(t, s.AvgGenerationTime)
	assert.Zero(t, s.Generations)
}

//
// ================= GENERATION =================
//

func TestGetOrGenerateRunsGeneratorOnce(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := cache.NewKey("location", "toronto")
	var calls atomic.Int64

	v1, err := c.GetOrGenerate(ctx, key, time.Minute, countingGenerator(&calls, "T"))
	require.NoError(t, err)
	v2, err := c.GetOrGenerate(ctx, key, time.Minute, countingGenerator(&calls, "other"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, "T", v1.Title)
	assert.Equal(t, v1, v2)
}

func TestHitRate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	var calls atomic.Int64

	_, _ = c.GetOrGenerate(ctx, cache.NewKey("service", "a"), time.Minute, countingGenerator(&calls, "a"))
	_, _ = c.GetOrGenerate(ctx, cache.NewKey("service", "a"), time.Minute, countingGenerator(&calls, "a"))
	_, _ = c.GetOrGenerate(ctx, cache.NewKey("service", "b"), time.Minute, countingGenerator(&calls, "b"))

	s := c.Stats()
	assert.Equal(t, uint64(1), s.Hits)
	assert.Equal(t, uint64(2), s.Misses)
	assert.Equal(t, uint64(3), s.TotalRequests)
	assert.InDelta(t, 1.0/3.0, s.HitRate, 0.01)
	assert.InDelta(t, 33.33, s.HitRatePercent(), 0.01)
	assert.Equal(t, uint64(2), s.Generations)
	assert.Equal(t, 2, s.Samples)
}

func TestHitRateIsZeroWithoutRequests(t *testing.T) {
	c := newTestCache(t)
	assert.Zero(t, c.Stats().HitRate)
}

func TestNoCacheTierAlwaysRegenerates(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := cache.NewKey("dynamic", "search")
	var calls atomic.Int64

	for i := 0; i < 3; i++ {
		_, err := c.GetOrGenerate(ctx, key, expiration.NoCache.TTL, countingGenerator(&calls, "x"))
		require.NoError(t, err)
	}

	assert.Equal(t, int64(3), calls.Load())
	s := c.Stats()
	assert.Equal(t, uint64(0), s.Hits)
	assert.Equal(t, uint64(3), s.Misses)
}

func TestNegativeTTLBehavesLikeNoCache(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := cache.NewKey("dynamic", "search")
	var calls atomic.Int64

	_, _ = c.GetOrGenerate(ctx, key, -time.Minute, countingGenerator(&calls, "x"))
	_, _ = c.GetOrGenerate(ctx, key, -time.Minute, countingGenerator(&calls, "x"))

	assert.Equal(t, int64(2), calls.Load())
}

func TestTorontoExpiryScenario(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := cache.NewKey("location", "toronto")
	var calls atomic.Int64

	_, err := c.GetOrGenerate(ctx, key, 100*time.Millisecond, countingGenerator(&calls, "T"))
	require.NoError(t, err)
	require.Equal(t, int64(1), calls.Load())

	v, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, meta{Title: "T"}, v)

	time.Sleep(150 * time.Millisecond)

	_, ok = c.Get(key)
	assert.False(t, ok)

	_, err = c.GetOrGenerate(ctx, key, 100*time.Millisecond, countingGenerator(&calls, "T"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

//
// ================= FAILURES =================
//

func TestGenerationFailedIsReturnedAndNotCached(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := cache.NewKey("service", "painting")
	cause := errors.New("catalogue unavailable")

	_, err := c.GetOrGenerate(ctx, key, time.Minute, func(context.Context) (meta, error) {
		return meta{}, cause
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, cache.ErrGenerationFailed)
	assert.ErrorIs(t, err, cause)

	var genErr *cache.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, key, genErr.Key)

	assert.Equal(t, 0, c.Size())
	assert.Equal(t, uint64(1), c.Stats().Failures)

	// the next call retries
	var calls atomic.Int64
	v, err := c.GetOrGenerate(ctx, key, time.Minute, countingGenerator(&calls, "ok"))
	require.NoError(t, err)
	assert.Equal(t, "ok", v.Title)
	assert.Equal(t, int64(1), calls.Load())
}

func TestGeneratorPanicBecomesGenerationError(t *testing.T) {
	c := newTestCache(t)
	key := cache.NewKey("blog", "broken")

	_, err := c.GetOrGenerate(context.Background(), key, time.Minute, func(context.Context) (meta, error) {
		panic("template exploded")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, cache.ErrGenerationFailed)
	assert.Contains(t, err.Error(), "template exploded")
}

//
// ================= CONCURRENCY =================
//

// waitForMisses blocks until n callers have registered their miss.
func waitForMisses(t *testing.T, c *cache.Cache[meta], n uint64) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.Stats().Misses >= n
	}, 2*time.Second, time.Millisecond)
	// give the last callers time to join the in-flight generation
	time.Sleep(20 * time.Millisecond)
}

func TestConcurrentCallersShareOneGeneration(t *testing.T) {
	const callers = 50

	c := newTestCache(t)
	ctx := context.Background()
	key := cache.NewKey("location", "vancouver")

	var calls atomic.Int64
	release := make(chan struct{})
	gen := func(context.Context) (meta, error) {
		calls.Add(1)
		<-release
		return meta{Title: "V"}, nil
	}

	results := make([]meta, callers)
	errs := make([]error, callers)
	wg := sync.WaitGroup{}
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrGenerate(ctx, key, time.Minute, gen)
		}(i)
	}

	waitForMisses(t, c, callers)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, meta{Title: "V"}, results[i])
	}
	assert.Equal(t, uint64(callers), c.Stats().Misses)
}

func TestConcurrentCallersShareOneFailure(t *testing.T) {
	const callers = 10

	c := newTestCache(t)
	ctx := context.Background()
	key := cache.NewKey("location", "calgary")

	var calls atomic.Int64
	release := make(chan struct{})
	gen := func(context.Context) (meta, error) {
		calls.Add(1)
		<-release
		return meta{}, errors.New("upstream timeout")
	}

	errs := make([]error, callers)
	wg := sync.WaitGroup{}
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.GetOrGenerate(ctx, key, time.Minute, gen)
		}(i)
	}

	waitForMisses(t, c, callers)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
	for _, err := range errs {
		assert.ErrorIs(t, err, cache.ErrGenerationFailed)
	}
	assert.Equal(t, 0, c.Size())
}

func TestDifferentKeysGenerateIndependently(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	release := make(chan struct{})
	slowDone := make(chan struct{})
	go func() {
		defer close(slowDone)
		_, _ = c.GetOrGenerate(ctx, cache.NewKey("location", "slow"), time.Minute, func(context.Context) (meta, error) {
			<-release
			return meta{Title: "slow"}, nil
		})
	}()

	waitForMisses(t, c, 1)

	var calls atomic.Int64
	v, err := c.GetOrGenerate(ctx, cache.NewKey("location", "fast"), time.Minute, countingGenerator(&calls, "fast"))
	require.NoError(t, err)
	assert.Equal(t, "fast", v.Title)

	close(release)
	<-slowDone
}

func TestWaiterCancellationLeavesGenerationRunning(t *testing.T) {
	c := newTestCache(t)
	key := cache.NewKey("blog", "long-read")

	release := make(chan struct{})
	var calls atomic.Int64
	gen := func(context.Context) (meta, error) {
		calls.Add(1)
		<-release
		return meta{Title: "done"}, nil
	}

	type result struct {
		v   meta
		err error
	}
	leader := make(chan result, 1)
	go func() {
		v, err := c.GetOrGenerate(context.Background(), key, time.Minute, gen)
		leader <- result{v, err}
	}()
	waitForMisses(t, c, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetOrGenerate(ctx, key, time.Minute, gen)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	r := <-leader
	require.NoError(t, r.err)
	assert.Equal(t, "done", r.v.Title)
	assert.Equal(t, int64(1), calls.Load())
}

func TestCancelledLeaderDoesNotFailOtherWaiters(t *testing.T) {
	c := newTestCache(t)
	key := cache.NewKey("blog", "shared")

	release := make(chan struct{})
	gen := func(ctx context.Context) (meta, error) {
		<-release
		if err := ctx.Err(); err != nil {
			return meta{}, err
		}
		return meta{Title: "shared"}, nil
	}

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrGenerate(leaderCtx, key, time.Minute, gen)
		leaderErr <- err
	}()
	waitForMisses(t, c, 1)

	waiter := make(chan meta, 1)
	go func() {
		v, _ := c.GetOrGenerate(context.Background(), key, time.Minute, gen)
		waiter <- v
	}()
	waitForMisses(t, c, 2)

	cancelLeader()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(release)
	assert.Equal(t, "shared", (<-waiter).Title)
}

func TestConcurrentMixedKeys(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	var calls atomic.Int64

	wg := sync.WaitGroup{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := cache.NewKey("location", string(rune('a'+j%5)))
				v, err := c.GetOrGenerate(ctx, key, time.Minute, countingGenerator(&calls, key.Identifier))
				if err != nil || v.Title != key.Identifier {
					t.Errorf("goroutine %d: got %v, %v", id, v, err)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(5), calls.Load())
	assert.Equal(t, uint64(2000), c.Stats().TotalRequests)
}
