package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/krisalay/metadata-cache/expiration"
	"github.com/krisalay/metadata-cache/stats"
	"github.com/krisalay/metadata-cache/types"
)

/*
CacheEngine is the "brain" of the cache system.
It is responsible for the behavior of the cache, NOT storage.

It decides:
- When an entry is expired
- How a generator is run and timed
- How events are recorded (statistics collector + optional metrics sink)

It does NOT:
- Store data
- Handle sharding
- Handle locking
- Coalesce concurrent generations
*/
type CacheEngine struct {

	// Expiration decides when an entry is too old to serve.
	Expiration expiration.Strategy

	// Stats is the always-on statistics collector behind Cache.Stats.
	Stats *stats.Collector

	// Metrics is an optional external sink (Prometheus, ...).
	Metrics types.Metrics

	Logger *slog.Logger

	// Clock returns the current time. Tests replace it to control expiry.
	Clock func() time.Time
}

/*
NewCacheEngine creates a CacheEngine. Nil arguments are replaced by
defaults: FixedTTL expiration, NoopMetrics, slog.Default() and time.Now.
*/
func NewCacheEngine(
	exp expiration.Strategy,
	collector *stats.Collector,
	metrics types.Metrics,
	logger *slog.Logger,
	clock func() time.Time,
) *CacheEngine {
	if exp == nil {
		exp = expiration.FixedTTL{}
	}
	if collector == nil {
		collector = stats.NewCollector(stats.DefaultWindow)
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = time.Now
	}

	return &CacheEngine{
		Expiration: exp,
		Stats:      collector,
		Metrics:    metrics,
		Logger:     logger,
		Clock:      clock,
	}
}

// Now returns the engine's notion of the current time.
func (e *CacheEngine) Now() time.Time {
	return e.Clock()
}

// IsExpired delegates to the configured Expiration strategy.
func IsExpired[V any](e *CacheEngine, ent *types.CacheEntry[V]) bool {
	return e.Expiration.IsExpired(ent.CreatedAt, ent.TTL, e.Now())
}

// OnHit records a request served from the store.
func (e *CacheEngine) OnHit(key types.CacheKey) {
	e.Stats.Hit()
	e.Metrics.Hit(key.ContentType)
}

// OnMiss records a request that has to wait for a generation.
func (e *CacheEngine) OnMiss(key types.CacheKey) {
	e.Stats.Miss()
	e.Metrics.Miss(key.ContentType)
}

// OnExpire records n expired entries being removed.
func (e *CacheEngine) OnExpire(n int) {
	if n > 0 {
		e.Metrics.Expire(n)
	}
}

// OnSize publishes the current entry count to the metrics sink.
func (e *CacheEngine) OnSize(n int) {
	e.Metrics.Size(n)
}

/*
Generate runs gen once for key and records the outcome.

BEHAVIOR:
---------
- Measures wall-clock duration of the generator
- On success: feeds the duration into the rolling window
- On error or panic: counts a failure and returns a *types.GenerationError
  wrapping the cause

The caller decides whether and where the value is stored.
*/
func Generate[V any](
	ctx context.Context,
	e *CacheEngine,
	key types.CacheKey,
	gen types.Generator[V],
) (v V, err error) {
	start := time.Now()

	defer func() {
		d := time.Since(start)

		if r := recover(); r != nil {
			e.Logger.Error("metadata generator panicked",
				slog.String("key", key.String()),
				slog.Any("panic", r))
			err = fmt.Errorf("generator panicked: %v", r)
		}

		if err != nil {
			var zero V
			v = zero
			e.Stats.Failed()
			e.Metrics.GenerationFailed(key.ContentType)
			err = &types.GenerationError{Key: key, Err: err}
			return
		}

		e.Stats.Generated(d)
		e.Metrics.Generated(key.ContentType, d)
	}()

	return gen(ctx)
}
