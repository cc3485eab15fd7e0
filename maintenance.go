package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/krisalay/metadata-cache/engine"
	"github.com/krisalay/metadata-cache/stats"
	"github.com/krisalay/metadata-cache/types"
)

// Report is what the periodic stats report logs.
type Report struct {
	Stats           stats.Snapshot
	Size            int
	Recommendations []string
}

/*
StartMaintenance launches two background tasks:
  - sweep:  every sweep interval, remove expired entries
  - report: every report interval, log statistics and tuning advice

Calling it while maintenance is running does nothing. Both tasks stop when ctx
is cancelled or StopMaintenance is called. A stopped scheduler, including one
whose ctx was cancelled, can be started again.
*/
func (c *Cache[V]) StartMaintenance(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		if c.maintCtx.Err() == nil {
			return
		}
		// the parent context ended; reap the old tasks before starting over
		c.cancel()
		c.wg.Wait()
		c.cancel, c.maintCtx = nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel, c.maintCtx = cancel, ctx

	c.wg.Add(2)
	go c.every(ctx, "sweep", c.sweepInterval, func() { c.Sweep() })
	go c.every(ctx, "report", c.reportInterval, c.logReport)

	c.engine.Logger.Debug("cache maintenance started",
		slog.Duration("sweep_interval", c.sweepInterval),
		slog.Duration("report_interval", c.reportInterval))
}

// StopMaintenance stops the background tasks and waits for them to exit.
// It is safe to call when maintenance is not running.
func (c *Cache[V]) StopMaintenance() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel == nil {
		return
	}

	c.cancel()
	c.wg.Wait()
	c.cancel, c.maintCtx = nil, nil

	c.engine.Logger.Debug("cache maintenance stopped")
}

// every runs task on each tick until ctx is done.
func (c *Cache[V]) every(ctx context.Context, name string, interval time.Duration, task func()) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runTask(name, task)
		}
	}
}

// runTask keeps a panicking task from taking the process down.
// Maintenance is best-effort; the request path never depends on it.
func (c *Cache[V]) runTask(name string, task func()) {
	defer func() {
		if r := recover(); r != nil {
			c.engine.Logger.Error("cache maintenance task panicked",
				slog.String("task", name),
				slog.Any("panic", r))
		}
	}()
	task()
}

// Sweep removes every expired entry and returns how many were removed.
func (c *Cache[V]) Sweep() int {
	removed := 0
	for _, sh := range c.shards {
		removed += sh.DeleteFunc(func(ent *types.CacheEntry[V]) bool {
			return engine.IsExpired(c.engine, ent)
		})
	}

	size := c.Size()
	c.engine.OnExpire(removed)
	c.engine.OnSize(size)

	level := slog.LevelDebug
	if removed > 0 {
		level = slog.LevelInfo
	}
	c.engine.Logger.Log(context.Background(), level, "cache sweep finished",
		slog.Int("removed", removed),
		slog.Int("size", size))

	return removed
}

// Report builds the current statistics report.
func (c *Cache[V]) Report() Report {
	snap := c.Stats()
	size := c.Size()
	return Report{
		Stats:           snap,
		Size:            size,
		Recommendations: stats.Recommend(snap, size, c.thresholds),
	}
}

func (c *Cache[V]) logReport() {
	r := c.Report()

	c.engine.Logger.Info("cache statistics",
		slog.Any("stats", r.Stats),
		slog.Int("size", r.Size))

	for _, rec := range r.Recommendations {
		c.engine.Logger.Warn("cache recommendation", slog.String("advice", rec))
	}
}
