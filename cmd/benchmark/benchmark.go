package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	cache "github.com/krisalay/metadata-cache"
)

// ================= BENCHMARK =================

// Simulates a cold start: every goroutine renders pages from the same small
// set of routes at once, so most requests race on unpopulated keys.
func main() {
	ctx := context.Background()

	fmt.Println("\n================ CACHE STAMPEDE BENCHMARK =================")

	// ---------------- Cache Config ----------------
	const (
		shards      = 16
		routes      = 500
		goroutines  = 200
		opsPerG     = 5000
		genCost     = 2 * time.Millisecond
		locationTTL = time.Minute
	)

	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Shards        :", shards)
	fmt.Println("Routes        :", routes)
	fmt.Println("Goroutines    :", goroutines)
	fmt.Println("Ops/Goroutine :", opsPerG)
	fmt.Println("Generator cost:", genCost)
	fmt.Println("---------------------------------")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	c := cache.New[string](cache.WithShards(shards), cache.WithLogger(logger))
	defer c.Close()

	var generated atomic.Int64
	gen := func(slug string) cache.Generator[string] {
		return func(context.Context) (string, error) {
			generated.Add(1)
			time.Sleep(genCost)
			return "Commercial Cleaning in " + slug, nil
		}
	}

	// ---------------- Load Test ----------------
	fmt.Println("Running concurrency benchmark...")
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < goroutines; i++ {
		g.Go(func() error {
			for j := 0; j < opsPerG; j++ {
				slug := fmt.Sprintf("city-%d", j%routes)
				key := cache.NewKey(cache.ContentLocation, slug)
				if _, err := c.GetOrGenerate(gctx, key, locationTTL, gen(slug)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Println("benchmark failed:", err)
		os.Exit(1)
	}

	duration := time.Since(start)
	totalOps := goroutines * opsPerG
	s := c.Stats()

	fmt.Println("\n================ RESULTS =================")
	fmt.Printf("Total Operations : %d\n", totalOps)
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	fmt.Printf("Generator runs   : %d (routes: %d)\n", generated.Load(), routes)
	fmt.Printf("Hit rate         : %.2f%%\n", s.HitRatePercent())
	fmt.Printf("Avg generation   : %s\n", s.AvgGenerationTime)
	fmt.Println("=========================================")
}
