package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cache "github.com/krisalay/metadata-cache"
	"github.com/krisalay/metadata-cache/config"
	"github.com/krisalay/metadata-cache/metrics"
)

// ================= PAGE METADATA =================

// PageMetadata is what the page renderer puts into <head>.
type PageMetadata struct {
	Title       string
	Description string
	Canonical   string
	Locale      string
}

// generations counts how often a generator actually ran.
var generations atomic.Int64

func locationGenerator(slug, locale string, cost time.Duration) cache.Generator[PageMetadata] {
	return func(ctx context.Context) (PageMetadata, error) {
		generations.Add(1)
		select {
		case <-time.After(cost):
		case <-ctx.Done():
			return PageMetadata{}, ctx.Err()
		}
		city := strings.ToUpper(slug[:1]) + slug[1:]
		return PageMetadata{
			Title:       fmt.Sprintf("Commercial Cleaning in %s | Acme Services", city),
			Description: fmt.Sprintf("Trusted commercial cleaning across %s. Free quotes within 24 hours.", city),
			Canonical:   "https://example.com/locations/" + slug,
			Locale:      locale,
		}, nil
	}
}

// ================= MAIN =================

func main() {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("METACACHE_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	fmt.Println("\n==================== SYSTEM BOOT ====================")
	fmt.Print("CONFIG", cfg)

	// ---------------- Metrics ----------------
	reg := prometheus.NewRegistry()
	sink := metrics.NewPrometheus(reg, cfg.MetricsNamespace)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", slog.Any("err", err))
			}
		}()
		defer srv.Close()
	}

	// ---------------- Cache ----------------
	c := cache.New[PageMetadata](cfg.CacheOptions(logger, sink)...)
	c.StartMaintenance(ctx)
	defer c.Close()

	locations := cache.LocationMetadata[PageMetadata](c)
	services := cache.ServiceMetadata[PageMetadata](c)

	// ====================================================
	fmt.Println("\n==================== 1) CACHE MISS ====================")
	m, _ := locations.Get(ctx, "toronto", locationGenerator("toronto", "en", 20*time.Millisecond))
	fmt.Println("CACHE  → location toronto =", m.Title)

	// ====================================================
	fmt.Println("\n==================== 2) CACHE HIT ====================")
	m, _ = locations.Get(ctx, "toronto", locationGenerator("toronto", "en", 20*time.Millisecond))
	fmt.Println("CACHE  → location toronto =", m.Title)
	fmt.Println("GENERATOR RUNS  :", generations.Load())

	// ====================================================
	fmt.Println("\n==================== 3) VARIANTS ====================")
	m, _ = locations.GetVariant(ctx, "montreal", "fr", locationGenerator("montreal", "fr", 5*time.Millisecond))
	fmt.Println("CACHE  → location montreal [fr] =", m.Canonical, m.Locale)

	// ====================================================
	fmt.Println("\n==================== 4) SINGLEFLIGHT ====================")
	before := generations.Load()
	wg := sync.WaitGroup{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			v, _ := locations.Get(ctx, "vancouver", locationGenerator("vancouver", "en", 50*time.Millisecond))
			if id < 3 {
				fmt.Printf("GOROUTINE-%d → %s\n", id, v.Title)
			}
		}(i)
	}
	wg.Wait()
	fmt.Println("GENERATOR RUNS FOR 20 CALLERS :", generations.Load()-before)

	// ====================================================
	fmt.Println("\n==================== 5) TTL EXPIRATION ====================")
	key := cache.NewKey(cache.ContentBlog, "launch-post")
	c.Set(key, PageMetadata{Title: "We launched"}, 100*time.Millisecond)
	_, ok := c.Get(key)
	fmt.Println("CACHE  → blog launch-post present =", ok)
	time.Sleep(150 * time.Millisecond)
	_, ok = c.Get(key)
	fmt.Println("CACHE  → blog launch-post present after TTL =", ok)

	// ====================================================
	fmt.Println("\n==================== 6) FAILED GENERATION ====================")
	_, err = services.Get(ctx, "window-cleaning", func(context.Context) (PageMetadata, error) {
		return PageMetadata{}, errors.New("service catalogue unavailable")
	})
	fmt.Println("CACHE  → failed generation:", err, "| is GenerationFailed:", errors.Is(err, cache.ErrGenerationFailed))

	// ====================================================
	fmt.Println("\n==================== 7) INVALIDATE ====================")
	fmt.Println("CACHE  → removed location entries =", locations.InvalidateAll())
	fmt.Println("CACHE  → size =", c.Size())

	// ====================================================
	fmt.Println("\n==================== STATISTICS ====================")
	r := c.Report()
	fmt.Printf("HITS      : %d\n", r.Stats.Hits)
	fmt.Printf("MISSES    : %d\n", r.Stats.Misses)
	fmt.Printf("HIT RATE  : %.2f%%\n", r.Stats.HitRatePercent())
	fmt.Printf("AVG GEN   : %s\n", r.Stats.AvgGenerationTime)
	fmt.Printf("FAILURES  : %d\n", r.Stats.Failures)
	for _, rec := range r.Recommendations {
		fmt.Println("ADVICE    :", rec)
	}

	// ====================================================
	fmt.Println("\n==================== SHUTDOWN ====================")
	c.Close()
	fmt.Println("SYSTEM → cache closed cleanly")
}
