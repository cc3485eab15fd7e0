package cache

import (
	"log/slog"
	"time"

	"github.com/krisalay/metadata-cache/expiration"
	"github.com/krisalay/metadata-cache/stats"
	"github.com/krisalay/metadata-cache/types"
)

const (
	// DefaultShards is the number of store shards.
	DefaultShards = 16

	// DefaultSweepInterval is how often expired entries are swept.
	DefaultSweepInterval = 10 * time.Minute

	// DefaultReportInterval is how often statistics are reported.
	DefaultReportInterval = time.Hour
)

// Option configures a Cache using the functional options pattern.
type Option func(*options)

type options struct {
	shards         int
	window         int
	sweepInterval  time.Duration
	reportInterval time.Duration
	logger         *slog.Logger
	metrics        types.Metrics
	clock          func() time.Time
	expiration     expiration.Strategy
	thresholds     stats.Thresholds
}

func defaultOptions() *options {
	return &options{
		shards:         DefaultShards,
		window:         stats.DefaultWindow,
		sweepInterval:  DefaultSweepInterval,
		reportInterval: DefaultReportInterval,
		thresholds:     stats.DefaultThresholds(),
	}
}

// WithShards sets the number of store shards. n < 1 is ignored.
func WithShards(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.shards = n
		}
	}
}

// WithLatencyWindow sets how many generation durations the average covers.
// n < 1 is ignored.
func WithLatencyWindow(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.window = n
		}
	}
}

// WithSweepInterval sets how often the background sweep runs.
// Non-positive values are ignored.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.sweepInterval = d
		}
	}
}

// WithReportInterval sets how often the statistics report is logged.
// Non-positive values are ignored.
func WithReportInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.reportInterval = d
		}
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics sends cache events to an external sink in addition to the
// built-in statistics.
func WithMetrics(m types.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithExpiration replaces the FixedTTL expiry strategy.
func WithExpiration(s expiration.Strategy) Option {
	return func(o *options) {
		o.expiration = s
	}
}

// WithThresholds tunes the recommendations of the stats report.
func WithThresholds(t stats.Thresholds) Option {
	return func(o *options) {
		o.thresholds = t
	}
}

func applyOptions(opts ...Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
