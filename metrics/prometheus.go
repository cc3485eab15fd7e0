// Package metrics exports metadata cache events as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/krisalay/metadata-cache/types"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "metacache"

// Prometheus implements types.Metrics.
type Prometheus struct {
	hits        *prometheus.CounterVec
	misses      *prometheus.CounterVec
	generations *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	expired     prometheus.Counter
	entries     prometheus.Gauge
}

var _ types.Metrics = (*Prometheus)(nil)

// NewPrometheus creates the cache metrics and registers them with reg.
// Registering twice with the same registerer panics, as promauto does.
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	f := promauto.With(reg)
	labels := []string{"content_type"}

	return &Prometheus{
		hits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of metadata requests served from cache",
		}, labels),
		misses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of metadata requests not served from cache",
		}, labels),
		generations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "generations_total",
			Help:      "Total number of successful metadata generations",
		}, labels),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "generation_failures_total",
			Help:      "Total number of failed metadata generations",
		}, labels),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "generation_duration_seconds",
			Help:      "Metadata generation latency in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, labels),
		expired: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "expired_total",
			Help:      "Total number of expired entries removed",
		}),
		entries: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Number of stored entries, including expired ones not yet swept",
		}),
	}
}

func (p *Prometheus) Hit(contentType string) {
	p.hits.WithLabelValues(contentType).Inc()
}

func (p *Prometheus) Miss(contentType string) {
	p.misses.WithLabelValues(contentType).Inc()
}

func (p *Prometheus) Generated(contentType string, d time.Duration) {
	p.generations.WithLabelValues(contentType).Inc()
	p.duration.WithLabelValues(contentType).Observe(d.Seconds())
}

func (p *Prometheus) GenerationFailed(contentType string) {
	p.failures.WithLabelValues(contentType).Inc()
}

func (p *Prometheus) Expire(n int) {
	p.expired.Add(float64(n))
}

func (p *Prometheus) Size(n int) {
	p.entries.Set(float64(n))
}
