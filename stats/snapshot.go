package stats

import (
	"log/slog"
	"time"
)

// Snapshot is an immutable copy of the cache statistics at one instant.
type Snapshot struct {
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	TotalRequests uint64 `json:"total_requests"`

	// HitRate is Hits / TotalRequests in [0, 1]; 0 when there were no requests.
	HitRate float64 `json:"hit_rate"`

	// AvgGenerationTime is the mean over the last Samples successful generations.
	AvgGenerationTime time.Duration `json:"avg_generation_time"`
	Samples           int           `json:"samples"`

	Generations uint64 `json:"generations"`
	Failures    uint64 `json:"failures"`
}

// HitRatePercent returns HitRate scaled to 0..100.
func (s Snapshot) HitRatePercent() float64 {
	return s.HitRate * 100
}

// LogValue implements slog.LogValuer.
func (s Snapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("hits", s.Hits),
		slog.Uint64("misses", s.Misses),
		slog.Uint64("total_requests", s.TotalRequests),
		slog.Float64("hit_rate", s.HitRate),
		slog.Duration("avg_generation_time", s.AvgGenerationTime),
		slog.Int("samples", s.Samples),
		slog.Uint64("generations", s.Generations),
		slog.Uint64("failures", s.Failures),
	)
}
