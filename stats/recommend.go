package stats

import (
	"fmt"
	"time"
)

// Thresholds tune when Recommend emits advice.
type Thresholds struct {
	// MinHitRate below which a longer TTL is suggested.
	MinHitRate float64

	// MaxAvgGeneration above which the generators are flagged as slow.
	MaxAvgGeneration time.Duration

	// HighTraffic is the request count considered "busy"; together with
	// SmallCache it flags a cache that is too small for its traffic.
	HighTraffic uint64
	SmallCache  int
}

// DefaultThresholds returns the thresholds used by the stats report.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinHitRate:       0.70,
		MaxAvgGeneration: 100 * time.Millisecond,
		HighTraffic:      1000,
		SmallCache:       50,
	}
}

// Recommend returns human-readable tuning advice for the given snapshot and
// current cache size. It returns nil when nothing stands out.
func Recommend(s Snapshot, size int, t Thresholds) []string {
	var out []string

	if s.TotalRequests > 0 && s.HitRate < t.MinHitRate {
		out = append(out, fmt.Sprintf(
			"hit rate %.1f%% is below %.0f%%: consider raising TTLs",
			s.HitRatePercent(), t.MinHitRate*100))
	}

	if s.Samples > 0 && s.AvgGenerationTime > t.MaxAvgGeneration {
		out = append(out, fmt.Sprintf(
			"average generation time %s is above %s: optimize metadata generators",
			s.AvgGenerationTime, t.MaxAvgGeneration))
	}

	if s.TotalRequests > t.HighTraffic && size < t.SmallCache {
		out = append(out, fmt.Sprintf(
			"%d requests but only %d cached entries: consider longer TTLs or pre-warming",
			s.TotalRequests, size))
	}

	return out
}
