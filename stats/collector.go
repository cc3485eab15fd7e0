// Package stats accumulates hit, miss and generation-latency statistics for
// the metadata cache.
package stats

import (
	"sync"
	"time"
)

// DefaultWindow is how many generation durations the rolling average covers.
const DefaultWindow = 100

/*
Collector keeps running counters and a bounded FIFO window of generation
durations. All methods are safe for concurrent use.

The window is a ring buffer: once it holds `window` samples, each new sample
overwrites the oldest one, and the running sum is adjusted so the average is
O(1) to read.
*/
type Collector struct {
	mu sync.Mutex

	hits        uint64
	misses      uint64
	generations uint64
	failures    uint64

	samples []time.Duration
	next    int // slot the next sample is written to
	count   int // valid samples, <= len(samples)
	sum     time.Duration
}

// NewCollector creates a collector whose latency window holds `window`
// samples. window < 1 falls back to DefaultWindow.
func NewCollector(window int) *Collector {
	if window < 1 {
		window = DefaultWindow
	}
	return &Collector{samples: make([]time.Duration, window)}
}

// Hit records a request served from the cache.
func (c *Collector) Hit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

// Miss records a request that was not served from the cache.
func (c *Collector) Miss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}

// Generated records a successful generation and appends d to the window.
func (c *Collector) Generated(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations++

	if c.count == len(c.samples) {
		// Window full: the slot at next holds the oldest sample.
		c.sum -= c.samples[c.next]
	} else {
		c.count++
	}
	c.samples[c.next] = d
	c.sum += d
	c.next = (c.next + 1) % len(c.samples)
}

// Failed records a generation that returned an error.
// Failed runs do not contribute to the latency window.
func (c *Collector) Failed() {
	c.mu.Lock()
	c.failures++
	c.mu.Unlock()
}

// Reset zeroes every counter and empties the window.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hits, c.misses, c.generations, c.failures = 0, 0, 0, 0
	clear(c.samples)
	c.next, c.count, c.sum = 0, 0, 0
}

// Snapshot returns a point-in-time copy of the statistics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Hits:          c.hits,
		Misses:        c.misses,
		TotalRequests: c.hits + c.misses,
		Generations:   c.generations,
		Failures:      c.failures,
		Samples:       c.count,
	}
	if s.TotalRequests > 0 {
		s.HitRate = float64(c.hits) / float64(s.TotalRequests)
	}
	if c.count > 0 {
		s.AvgGenerationTime = c.sum / time.Duration(c.count)
	}
	return s
}
