package types

import "time"

// This file defines how the cache reports what it is doing to an external sink.

/*
Metrics receives one call per cache event. The built-in statistics collector
is always fed; a Metrics sink is an optional extra (Prometheus, logs, ...).

Implementations must be safe for concurrent use and must not block: they are
called on the request path.
*/
type Metrics interface {

	// Hit is called when GetOrGenerate is served from the store.
	Hit(contentType string)

	// Miss is called when GetOrGenerate does not find a live entry.
	Miss(contentType string)

	// Generated is called after a generator succeeded.
	Generated(contentType string, d time.Duration)

	// GenerationFailed is called after a generator returned an error or panicked.
	GenerationFailed(contentType string)

	// Expire is called with the number of expired entries removed,
	// either lazily on read or by the background sweep.
	Expire(n int)

	// Size is called with the current number of stored entries.
	Size(n int)
}

// NoopMetrics ignores every event. It is the default sink.
type NoopMetrics struct{}

func (NoopMetrics) Hit(string)                      {}
func (NoopMetrics) Miss(string)                     {}
func (NoopMetrics) Generated(string, time.Duration) {}
func (NoopMetrics) GenerationFailed(string)         {}
func (NoopMetrics) Expire(int)                      {}
func (NoopMetrics) Size(int)                        {}
