// Package observability defines the Prometheus metrics exported by the
// master and helper processes.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Search Metrics ─────────────────────────────────────────────────────────

// RoundsTotal counts completed selector rounds.
var RoundsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tasbot",
	Subsystem: "search",
	Name:      "rounds_total",
	Help:      "Total selector rounds completed.",
})

// CommitsTotal counts committed inputs.
var CommitsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tasbot",
	Subsystem: "search",
	Name:      "commits_total",
	Help:      "Total inputs committed to the movie.",
})

// MovieLength tracks the current movie length.
var MovieLength = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "tasbot",
	Subsystem: "search",
	Name:      "movie_length",
	Help:      "Current number of committed inputs.",
})

// RoundScore tracks the winning round score of the latest round.
var RoundScore = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "tasbot",
	Subsystem: "search",
	Name:      "round_score",
	Help:      "Winning round score of the most recent round.",
})

// NormalizedValue tracks the normalized objective value after the
// latest commit.
var NormalizedValue = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "tasbot",
	Subsystem: "search",
	Name:      "normalized_value",
	Help:      "Normalized objective value in [0,1] after the latest commit.",
})

// FuturesDropped counts futures culled from the pool.
var FuturesDropped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tasbot",
	Subsystem: "search",
	Name:      "futures_dropped_total",
	Help:      "Total futures dropped from the pool.",
})

// ─── Backtrack Metrics ──────────────────────────────────────────────────────

// BacktracksAttempted counts backtrack attempts by outcome.
var BacktracksAttempted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tasbot",
	Subsystem: "backtrack",
	Name:      "attempts_total",
	Help:      "Total backtrack attempts by outcome.",
}, []string{"outcome"})

// ─── Dispatch Metrics ───────────────────────────────────────────────────────

// DispatchRequests counts dispatched work requests by kind.
var DispatchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tasbot",
	Subsystem: "dispatch",
	Name:      "requests_total",
	Help:      "Total work requests dispatched by kind.",
}, []string{"kind"})

// DispatchRetries counts per-worker retry attempts.
var DispatchRetries = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tasbot",
	Subsystem: "dispatch",
	Name:      "retries_total",
	Help:      "Total retried worker exchanges.",
})

// DispatchFailovers counts requests moved to another worker.
var DispatchFailovers = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tasbot",
	Subsystem: "dispatch",
	Name:      "failovers_total",
	Help:      "Total requests failed over to another worker.",
})

// ─── Cache Metrics ──────────────────────────────────────────────────────────

// StepCacheHits counts step cache hits by tier.
var StepCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tasbot",
	Subsystem: "stepcache",
	Name:      "hits_total",
	Help:      "Total step cache hits by tier.",
}, []string{"tier"})

// StepCacheMisses counts step cache misses.
var StepCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tasbot",
	Subsystem: "stepcache",
	Name:      "misses_total",
	Help:      "Total step cache misses.",
})

// WorkerCacheHits counts worker response cache hits.
var WorkerCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tasbot",
	Subsystem: "worker",
	Name:      "cache_hits_total",
	Help:      "Total worker response cache hits.",
})

// WorkerCacheMisses counts worker response cache misses.
var WorkerCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tasbot",
	Subsystem: "worker",
	Name:      "cache_misses_total",
	Help:      "Total worker response cache misses.",
})

// WorkerRequests counts requests served by this worker, by kind.
var WorkerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tasbot",
	Subsystem: "worker",
	Name:      "requests_total",
	Help:      "Total requests served by kind.",
}, []string{"kind"})
