// Package telemetry is waypoint's Prometheus metric registry: one counter
// or histogram per domain concern.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var IdempotencyOutcomesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "waypoint",
		Subsystem: "idempotency",
		Name:      "outcomes_total",
		Help:      "Count of idempotency engine outcomes by kind.",
	},
	[]string{"outcome", "mutation_type"},
)

var RevisionMismatchesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "waypoint",
		Subsystem: "revision",
		Name:      "mismatches_total",
		Help:      "Total number of optimistic-concurrency revision mismatches by entity.",
	},
	[]string{"entity"},
)

var EnrichmentJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "waypoint",
		Subsystem: "enrichment",
		Name:      "jobs_total",
		Help:      "Total number of enrichment worker jobs by terminal state.",
	},
	[]string{"state"},
)

var EnrichmentBreakerTripsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "waypoint",
		Subsystem: "enrichment",
		Name:      "breaker_trips_total",
		Help:      "Total number of times the enrichment circuit breaker opened.",
	},
)

var RouteSubmissionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "waypoint",
		Subsystem: "routes",
		Name:      "submissions_total",
		Help:      "Total number of route submission requests by terminal status.",
	},
	[]string{"status"},
)

// All returns every waypoint metric collector for registration against the
// process's Prometheus registry.
func All() []prometheus.Collector {
	return []prometheus.Collector{
		IdempotencyOutcomesTotal,
		RevisionMismatchesTotal,
		EnrichmentJobsTotal,
		EnrichmentBreakerTripsTotal,
		RouteSubmissionsTotal,
	}
}

// NewMetricsRegistry creates a Prometheus registry with Go/process
// collectors plus every collector passed in extra (typically All() and
// httpserver.RequestDuration, which lives outside this package to avoid an
// import cycle).
func NewMetricsRegistry(extra ...prometheus.Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, c := range extra {
		reg.MustRegister(c)
	}
	return reg
}
