// Package telemetry exposes the engine's prometheus metrics. One Metrics set
// is shared process-wide and registered on the server's /metrics endpoint.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// AdapterOutcomes counts every adapter invocation by source and status.
	AdapterOutcomes *prometheus.CounterVec

	// AggregationDuration observes wall time of the concurrent fan-out.
	AggregationDuration prometheus.Histogram

	// ItemsReturned observes final assembled collection sizes.
	ItemsReturned prometheus.Histogram

	// ItemsCollapsed counts items absorbed into dedup clusters as citations.
	ItemsCollapsed prometheus.Counter

	// Requests counts research requests by terminal outcome.
	Requests *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AdapterOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "talor",
			Subsystem: "research",
			Name:      "adapter_outcomes_total",
			Help:      "Adapter invocations by source and outcome status.",
		}, []string{"source", "status"}),
		AggregationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "talor",
			Subsystem: "research",
			Name:      "aggregation_duration_seconds",
			Help:      "Wall time of the adapter fan-out per request.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		ItemsReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "talor",
			Subsystem: "research",
			Name:      "items_returned",
			Help:      "Assembled result sizes.",
			Buckets:   prometheus.LinearBuckets(0, 5, 11),
		}),
		ItemsCollapsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "talor",
			Subsystem: "research",
			Name:      "items_collapsed_total",
			Help:      "Items merged into dedup clusters as extra citations.",
		}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "talor",
			Subsystem: "research",
			Name:      "requests_total",
			Help:      "Research requests by terminal outcome.",
		}, []string{"outcome"}),
	}
}
