// Package metrics exposes Prometheus collectors for the telemetry pipeline
// itself: events emitted by kind, ingestion deliveries by outcome, delivery
// latency, and the breaker state.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Delivery outcome label values.
const (
	OutcomeSuccess      = "success"
	OutcomeFailure      = "failure"
	OutcomeShortCircuit = "short_circuit"
	OutcomeSkipped      = "skipped"
)

// Metrics holds all Prometheus collectors for the SDK.
type Metrics struct {
	// Emission metrics
	EventsEmitted *prometheus.CounterVec

	// Delivery metrics
	DeliveriesTotal  *prometheus.CounterVec
	DeliveryDuration prometheus.Histogram

	// Breaker metrics
	BreakerState prometheus.Gauge

	// Lifecycle metrics
	TracesActive prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Default returns the process-wide collector set. Collectors register on the
// default registry exactly once, so multiple managers share them.
func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = newMetrics()
	})
	return defaultMetrics
}

func newMetrics() *Metrics {
	return &Metrics{
		EventsEmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telemetry_events_emitted_total",
				Help: "Total number of telemetry events emitted to the backend",
			},
			[]string{"kind"},
		),
		DeliveriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telemetry_deliveries_total",
				Help: "Total number of ingestion delivery attempts by outcome",
			},
			[]string{"outcome"},
		),
		DeliveryDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "telemetry_delivery_duration_seconds",
				Help:    "Ingestion request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		BreakerState: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "telemetry_breaker_open",
				Help: "Whether the ingestion circuit breaker is open (1) or closed (0)",
			},
		),
		TracesActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "telemetry_traces_active",
				Help: "Number of traces created but not yet finished",
			},
		),
	}
}
