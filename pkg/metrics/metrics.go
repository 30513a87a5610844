// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// StoreWriteDuration tracks full-document writes of the itinerary store.
	StoreWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "itinerary_store_write_duration_seconds",
			Help:    "Duration of itinerary document writes",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// StoreWriteFailures counts failed document writes.
	StoreWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itinerary_store_write_failures_total",
			Help: "Failed itinerary document writes",
		},
	)

	// ItinerariesStored tracks the number of itineraries in the store.
	ItinerariesStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itineraries_stored",
			Help: "Number of itineraries held by the store",
		},
	)

	// ItineraryOperationsTotal counts service operations by name and outcome.
	ItineraryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itinerary_operations_total",
			Help: "Itinerary operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// SynthesizedItemsTotal counts activities produced by the synthesizer.
	SynthesizedItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synthesized_items_total",
			Help: "Activities produced by the template synthesizer",
		},
		[]string{"category"},
	)

	// EventsPublishedTotal counts itinerary events sent to NATS.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itinerary_events_published_total",
			Help: "Itinerary events published to NATS",
		},
		[]string{"type", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, route, status string, duration float64) {
	RequestDuration.WithLabelValues(method, route, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, route, status).Inc()
}

// RecordStoreWrite records a successful document write.
func RecordStoreWrite(duration float64, itineraries int) {
	StoreWriteDuration.Observe(duration)
	ItinerariesStored.Set(float64(itineraries))
}

// RecordOperation records the outcome of a service operation.
func RecordOperation(operation, outcome string) {
	ItineraryOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordEvent records an event publish attempt.
func RecordEvent(eventType, status string) {
	EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}
