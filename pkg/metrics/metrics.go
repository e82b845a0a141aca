// Package metrics provides Prometheus observability for the break booking
// engine: booking outcomes, capacity pressure and request latency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// BookingsTotal counts successfully booked breaks.
var BookingsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "booking",
	Name:      "breaks_booked_total",
	Help:      "Total number of breaks successfully booked",
})

// BookingRejectionsTotal counts rejected booking requests by reason.
// Reasons: boundary, duplicate, sequence, gap, capacity_exceeded, conflict,
// not_found, forbidden, malformed_time.
var BookingRejectionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "booking",
	Name:      "rejections_total",
	Help:      "Total rejected booking requests by rejection reason",
}, []string{"reason"})

// AvailabilityChecksTotal counts capacity preview queries.
var AvailabilityChecksTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "booking",
	Name:      "availability_checks_total",
	Help:      "Total availability preview queries",
})

// ConcurrentBreaksObserved records the concurrent break count seen at each
// capacity check; high values against low ceilings signal pressure.
var ConcurrentBreaksObserved = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "booking",
	Name:      "concurrent_breaks_observed",
	Help:      "Concurrent break count observed during capacity checks",
	Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
})

// BookingDurationSeconds tracks end-to-end booking request latency inside the
// engine (validation plus data-store round trips).
var BookingDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "booking",
	Name:      "duration_seconds",
	Help:      "Time taken to process a break booking request",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
})
