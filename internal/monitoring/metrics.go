package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketly_bookings_total",
			Help: "Total booking attempts by outcome",
		},
		[]string{"status"},
	)

	cancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketly_cancellations_total",
			Help: "Total ticket cancellations by outcome",
		},
		[]string{"status"},
	)

	checkinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketly_checkins_total",
			Help: "Total check-in attempts by outcome",
		},
		[]string{"status"},
	)

	bookingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticketly_booking_duration_seconds",
			Help:    "Duration of booking operations",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)
)

func RecordBooking(status string) {
	bookingsTotal.WithLabelValues(status).Inc()
}

func RecordCancellation(status string) {
	cancellationsTotal.WithLabelValues(status).Inc()
}

func RecordCheckin(status string) {
	checkinsTotal.WithLabelValues(status).Inc()
}

func ObserveBookingDuration(seconds float64) {
	bookingDuration.Observe(seconds)
}
