package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "beautyfind",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by status.",
		},
		[]string{"status"},
	)

	bookingCancelled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "beautyfind",
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled, by actor role.",
		},
		[]string{"by"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "beautyfind",
			Name:      "booking_conflicts_total",
			Help:      "Count of booking attempts rejected at commit time.",
		},
	)

	slotQueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "beautyfind",
			Name:      "slot_query_duration_seconds",
			Help:      "Latency of availability queries.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "beautyfind",
			Name:      "http_requests_total",
			Help:      "Count of API requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingCancelled, bookingConflicts, slotQueryDuration, httpRequests)
	})
}

func IncBookingCreated(status string) {
	bookingCreated.WithLabelValues(status).Inc()
}

func IncBookingCancelled(by string) {
	bookingCancelled.WithLabelValues(by).Inc()
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func ObserveSlotQuery(d time.Duration) {
	slotQueryDuration.Observe(d.Seconds())
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
