package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carhive",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carhive",
			Name:      "bookings_total",
			Help:      "Booking lifecycle changes by resulting status.",
		},
		[]string{"status"},
	)

	fleetSearches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "carhive",
			Name:      "fleet_searches_total",
			Help:      "Catalog filter queries served.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookings, fleetSearches)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBooking counts a booking reaching the given status.
func IncBooking(status string) {
	bookings.WithLabelValues(status).Inc()
}

// IncFleetSearch counts one served catalog query.
func IncFleetSearch() {
	fleetSearches.Inc()
}
