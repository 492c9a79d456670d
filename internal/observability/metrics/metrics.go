package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eshift_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eshift_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eshift_registrations_total",
		Help: "Count of registration attempts by outcome",
	}, []string{"result"})

	authenticationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eshift_authentications_total",
		Help: "Count of credential checks by outcome",
	}, []string{"result"})

	deletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eshift_customer_deletions_total",
		Help: "Count of customer deletion attempts by outcome",
	}, []string{"result"})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eshift_welcome_notifications_total",
		Help: "Count of welcome notification deliveries by outcome",
	}, []string{"result"})

	eventSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eshift_event_subscribers",
		Help: "Number of connected admin event subscribers",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveRegistration increments the registration counter for the given result.
func ObserveRegistration(result string) {
	registrationsTotal.WithLabelValues(result).Inc()
}

// ObserveAuthentication increments the authentication counter for the given result.
func ObserveAuthentication(result string) {
	authenticationsTotal.WithLabelValues(result).Inc()
}

// ObserveDeletion increments the deletion counter for the given result.
func ObserveDeletion(result string) {
	deletionsTotal.WithLabelValues(result).Inc()
}

// ObserveNotification increments the notification counter for the given result.
func ObserveNotification(result string) {
	notificationsTotal.WithLabelValues(result).Inc()
}

// EventSubscriberConnected adjusts the subscriber gauge on connect.
func EventSubscriberConnected() {
	eventSubscribers.Inc()
}

// EventSubscriberDisconnected adjusts the subscriber gauge on disconnect.
func EventSubscriberDisconnected() {
	eventSubscribers.Dec()
}
