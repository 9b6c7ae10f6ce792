package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EnrollmentsCreated   prometheus.Counter
	EnrollmentsCancelled prometheus.Counter
	StatusUpdates        prometheus.Counter
	PeerFailures         *prometheus.CounterVec
	MockFallbacks        *prometheus.CounterVec
	RequestLatency       *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EnrollmentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enrollsvc_enrollments_created_total",
			Help: "Total number of enrollments created.",
		}),
		EnrollmentsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enrollsvc_enrollments_cancelled_total",
			Help: "Total number of enrollments cancelled.",
		}),
		StatusUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enrollsvc_status_updates_total",
			Help: "Total number of direct status updates.",
		}),
		PeerFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollsvc_peer_failures_total",
			Help: "Peer service call failures by service name.",
		}, []string{"service"}),
		MockFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollsvc_mock_fallbacks_total",
			Help: "Times a peer failure was replaced by a mock record.",
		}, []string{"service"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enrollsvc_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// IncCreated counts a persisted enrollment.
func (m *Metrics) IncCreated() {
	if m == nil {
		return
	}
	m.EnrollmentsCreated.Inc()
}

// IncCancelled counts a cancellation.
func (m *Metrics) IncCancelled() {
	if m == nil {
		return
	}
	m.EnrollmentsCancelled.Inc()
}

// IncStatusUpdate counts a direct status transition.
func (m *Metrics) IncStatusUpdate() {
	if m == nil {
		return
	}
	m.StatusUpdates.Inc()
}

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(route, status).Observe(d.Seconds())
}

// IncPeerFailure counts a failed call to the named peer service.
func (m *Metrics) IncPeerFailure(service string) {
	if m == nil {
		return
	}
	m.PeerFailures.WithLabelValues(service).Inc()
}

// IncMockFallback counts a mock substitution for the named peer service.
func (m *Metrics) IncMockFallback(service string) {
	if m == nil {
		return
	}
	m.MockFallbacks.WithLabelValues(service).Inc()
}
