package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ForumMetrics tracks requests to the forum API.
type ForumMetrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	BreakerChanges  *prometheus.CounterVec
}

// NewForumMetrics creates and registers forum client metrics on the given registry.
func NewForumMetrics(reg prometheus.Registerer) *ForumMetrics {
	m := &ForumMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forum",
			Name:      "requests_total",
			Help:      "Total number of forum API requests, by endpoint and result.",
		}, []string{"endpoint", "result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "forum",
			Name:      "request_duration_seconds",
			Help:      "Duration of forum API requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		BreakerChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forum",
			Name:      "circuit_breaker_state_changes_total",
			Help:      "Total number of forum circuit breaker transitions, by new state.",
		}, []string{"state"}),
	}

	reg.MustRegister(m.Requests, m.RequestDuration, m.BreakerChanges)
	return m
}

func (m *ForumMetrics) ForumRequest(endpoint, result string, took time.Duration) {
	if result == "" {
		result = "ok"
	}
	m.Requests.WithLabelValues(endpoint, result).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(took.Seconds())
}

func (m *ForumMetrics) BreakerStateChanged(state string) {
	m.BreakerChanges.WithLabelValues(state).Inc()
}
