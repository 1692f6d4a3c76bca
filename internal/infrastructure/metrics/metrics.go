package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "monarch",
			Subsystem: "relay_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "monarch",
			Subsystem: "relay_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Upstream completion attempts
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "monarch",
			Subsystem: "relay_api",
			Name:      "upstream_requests_total",
			Help:      "Total upstream completion attempts",
		},
		[]string{"model", "outcome"},
	)

	// Upstream call duration
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "monarch",
			Subsystem: "relay_api",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream completion call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	// Open SSE relays gauge
	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "monarch",
			Subsystem: "relay_api",
			Name:      "active_streams",
			Help:      "Number of streaming relays currently open",
		},
	)

	// Conversation store operations
	ConversationOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "monarch",
			Subsystem: "relay_api",
			Name:      "conversation_operations_total",
			Help:      "Total conversation store operations",
		},
		[]string{"operation", "outcome"},
	)
)

// RecordRequest records a completed HTTP request.
func RecordRequest(method, endpoint, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordUpstreamRequest records one upstream completion attempt.
func RecordUpstreamRequest(model, outcome string, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(model, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordConversationOp records a conversation store operation.
func RecordConversationOp(operation, outcome string) {
	ConversationOpsTotal.WithLabelValues(operation, outcome).Inc()
}
