package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Advisor service metrics for production monitoring
var (
	// Analysis metrics
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nuno_advisor_analyses_total",
			Help: "Total number of planning failure analyses",
		},
		[]string{"status"}, // status: success/fallback/error
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nuno_advisor_analysis_duration_seconds",
			Help:    "End-to-end analysis duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~17min
		},
		[]string{"provider"},
	)

	QuickAdviceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nuno_advisor_quick_advice_total",
			Help: "Total number of quick advice requests",
		},
		[]string{"status"},
	)

	// Normalizer metrics
	FallbackParsesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nuno_advisor_fallback_parses_total",
			Help: "Total number of backend replies that fell back to raw-content advice",
		},
	)

	// Backend metrics
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nuno_advisor_backend_requests_total",
			Help: "Total number of reasoning backend requests",
		},
		[]string{"provider", "model", "status"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nuno_advisor_backend_request_duration_seconds",
			Help:    "Reasoning backend request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~7min
		},
		[]string{"provider", "model"},
	)

	// WebSocket metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nuno_advisor_websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WebSocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nuno_advisor_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: inbound/outbound
	)

	// Rate limiting metrics
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nuno_advisor_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"path"},
	)
)
