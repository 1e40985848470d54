package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request counts and latency per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, labelled by route, method and status.",
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	reg.MustRegister(requests, duration)
	return &HTTPMetrics{requests: requests, duration: duration}
}

// Observe records a single served request.
func (m *HTTPMetrics) Observe(route, method string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(route), method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(normalizeLabel(route), method).Observe(elapsed.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
