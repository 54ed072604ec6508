// Package monitoring exposes Prometheus metrics for HTTP traffic and
// completion provider calls.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	completionRequestsTotal   *prometheus.CounterVec
	completionRequestDuration prometheus.Histogram
	fallbacksTotal            *prometheus.CounterVec
	cacheOperations           *prometheus.CounterVec
}

// NewMetricsCollector creates a collector backed by its own registry
func NewMetricsCollector() *MetricsCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &MetricsCollector{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		completionRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "completion_requests_total",
				Help: "Total number of completion provider calls by outcome",
			},
			[]string{"outcome"},
		),
		completionRequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "completion_request_duration_seconds",
				Help:    "Completion provider call duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
		),
		fallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filter_fallbacks_total",
				Help: "Total number of locally computed fallback results by stage",
			},
			[]string{"stage"},
		),
		cacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "completion_cache_operations_total",
				Help: "Completion cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// HTTPMiddleware records request counts and latency per route
func (m *MetricsCollector) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// CompletionRequest records one provider call
func (m *MetricsCollector) CompletionRequest(outcome string, duration time.Duration) {
	m.completionRequestsTotal.WithLabelValues(outcome).Inc()
	m.completionRequestDuration.Observe(duration.Seconds())
}

// Fallback records a stage that degraded to its local result
func (m *MetricsCollector) Fallback(stage string) {
	m.fallbacksTotal.WithLabelValues(stage).Inc()
}

// CacheLookup records a completion cache hit or miss
func (m *MetricsCollector) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheOperations.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry for tests and custom collectors
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
