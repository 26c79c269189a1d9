package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application. All recording
// methods are safe to call on a nil *Collector.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Pipeline metrics
	CaptureFetches     *prometheus.CounterVec
	CompletionAttempts *prometheus.CounterVec
	InsightsGenerated  *prometheus.CounterVec
	DuplicatesDropped  prometheus.Counter

	// Store metrics
	DBOperations *prometheus.CounterVec
	DBDuration   *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		CaptureFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "capture_fetches_total",
				Help:      "Capture service queries by outcome",
			},
			[]string{"source", "reason"},
		),
		CompletionAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completion_attempts_total",
				Help:      "Completion endpoint attempts by outcome",
			},
			[]string{"outcome"},
		),
		InsightsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "insights_generated_total",
				Help:      "Insights produced by category and provenance",
			},
			[]string{"category", "source"},
		),
		DuplicatesDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "activity_duplicates_dropped_total",
				Help:      "Activity items removed by deduplication",
			},
		),
		DBOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_operations_total",
				Help:      "Total number of database operations",
			},
			[]string{"operation", "status"},
		),
		DBDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_operation_duration_seconds",
				Help:      "Database operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.CaptureFetches,
		c.CompletionAttempts,
		c.InsightsGenerated,
		c.DuplicatesDropped,
		c.DBOperations,
		c.DBDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Handler exposes the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordHTTPRequest records one served request
func (c *Collector) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCapture records the outcome of a capture query
func (c *Collector) RecordCapture(source, reason string) {
	if c == nil {
		return
	}
	c.CaptureFetches.WithLabelValues(source, reason).Inc()
}

// RecordCompletionAttempt records one call to the completion endpoint
func (c *Collector) RecordCompletionAttempt(outcome string) {
	if c == nil {
		return
	}
	c.CompletionAttempts.WithLabelValues(outcome).Inc()
}

// RecordInsight records a produced insight
func (c *Collector) RecordInsight(category, source string) {
	if c == nil {
		return
	}
	c.InsightsGenerated.WithLabelValues(category, source).Inc()
}

// RecordDuplicates records items dropped by deduplication
func (c *Collector) RecordDuplicates(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.DuplicatesDropped.Add(float64(n))
}

// RecordDBOperation records a store call
func (c *Collector) RecordDBOperation(operation string, err error, duration time.Duration) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.DBOperations.WithLabelValues(operation, status).Inc()
	c.DBDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
