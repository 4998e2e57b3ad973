package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	operations         *prometheus.CounterVec
	operationLatency   *prometheus.HistogramVec
	cacheLookups       *prometheus.CounterVec
	invariantFailures  *prometheus.CounterVec
	publishFailures    *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
}

// NewPrometheusRecorder creates the collectors and registers them, along with
// the Go runtime and process collectors, on a fresh registry.
func NewPrometheusRecorder(namespace string) (*PrometheusRecorder, error) {
	pr := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operations_total",
				Help:      "Total number of ledger operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		operationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_operation_duration_seconds",
				Help:      "Ledger operation latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "balance_cache_lookups_total",
				Help:      "Balance cache lookups by result",
			},
			[]string{"result"},
		),
		invariantFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invariant_violations_total",
				Help:      "Failed ledger consistency checks",
			},
			[]string{"operation"},
		),
		publishFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_publish_failures_total",
				Help:      "Ledger events that could not be published",
			},
			[]string{"type"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "status"},
		),
		httpRequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		pr.operations,
		pr.operationLatency,
		pr.cacheLookups,
		pr.invariantFailures,
		pr.publishFailures,
		pr.httpRequests,
		pr.httpRequestLatency,
	}
	for _, c := range cs {
		if err := pr.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return pr, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (pr *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(pr.registry, promhttp.HandlerOpts{Registry: pr.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (pr *PrometheusRecorder) Registry() *prometheus.Registry {
	return pr.registry
}

// RecordOperation records one ledger operation.
func (pr *PrometheusRecorder) RecordOperation(op string, err error, duration time.Duration) {
	pr.operations.WithLabelValues(op, Outcome(err)).Inc()
	pr.operationLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordCacheLookup records a balance cache lookup.
func (pr *PrometheusRecorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	pr.cacheLookups.WithLabelValues(result).Inc()
}

// RecordInvariantViolation counts a failed consistency check.
func (pr *PrometheusRecorder) RecordInvariantViolation(op string) {
	pr.invariantFailures.WithLabelValues(op).Inc()
}

// RecordPublishFailure counts an undelivered event.
func (pr *PrometheusRecorder) RecordPublishFailure(eventType string) {
	pr.publishFailures.WithLabelValues(eventType).Inc()
}

// RecordHTTPRequest records a served HTTP request.
func (pr *PrometheusRecorder) RecordHTTPRequest(method string, status int, duration time.Duration) {
	pr.httpRequests.WithLabelValues(method, http.StatusText(status)).Inc()
	pr.httpRequestLatency.WithLabelValues(method).Observe(duration.Seconds())
}
