// Package metrics provides Prometheus instrumentation for kontocheck.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu          sync.RWMutex
	enabled     bool
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	// Validation metrics
	validationTotal  *prometheus.CounterVec
	alternativeTotal *prometheus.CounterVec
	batchSize        prometheus.Histogram
	auditFailures    prometheus.Counter
)

// Init initializes the metrics system. Each call starts a fresh registry.
func Init(enabledFlag bool, svcName string) {
	mu.Lock()
	defer mu.Unlock()

	enabled = enabledFlag
	serviceName = svcName

	if !enabled {
		registry = nil
		return
	}

	registry = prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)
	constLabels := prometheus.Labels{"service": svcName}

	// HTTP request counter
	httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration histogram
	httpDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"method", "path"},
	)

	validationTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "kontocheck_validations_total",
			Help:        "Total number of account number validations",
			ConstLabels: constLabels,
		},
		[]string{"method", "outcome"},
	)

	alternativeTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "kontocheck_alternative_decisions_total",
			Help:        "Chain validations by deciding alternative",
			ConstLabels: constLabels,
		},
		[]string{"method", "alternative"},
	)

	batchSize = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "kontocheck_batch_size",
			Help:        "Number of items per batch validation request",
			Buckets:     []float64{1, 10, 50, 100, 250, 500, 1000},
			ConstLabels: constLabels,
		},
	)

	auditFailures = factory.NewCounter(
		prometheus.CounterOpts{
			Name:        "kontocheck_audit_failures_total",
			Help:        "Validation log writes that failed",
			ConstLabels: constLabels,
		},
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// Enabled returns whether metrics are enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// ServiceName returns the configured service name for metric labels.
func ServiceName() string {
	mu.RLock()
	defer mu.RUnlock()
	return serviceName
}
