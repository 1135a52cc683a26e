// Package metrics provides Prometheus metrics for the psyscale statistics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Business metrics
	completionsRecorded *prometheus.CounterVec
	completionsRejected *prometheus.CounterVec
	classifications     *prometheus.CounterVec

	// Storage metrics
	storageLatency   *prometheus.HistogramVec
	storageErrors    *prometheus.CounterVec
	poolOpen         prometheus.Gauge
	poolInUse        prometheus.Gauge
	poolIdle         prometheus.Gauge
	poolWaitTotal    prometheus.Gauge
	poolWaitDuration prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByType        *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure replaces the global manager and its registry. Call it once at
// startup, before any handler captures GetRegistry.
func Configure(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "psyscale",
		subsystem:        "statistics",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.completionsRecorded = m.counterVec("completions_recorded_total",
		"Completions durably recorded, by instrument path and client type", "instrument", "client_type")
	m.completionsRejected = m.counterVec("completions_rejected_total",
		"Completion requests rejected before reaching storage", "reason")
	m.classifications = m.counterVec("classifications_total",
		"Scores classified, by instrument path and resulting severity", "instrument", "severity")

	m.storageLatency = m.histogramVec("storage_operation_duration_milliseconds",
		"Completion store operation latency in milliseconds", "operation")
	m.storageErrors = m.counterVec("storage_errors_total",
		"Completion store operations that failed", "operation")
	m.poolOpen = m.gauge("storage_pool_open_connections", "Open connections in the store pool")
	m.poolInUse = m.gauge("storage_pool_in_use_connections", "Connections currently in use")
	m.poolIdle = m.gauge("storage_pool_idle_connections", "Idle connections in the store pool")
	m.poolWaitTotal = m.gauge("storage_pool_wait_total", "Total number of connections waited for")
	m.poolWaitDuration = m.gauge("storage_pool_wait_milliseconds", "Total time blocked waiting for a connection")

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint, method and status code", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total",
		"HTTP errors by endpoint, method and error type", "endpoint", "method", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total",
		"HTTP errors by error type and severity", "error_type", "severity")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordCompletion counts one recorded completion.
func (m *Manager) RecordCompletion(instrument, clientType string) {
	if m.enabled {
		m.completionsRecorded.WithLabelValues(instrument, clientType).Inc()
	}
}

// RecordCompletionRejected counts a completion request rejected for reason.
func (m *Manager) RecordCompletionRejected(reason string) {
	if m.enabled {
		m.completionsRejected.WithLabelValues(reason).Inc()
	}
}

// RecordClassification counts one classified score.
func (m *Manager) RecordClassification(instrument, severity string) {
	if m.enabled {
		m.classifications.WithLabelValues(instrument, severity).Inc()
	}
}

// RecordStorageLatency observes the latency of a store operation.
func (m *Manager) RecordStorageLatency(operation string, latencyMs float64) {
	if m.enabled {
		m.storageLatency.WithLabelValues(operation).Observe(latencyMs)
	}
}

// RecordStorageError counts a failed store operation.
func (m *Manager) RecordStorageError(operation string) {
	if m.enabled {
		m.storageErrors.WithLabelValues(operation).Inc()
	}
}

// UpdatePoolStats publishes a connection pool snapshot.
func (m *Manager) UpdatePoolStats(s PoolStats) {
	if !m.enabled {
		return
	}
	m.poolOpen.Set(float64(s.Open))
	m.poolInUse.Set(float64(s.InUse))
	m.poolIdle.Set(float64(s.Idle))
	m.poolWaitTotal.Set(float64(s.WaitCount))
	m.poolWaitDuration.Set(float64(s.WaitDuration.Milliseconds()))
}

// RecordHTTPRequest counts an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes HTTP request duration in milliseconds.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if m.enabled {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByEndpoint counts an HTTP error per endpoint.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m.enabled {
		m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorByType counts an HTTP error per type and severity.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	if m.enabled {
		m.errorsByType.WithLabelValues(errorType, severity).Inc()
	}
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func (m *Manager) UpdateSystemGoroutineCount(count int) {
	if m.enabled {
		m.systemGoroutineCount.Set(float64(count))
	}
}

// Package-level helpers delegate to the global manager.

func RecordCompletion(instrument, clientType string) {
	globalManager.RecordCompletion(instrument, clientType)
}

func RecordCompletionRejected(reason string) { globalManager.RecordCompletionRejected(reason) }

func RecordClassification(instrument, severity string) {
	globalManager.RecordClassification(instrument, severity)
}

func RecordStorageLatency(operation string, latencyMs float64) {
	globalManager.RecordStorageLatency(operation, latencyMs)
}

func RecordStorageError(operation string) { globalManager.RecordStorageError(operation) }

func UpdatePoolStats(s PoolStats) { globalManager.UpdatePoolStats(s) }

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, durationMs)
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

func RecordErrorByType(errorType, severity string) {
	globalManager.RecordErrorByType(errorType, severity)
}

func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }

func UpdateSystemGoroutineCount(count int) { globalManager.UpdateSystemGoroutineCount(count) }

// GetRegistry returns the custom Prometheus registry used by the service.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
