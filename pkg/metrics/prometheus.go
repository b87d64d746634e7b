// Package metrics provides Prometheus metrics for the admission score calculator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Domain
	treeMutations     *prometheus.CounterVec
	selectionRepairs  prometheus.Counter
	scoreComputations prometheus.Counter
	institutions      prometheus.Gauge
	scoreSets         prometheus.Gauge

	// Persistence
	persistenceWrites   *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
	persistenceDropped  *prometheus.CounterVec
	debounceCoalesced   prometheus.Counter
	migrations          *prometheus.CounterVec
	malformedState      *prometheus.CounterVec
	kvLatency           *prometheus.HistogramVec

	// Write queue
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	errorRateByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "admitcalc",
		subsystem:        "calculator",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
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
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.treeMutations = m.counterVec("tree_mutations_total", "Committed scoring tree mutations by operation", "op")
	m.selectionRepairs = m.counter("selection_repairs_total", "Selections replaced after becoming invalid")
	m.scoreComputations = m.counter("score_computations_total", "Weighted totals computed")
	m.institutions = m.gauge("institutions", "Institutions currently in the scoring tree")
	m.scoreSets = m.gauge("score_sets", "Score sets currently stored")

	m.persistenceWrites = m.counterVec("persistence_writes_total", "Records written to the key-value store", "record")
	m.persistenceFailures = m.counterVec("persistence_write_failures_total", "Record writes that failed", "record")
	m.persistenceDropped = m.counterVec("persistence_writes_dropped_total", "Record writes dropped because the write queue was full", "record")
	m.debounceCoalesced = m.counter("debounce_coalesced_total", "Score writes superseded by a later edit before firing")
	m.migrations = m.counterVec("migrations_total", "Persisted records migrated from an older shape", "record", "from")
	m.malformedState = m.counterVec("malformed_state_total", "Persisted records ignored because they could not be decoded", "record")
	m.kvLatency = m.histogramVec("kv_operation_latency_milliseconds", "Key-value store operation latency in milliseconds", "driver", "op")

	m.queueSize = m.gauge("write_queue_size", "Pending writes in the persistence queue")
	m.queueCapacity = m.gauge("write_queue_capacity", "Capacity of the persistence queue")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "HTTP errors by endpoint and error type", "endpoint", "method", "error_type")
	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_milliseconds",
		Help:        "Most recent GC pause in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
}

// Domain metrics.

// RecordTreeMutation counts a committed tree operation.
func RecordTreeMutation(op string) {
	globalManager.treeMutations.WithLabelValues(op).Inc()
}

// RecordSelectionRepair counts a selection replaced by the repair chain.
func RecordSelectionRepair() {
	globalManager.selectionRepairs.Inc()
}

// RecordScoreComputation counts a computed total.
func RecordScoreComputation() {
	globalManager.scoreComputations.Inc()
}

// UpdateInstitutionCount sets the institutions gauge.
func UpdateInstitutionCount(n int) {
	globalManager.institutions.Set(float64(n))
}

// UpdateScoreSetCount sets the score sets gauge.
func UpdateScoreSetCount(n int) {
	globalManager.scoreSets.Set(float64(n))
}

// Persistence metrics.

// RecordPersistenceWrite counts a successful record write.
func RecordPersistenceWrite(record string) {
	globalManager.persistenceWrites.WithLabelValues(record).Inc()
}

// RecordPersistenceFailure counts a failed record write.
func RecordPersistenceFailure(record string) {
	globalManager.persistenceFailures.WithLabelValues(record).Inc()
}

// RecordPersistenceDropped counts a write dropped on a full queue.
func RecordPersistenceDropped(record string) {
	globalManager.persistenceDropped.WithLabelValues(record).Inc()
}

// RecordDebounceCoalesced counts a pending debounced write that was rescheduled.
func RecordDebounceCoalesced() {
	globalManager.debounceCoalesced.Inc()
}

// RecordMigration counts a record migrated from an older shape.
func RecordMigration(record, from string) {
	globalManager.migrations.WithLabelValues(record, from).Inc()
}

// RecordMalformedState counts a persisted record that fell back to its default.
func RecordMalformedState(record string) {
	globalManager.malformedState.WithLabelValues(record).Inc()
}

// RecordKVLatency records a key-value store operation latency.
func RecordKVLatency(driver, op string, latencyMs float64) {
	globalManager.kvLatency.WithLabelValues(driver, op).Observe(latencyMs)
}

// Queue metrics.

// UpdateQueueSize sets the pending write count.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the write queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// HTTP metrics.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records the duration of an HTTP request.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
