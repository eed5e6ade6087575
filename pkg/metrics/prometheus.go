// Package metrics provides Prometheus metrics for the sellerpulse service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion pipeline
	recordsIngested  *prometheus.CounterVec
	recordsDuplicate prometheus.Counter
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueRejections  prometheus.Counter
	workerCount      prometheus.Gauge
	workerErrors     prometheus.Counter
	workerLatency    prometheus.Histogram

	// Analytics engines
	computeRuns     *prometheus.CounterVec
	computeLatency  *prometheus.HistogramVec
	sellersTracked  prometheus.Gauge
	dealsTracked    prometheus.Gauge
	meetingsTracked prometheus.Gauge
	dataWarnings    prometheus.Gauge

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry, kept separate from the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sellerpulse",
		subsystem:        "crm",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordsIngested = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_ingested_total",
		Help:      "Total CRM records accepted for ingestion, by kind",
	}, []string{"kind"})

	m.recordsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_duplicate_total",
		Help:      "Total duplicate records rejected by the idempotency check",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current depth of the ingestion queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the ingestion queue",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total records enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total records handed to workers",
	})

	m.queueRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_rejections_total",
		Help:      "Total records rejected on backpressure or closed queue",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of ingestion workers",
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total worker processing failures",
	})

	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_latency_milliseconds",
		Help:      "Per-record ingestion latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.computeRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compute_runs_total",
		Help:      "Analytics computations served, by engine",
	}, []string{"engine"})

	m.computeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compute_latency_milliseconds",
		Help:      "Analytics computation latency in milliseconds, by engine",
		Buckets:   m.histogramBuckets,
	}, []string{"engine"})

	m.sellersTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sellers_tracked",
		Help:      "Number of sellers currently in the store",
	})

	m.dealsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "deals_tracked",
		Help:      "Number of deals currently in the store",
	})

	m.meetingsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "meetings_tracked",
		Help:      "Number of meetings currently in the store",
	})

	m.dataWarnings = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "data_quality_warnings",
		Help:      "Active deals with missing or zero estimated value in the last forecast",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// GetRegistry returns the registry backing the global manager, for serving
// /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordIngested increments the ingested counter for a record kind.
func RecordIngested(kind string) { globalManager.recordsIngested.WithLabelValues(kind).Inc() }

// RecordDuplicate increments the duplicate record counter.
func RecordDuplicate() { globalManager.recordsDuplicate.Inc() }

// UpdateQueueSize sets the current queue depth.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordEnqueue increments the enqueue counter.
func RecordEnqueue() { globalManager.queueEnqueues.Inc() }

// RecordDequeue increments the dequeue counter.
func RecordDequeue() { globalManager.queueDequeues.Inc() }

// RecordQueueRejection increments the rejection counter.
func RecordQueueRejection() { globalManager.queueRejections.Inc() }

// UpdateWorkerCount sets the worker gauge.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerError increments the worker failure counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordWorkerLatency observes one record's ingestion latency.
func RecordWorkerLatency(ms float64) { globalManager.workerLatency.Observe(ms) }

// RecordComputeRun counts one analytics computation for an engine
// (forecast, reliability, race, correlation, postpones).
func RecordComputeRun(engine string) { globalManager.computeRuns.WithLabelValues(engine).Inc() }

// RecordComputeLatency observes one computation's latency for an engine.
func RecordComputeLatency(engine string, ms float64) {
	globalManager.computeLatency.WithLabelValues(engine).Observe(ms)
}

// UpdateSellersTracked sets the seller gauge.
func UpdateSellersTracked(count int) { globalManager.sellersTracked.Set(float64(count)) }

// UpdateDealsTracked sets the deal gauge.
func UpdateDealsTracked(count int) { globalManager.dealsTracked.Set(float64(count)) }

// UpdateMeetingsTracked sets the meeting gauge.
func UpdateMeetingsTracked(count int) { globalManager.meetingsTracked.Set(float64(count)) }

// UpdateDataWarnings sets the data-quality gauge from the latest forecast.
func UpdateDataWarnings(count int) { globalManager.dataWarnings.Set(float64(count)) }

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request's duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}
