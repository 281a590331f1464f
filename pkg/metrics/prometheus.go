// Package metrics provides Prometheus metrics for the recruiting engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Matching
	candidatesScored *prometheus.CounterVec
	scoringLatency   prometheus.Histogram
	rankRequests     prometheus.Counter
	rankPoolSize     prometheus.Histogram
	filterApplied    prometheus.Counter
	filterPassRatio  prometheus.Histogram

	// Pipeline and calendar
	pipelineTransitions *prometheus.CounterVec
	pipelineRemovals    prometheus.Counter
	pipelineNotes       prometheus.Counter
	calendarMutations   *prometheus.CounterVec
	idempotentReplays   prometheus.Counter

	// Inventory
	totalCandidates prometheus.Gauge
	totalEvents     prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository
	repositoryLatency *prometheus.HistogramVec

	// Activity queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueUtilization        prometheus.Gauge
	queueEnqueued           prometheus.Counter
	queueDequeued           prometheus.Counter
	queueEnqueueErrors      prometheus.Counter
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	activitiesPublished     *prometheus.CounterVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// Runtime
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // service registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "helm",
		subsystem:        "recruiting",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// RefreshInterval reports how often gauge updaters should run.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.candidatesScored = m.counterVec("candidates_scored_total",
		"Candidates scored against a need profile, by outcome", "outcome")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds",
		"Latency of scoring a single candidate in milliseconds", m.histogramBuckets)
	m.rankRequests = m.counter("rank_requests_total", "Number of ranking requests served")
	m.rankPoolSize = m.histogram("rank_pool_size", "Number of candidates per ranking request",
		prometheus.ExponentialBuckets(1, 4, 8))
	m.filterApplied = m.counter("discovery_filters_total", "Number of discovery filter applications")
	m.filterPassRatio = m.histogram("discovery_pass_ratio",
		"Share of the candidate pool surviving a discovery filter", prometheus.LinearBuckets(0, 0.1, 11))

	m.pipelineTransitions = m.counterVec("pipeline_transitions_total",
		"Pipeline status writes by target status", "status")
	m.pipelineRemovals = m.counter("pipeline_removals_total", "Pipeline entries removed")
	m.pipelineNotes = m.counter("pipeline_notes_total", "Notes appended to pipeline entries")
	m.calendarMutations = m.counterVec("calendar_mutations_total",
		"Calendar event mutations by operation", "operation")
	m.idempotentReplays = m.counter("idempotent_replays_total",
		"Create requests answered from the idempotency cache")

	m.totalCandidates = m.gauge("candidates_total", "Candidates in the discovery pool")
	m.totalEvents = m.gauge("calendar_events_total", "Calendar events across all programs")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.repositoryLatency = m.histogramVec("repository_latency_milliseconds",
		"Repository operation latency in milliseconds", "operation")

	m.queueSize = m.gauge("activity_queue_size", "Current number of queued activities")
	m.queueCapacity = m.gauge("activity_queue_capacity", "Activity queue capacity")
	m.queueUtilization = m.gauge("activity_queue_utilization_ratio", "Activity queue size / capacity")
	m.queueEnqueued = m.counter("activity_queue_enqueue_total", "Activities enqueued")
	m.queueDequeued = m.counter("activity_queue_dequeue_total", "Activities dequeued")
	m.queueEnqueueErrors = m.counter("activity_queue_enqueue_errors_total", "Activities dropped on enqueue")
	m.workerCount = m.gauge("activity_worker_count", "Running activity workers")
	m.workerProcessingLatency = m.histogram("activity_worker_latency_milliseconds",
		"Time to publish one activity in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("activity_worker_errors_total", "Activities that failed to publish")
	m.activitiesPublished = m.counterVec("activities_published_total",
		"Activities published by kind", "kind")

	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Errors by component and type", "component", "error_type")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordCandidateScored counts one scored candidate; outcome is "matched" or "unmatched".
func RecordCandidateScored(outcome string, latencyMs float64) {
	globalManager.candidatesScored.WithLabelValues(outcome).Inc()
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordRank records a ranking request over a pool of the given size.
func RecordRank(poolSize int) {
	globalManager.rankRequests.Inc()
	globalManager.rankPoolSize.Observe(float64(poolSize))
}

// RecordFilter records a discovery filter pass.
func RecordFilter(poolSize, kept int) {
	globalManager.filterApplied.Inc()
	if poolSize > 0 {
		globalManager.filterPassRatio.Observe(float64(kept) / float64(poolSize))
	}
}

// RecordPipelineTransition counts a status write.
func RecordPipelineTransition(status string) {
	globalManager.pipelineTransitions.WithLabelValues(status).Inc()
}

// RecordPipelineRemoval counts a removed entry.
func RecordPipelineRemoval() { globalManager.pipelineRemovals.Inc() }

// RecordPipelineNote counts an appended note.
func RecordPipelineNote() { globalManager.pipelineNotes.Inc() }

// RecordCalendarMutation counts create, update and delete operations.
func RecordCalendarMutation(operation string) {
	globalManager.calendarMutations.WithLabelValues(operation).Inc()
}

// RecordIdempotentReplay counts a create answered from the idempotency cache.
func RecordIdempotentReplay() { globalManager.idempotentReplays.Inc() }

// UpdateTotalCandidates sets the candidate pool size.
func UpdateTotalCandidates(count int) { globalManager.totalCandidates.Set(float64(count)) }

// UpdateTotalEvents sets the calendar event count.
func UpdateTotalEvents(count int) { globalManager.totalEvents.Set(float64(count)) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRepositoryLatency records the latency of a storage operation.
func RecordRepositoryLatency(operation string, latencyMs float64) {
	globalManager.repositoryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordActivityPublished counts a published activity.
func RecordActivityPublished(kind string) {
	globalManager.activitiesPublished.WithLabelValues(kind).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RefreshInterval returns the refresh interval of the global manager.
func RefreshInterval() time.Duration { return globalManager.refreshInterval }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
