// Package metrics provides Prometheus metrics for the talentmatch ranking service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the talentmatch service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ranking pipeline metrics
	rankingRequests    *prometheus.CounterVec
	rankingLatency     prometheus.Histogram
	stageLatency       *prometheus.HistogramVec
	candidatePool      *prometheus.GaugeVec
	budgetRejected     prometheus.Counter
	regulatedGated     prometheus.Counter
	degenerateTraits   *prometheus.CounterVec
	curatedPlaced      prometheus.Counter
	curatedMissing     prometheus.Counter
	lastResultSize     prometheus.Gauge
	competingCmFlagged prometheus.Counter

	// Repository metrics
	repositoryQueryLatency *prometheus.HistogramVec
	repositoryErrors       *prometheus.CounterVec
	cacheHits              *prometheus.CounterVec
	cacheMisses            *prometheus.CounterVec

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "talentmatch",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// A disabled manager still hands out live collectors so call sites never
	// branch; they are just never exported.
	if !m.enabled {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval reports how often periodic gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	// Ranking pipeline
	m.rankingRequests = auto.NewCounterVec(
		m.counterOpts("requests_total", "Total ranking requests by outcome (ok, config_error, repository_error)"),
		[]string{"outcome"},
	)
	m.rankingLatency = auto.NewHistogram(
		m.histogramOpts("latency_milliseconds", "End-to-end ranking latency in milliseconds", m.histogramBuckets),
	)
	m.stageLatency = auto.NewHistogramVec(
		m.histogramOpts("stage_latency_milliseconds", "Latency of each ranking stage in milliseconds", m.histogramBuckets),
		[]string{"stage"},
	)
	m.candidatePool = auto.NewGaugeVec(
		m.gaugeOpts("candidate_pool_size", "Candidate pool size of the last request after each stage"),
		[]string{"stage"},
	)
	m.budgetRejected = auto.NewCounter(
		m.counterOpts("budget_rejected_total", "Candidates removed by the budget filter"),
	)
	m.regulatedGated = auto.NewCounter(
		m.counterOpts("regulated_gated_total", "Candidates removed by the regulated-industry age gate"),
	)
	m.degenerateTraits = auto.NewCounterVec(
		m.counterOpts("degenerate_distribution_total", "Requests whose trait distribution was all-equal"),
		[]string{"trait"},
	)
	m.curatedPlaced = auto.NewCounter(
		m.counterOpts("curated_placed_total", "Curated talents placed into top slots"),
	)
	m.curatedMissing = auto.NewCounter(
		m.counterOpts("curated_missing_total", "Curated talent ids that could not be resolved"),
	)
	m.lastResultSize = auto.NewGauge(
		m.gaugeOpts("last_result_size", "Number of entries returned by the last ranking request"),
	)
	m.competingCmFlagged = auto.NewCounter(
		m.counterOpts("competing_cm_flagged_total", "Results flagged as currently under a competing CM contract"),
	)

	// Repository
	m.repositoryQueryLatency = auto.NewHistogramVec(
		m.histogramOpts("repository_query_latency_milliseconds", "Repository call latency in milliseconds", m.histogramBuckets),
		[]string{"method"},
	)
	m.repositoryErrors = auto.NewCounterVec(
		m.counterOpts("repository_errors_total", "Repository call failures"),
		[]string{"method"},
	)
	m.cacheHits = auto.NewCounterVec(
		m.counterOpts("cache_hits_total", "Repository cache hits by kind"),
		[]string{"kind"},
	)
	m.cacheMisses = auto.NewCounterVec(
		m.counterOpts("cache_misses_total", "Repository cache misses by kind"),
		[]string{"kind"},
	)

	// HTTP
	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	// Errors
	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	// System
	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutine_count", "Number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordRankingRequest counts a finished ranking request by outcome.
func RecordRankingRequest(outcome string) {
	globalManager.rankingRequests.WithLabelValues(outcome).Inc()
}

// RecordRankingLatency records end-to-end ranking latency in milliseconds.
func RecordRankingLatency(latencyMs float64) {
	globalManager.rankingLatency.Observe(latencyMs)
}

// RecordStageLatency records the latency of one pipeline stage.
func RecordStageLatency(stage string, latencyMs float64) {
	globalManager.stageLatency.WithLabelValues(stage).Observe(latencyMs)
}

// UpdateCandidatePool sets the pool size observed after a stage.
func UpdateCandidatePool(stage string, size int) {
	globalManager.candidatePool.WithLabelValues(stage).Set(float64(size))
}

// RecordBudgetRejected adds n budget-filter rejections.
func RecordBudgetRejected(n int) {
	globalManager.budgetRejected.Add(float64(n))
}

// RecordRegulatedGated adds n age-gate rejections.
func RecordRegulatedGated(n int) {
	globalManager.regulatedGated.Add(float64(n))
}

// RecordDegenerateDistribution flags an all-equal trait distribution.
func RecordDegenerateDistribution(trait string) {
	globalManager.degenerateTraits.WithLabelValues(trait).Inc()
}

// RecordCuratedPlaced adds n curated placements.
func RecordCuratedPlaced(n int) {
	globalManager.curatedPlaced.Add(float64(n))
}

// RecordCuratedMissing counts a curated id that could not be resolved.
func RecordCuratedMissing() {
	globalManager.curatedMissing.Inc()
}

// UpdateLastResultSize sets the size of the last ranking result.
func UpdateLastResultSize(size int) {
	globalManager.lastResultSize.Set(float64(size))
}

// RecordCompetingCmFlagged adds n competing-CM annotations.
func RecordCompetingCmFlagged(n int) {
	globalManager.competingCmFlagged.Add(float64(n))
}

// RecordRepositoryQueryLatency records repository call latency.
func RecordRepositoryQueryLatency(method string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(method).Observe(latencyMs)
}

// RecordRepositoryError counts a failed repository call.
func RecordRepositoryError(method string) {
	globalManager.repositoryErrors.WithLabelValues(method).Inc()
}

// RecordCacheHit counts a cache hit for a kind of record.
func RecordCacheHit(kind string) {
	globalManager.cacheHits.WithLabelValues(kind).Inc()
}

// RecordCacheMiss counts a cache miss for a kind of record.
func RecordCacheMiss(kind string) {
	globalManager.cacheMisses.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

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

// Global returns the process-wide manager.
func Global() *Manager {
	return globalManager
}
