// Package metrics provides Prometheus metrics for the feedback triage service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Classifier kinds used as label values.
const (
	ClassifierSentiment = "sentiment"
	ClassifierTopic     = "topic"
)

// severityBuckets spans the [0,1] severity range with edges on the label thresholds.
var severityBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.75, 0.8, 0.9, 1.0} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the triage service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Pipeline metrics
	eventsProcessed *prometheus.CounterVec
	eventsRejected  *prometheus.CounterVec
	severityScore   prometheus.Histogram
	pipelineLatency prometheus.Histogram

	// Classifier metrics
	classifierLatency *prometheus.HistogramVec
	classifierErrors  *prometheus.CounterVec

	// Escalation metrics
	ticketsCreated       *prometheus.CounterVec
	ticketErrors         prometheus.Counter
	notificationsSent    prometheus.Counter
	notificationFailures prometheus.Counter

	// Feedback log metrics
	logAppends      prometheus.Counter
	logAppendErrors prometheus.Counter
	logRecords      prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
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
		namespace:        "triage",
		subsystem:        "feedback",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.eventsProcessed = auto.NewCounterVec(
		m.counterOpts("events_processed_total", "Feedback events processed and logged, by sentiment"),
		[]string{"sentiment"},
	)
	m.eventsRejected = auto.NewCounterVec(
		m.counterOpts("events_rejected_total", "Feedback events aborted before logging, by reason"),
		[]string{"reason"},
	)
	m.severityScore = auto.NewHistogram(m.histogramOpts(
		"severity_score", "Distribution of computed severity scores", severityBuckets))
	m.pipelineLatency = auto.NewHistogram(m.histogramOpts(
		"pipeline_latency_milliseconds", "End-to-end processing time of one feedback event", m.histogramBuckets))

	m.classifierLatency = auto.NewHistogramVec(
		m.histogramOpts("classifier_latency_milliseconds", "Latency of classifier calls by kind", m.histogramBuckets),
		[]string{"kind"},
	)
	m.classifierErrors = auto.NewCounterVec(
		m.counterOpts("classifier_errors_total", "Failed classifier calls by kind"),
		[]string{"kind"},
	)

	m.ticketsCreated = auto.NewCounterVec(
		m.counterOpts("tickets_created_total", "Tickets opened in the tracker, by category"),
		[]string{"category"},
	)
	m.ticketErrors = auto.NewCounter(m.counterOpts("ticket_errors_total", "Failed ticket creations"))
	m.notificationsSent = auto.NewCounter(m.counterOpts("notifications_sent_total", "Notifications delivered"))
	m.notificationFailures = auto.NewCounter(m.counterOpts("notification_failures_total", "Notifications rejected or undeliverable"))

	m.logAppends = auto.NewCounter(m.counterOpts("log_appends_total", "Records appended to the feedback log"))
	m.logAppendErrors = auto.NewCounter(m.counterOpts("log_append_errors_total", "Failed feedback log appends"))
	m.logRecords = auto.NewGauge(m.gaugeOpts("log_records", "Records in the feedback log at last read"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by HTTP endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordEventProcessed counts a logged event and observes its severity.
func (m *Manager) RecordEventProcessed(sentiment string, severity, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.eventsProcessed.WithLabelValues(sentiment).Inc()
	m.severityScore.Observe(severity)
	m.pipelineLatency.Observe(latencyMs)
}

// RecordEventRejected counts an event aborted before it reached the log.
func (m *Manager) RecordEventRejected(reason string) {
	if !m.enabled {
		return
	}
	m.eventsRejected.WithLabelValues(reason).Inc()
}

// RecordClassifierCall observes one classifier call. Failed calls are also counted.
func (m *Manager) RecordClassifierCall(kind string, latencyMs float64, failed bool) {
	if !m.enabled {
		return
	}
	m.classifierLatency.WithLabelValues(kind).Observe(latencyMs)
	if failed {
		m.classifierErrors.WithLabelValues(kind).Inc()
	}
}

// RecordTicketCreated counts a ticket opened for the given category.
func (m *Manager) RecordTicketCreated(category string) {
	if !m.enabled {
		return
	}
	m.ticketsCreated.WithLabelValues(category).Inc()
}

// RecordTicketError counts a failed ticket creation.
func (m *Manager) RecordTicketError() {
	if !m.enabled {
		return
	}
	m.ticketErrors.Inc()
}

// RecordNotification counts a notification attempt by outcome.
func (m *Manager) RecordNotification(ok bool) {
	if !m.enabled {
		return
	}
	if ok {
		m.notificationsSent.Inc()
		return
	}
	m.notificationFailures.Inc()
}

// RecordLogAppend counts an append attempt by outcome.
func (m *Manager) RecordLogAppend(ok bool) {
	if !m.enabled {
		return
	}
	if ok {
		m.logAppends.Inc()
		return
	}
	m.logAppendErrors.Inc()
}

// UpdateLogRecords sets the number of records seen in the log.
func (m *Manager) UpdateLogRecords(n int) {
	if !m.enabled {
		return
	}
	m.logRecords.Set(float64(n))
}

// RecordHTTPRequest counts an HTTP request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent counts an error raised by a component.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts an error answered by an HTTP endpoint.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystem records runtime memory, goroutine and GC pause readings.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int, avgGCPauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if avgGCPauseMs > 0 {
		m.systemGCPauseTime.Observe(avgGCPauseMs)
	}
}

// Package-level helpers delegate to the global manager.

// RecordEventProcessed counts a logged event and observes its severity.
func RecordEventProcessed(sentiment string, severity, latencyMs float64) {
	globalManager.RecordEventProcessed(sentiment, severity, latencyMs)
}

// RecordEventRejected counts an event aborted before it reached the log.
func RecordEventRejected(reason string) { globalManager.RecordEventRejected(reason) }

// RecordClassifierCall observes one classifier call.
func RecordClassifierCall(kind string, latencyMs float64, failed bool) {
	globalManager.RecordClassifierCall(kind, latencyMs, failed)
}

// RecordTicketCreated counts a ticket opened for the given category.
func RecordTicketCreated(category string) { globalManager.RecordTicketCreated(category) }

// RecordTicketError counts a failed ticket creation.
func RecordTicketError() { globalManager.RecordTicketError() }

// RecordNotification counts a notification attempt by outcome.
func RecordNotification(ok bool) { globalManager.RecordNotification(ok) }

// RecordLogAppend counts an append attempt by outcome.
func RecordLogAppend(ok bool) { globalManager.RecordLogAppend(ok) }

// UpdateLogRecords sets the number of records seen in the log.
func UpdateLogRecords(n int) { globalManager.UpdateLogRecords(n) }

// RecordHTTPRequest counts an HTTP request and observes its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByComponent counts an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.RecordErrorByType(errorType, severity)
}

// RecordErrorByEndpoint counts an error answered by an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// UpdateSystem records runtime memory, goroutine and GC pause readings.
func UpdateSystem(memBytes uint64, goroutines int, avgGCPauseMs float64) {
	globalManager.UpdateSystem(memBytes, goroutines, avgGCPauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
