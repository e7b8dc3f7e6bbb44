package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/manager"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/selection"
)

const namespace = "overlay_picker"

// Metrics holds all Prometheus metrics on its own registry
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Selection store metrics
	MergeAttempts  *prometheus.CounterVec
	MergeConflicts *prometheus.CounterVec
	MergeOutcomes  *prometheus.CounterVec
	BreakerState   *prometheus.GaugeVec

	// Catalog and manager metrics
	CatalogBuildDuration *prometheus.HistogramVec
	CatalogOptions       *prometheus.GaugeVec
	OptionsSkipped       *prometheus.CounterVec
	ApplyOutcomes        *prometheus.CounterVec
	DegradedResolutions  *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for the JSON stats endpoint
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	TotalApplies  int64   `json:"total_applies"`
	FailedApplies int64   `json:"failed_applies"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	UptimeSeconds float64 `json:"uptime_seconds"`

	totalDuration time.Duration
}

// NewMetrics creates a collector with a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewMetricsWith(reg)
}

// NewMetricsWith registers every metric on reg
func NewMetricsWith(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "route"},
		),

		MergeAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selection_merge_attempts_total",
				Help:      "Read-patch-swap cycles started against the selection document",
			},
			[]string{"backend"},
		),
		MergeConflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selection_merge_conflicts_total",
				Help:      "Compare-and-swap attempts lost to a concurrent writer",
			},
			[]string{"backend"},
		),
		MergeOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selection_merges_total",
				Help:      "Completed merges by outcome",
			},
			[]string{"backend", "outcome"},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "selection_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"breaker"},
		),

		CatalogBuildDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "catalog_build_duration_seconds",
				Help:      "Time to build a domain's option catalog",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"domain"},
		),
		CatalogOptions: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_options",
				Help:      "Options in the last built catalog",
			},
			[]string{"domain"},
		),
		OptionsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_options_skipped_total",
				Help:      "Options dropped while building a catalog",
			},
			[]string{"domain", "reason"},
		),
		ApplyOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "applies_total",
				Help:      "Apply calls by outcome",
			},
			[]string{"domain", "outcome"},
		),
		DegradedResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "active_resolution_degraded_total",
				Help:      "Fetches where no option matched the enabled overlays",
			},
			[]string{"domain"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_connections",
				Help:      "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_messages_total",
				Help:      "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, route).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration
	if status >= 400 {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// MergeAttempt implements selection.Observer
func (m *Metrics) MergeAttempt(backend string) {
	m.MergeAttempts.WithLabelValues(backend).Inc()
}

// MergeConflict implements selection.Observer
func (m *Metrics) MergeConflict(backend string) {
	m.MergeConflicts.WithLabelValues(backend).Inc()
}

// MergeOutcome implements selection.Observer
func (m *Metrics) MergeOutcome(backend string, outcome selection.Outcome) {
	m.MergeOutcomes.WithLabelValues(backend, string(outcome)).Inc()
}

// BreakerStateChanged matches resilience.Settings.OnStateChange
func (m *Metrics) BreakerStateChanged(name string, _ resilience.State, to resilience.State) {
	m.BreakerState.WithLabelValues(name).Set(float64(to))
}

// OptionSkipped implements catalog.Observer
func (m *Metrics) OptionSkipped(domain, reason string) {
	m.OptionsSkipped.WithLabelValues(domain, reason).Inc()
}

// CatalogBuilt implements catalog.Observer
func (m *Metrics) CatalogBuilt(domain string, options int, elapsed time.Duration) {
	m.CatalogBuildDuration.WithLabelValues(domain).Observe(elapsed.Seconds())
	m.CatalogOptions.WithLabelValues(domain).Set(float64(options))
}

// ApplyOutcome implements manager.Observer
func (m *Metrics) ApplyOutcome(domain, outcome string) {
	m.ApplyOutcomes.WithLabelValues(domain, outcome).Inc()

	m.mu.Lock()
	m.snapshot.TotalApplies++
	if outcome != manager.OutcomeApplied {
		m.snapshot.FailedApplies++
	}
	m.mu.Unlock()
}

// ActiveDegraded implements manager.Observer
func (m *Metrics) ActiveDegraded(domain string) {
	m.DegradedResolutions.WithLabelValues(domain).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// Snapshot returns the running totals
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgLatencyMs = float64(s.totalDuration.Microseconds()) / 1000 / float64(s.TotalRequests)
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
