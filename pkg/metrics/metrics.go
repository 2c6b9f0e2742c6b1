// Package metrics provides Prometheus instrumentation for the
// indicator pipeline: load volume, battery throughput, and indicator
// failures.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the pipeline metrics and the registry they live on.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	recordsLoaded       prometheus.Counter
	recordsIgnored      prometheus.Counter
	recordsDuplicate    prometheus.Counter
	indicatorsComputed  prometheus.Counter
	indicatorsFailed    prometheus.Counter
	personsProcessed    prometheus.Counter
	batteryDurationSecs prometheus.Histogram
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithRegistry sets the registry metrics are registered on.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithHistogramBuckets overrides the battery duration buckets.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// NewManager creates a metrics manager on its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "behavio",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)
	m.recordsLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "records_loaded_total",
		Help: "Total number of records accepted by the loader",
	})
	m.recordsIgnored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "records_ignored_total",
		Help: "Total number of records dropped for missing or inconsistent fields",
	})
	m.recordsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "records_duplicate_total",
		Help: "Total number of exact duplicate records collapsed at load time",
	})
	m.indicatorsComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "indicators_computed_total",
		Help: "Total number of indicator evaluations that completed",
	})
	m.indicatorsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "indicators_failed_total",
		Help: "Total number of indicator evaluations that failed their contract",
	})
	m.personsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "persons_processed_total",
		Help: "Total number of per-person batteries completed",
	})
	m.batteryDurationSecs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "battery_duration_seconds",
		Help:    "Histogram of full-battery evaluation time per person",
		Buckets: m.histogramBuckets,
	})
	return m
}

// Registry exposes the manager's registry, for scraping or test
// inspection.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler returns an HTTP handler serving the manager's metrics.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordsLoaded counts records accepted by the loader.
func (m *Manager) RecordsLoaded(n int) { m.recordsLoaded.Add(float64(n)) }

// RecordsIgnored counts records dropped by field validation.
func (m *Manager) RecordsIgnored(n int) { m.recordsIgnored.Add(float64(n)) }

// RecordsDuplicate counts collapsed duplicates.
func (m *Manager) RecordsDuplicate(n int) { m.recordsDuplicate.Add(float64(n)) }

// IndicatorComputed counts one completed indicator evaluation.
func (m *Manager) IndicatorComputed() { m.indicatorsComputed.Inc() }

// IndicatorFailed counts one failed indicator evaluation.
func (m *Manager) IndicatorFailed() { m.indicatorsFailed.Inc() }

// PersonProcessed counts one completed battery and its duration.
func (m *Manager) PersonProcessed(d time.Duration) {
	m.personsProcessed.Inc()
	m.batteryDurationSecs.Observe(d.Seconds())
}

// Global manager used by the pipeline packages.
var globalManager = NewManager() //nolint:gochecknoglobals // singleton metrics manager

// Default returns the global manager.
func Default() *Manager { return globalManager }

// Package-level shortcuts onto the global manager.
func RecordsLoaded(n int)             { globalManager.RecordsLoaded(n) }
func RecordsIgnored(n int)            { globalManager.RecordsIgnored(n) }
func RecordsDuplicate(n int)          { globalManager.RecordsDuplicate(n) }
func IndicatorComputed()              { globalManager.IndicatorComputed() }
func IndicatorFailed()                { globalManager.IndicatorFailed() }
func PersonProcessed(d time.Duration) { globalManager.PersonProcessed(d) }
