// Package metrics provides Prometheus metrics for vaultlens
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for vaultlens. Each instance owns a
// private registry so tests and multiple services never collide.
type Metrics struct {
	registry *prometheus.Registry

	// Index metrics
	RebuildsTotal   *prometheus.CounterVec
	RebuildDuration prometheus.Histogram
	DocumentsTotal  prometheus.Gauge
	SkippedTotal    prometheus.Counter

	// Query metrics
	RelatedQueriesTotal  prometheus.Counter
	RelatedResultsTotal  prometheus.Counter
	RelatedDuration      prometheus.Histogram
	HierarchyBuildsTotal prometheus.Counter
	HierarchyDuration    *prometheus.HistogramVec

	// Watch metrics
	WatchTriggersTotal *prometheus.CounterVec
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.RebuildsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaultlens_index_rebuilds_total",
			Help: "Total number of wholesale index rebuilds",
		},
		[]string{"status"},
	)

	m.RebuildDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vaultlens_index_rebuild_duration_seconds",
			Help:    "Duration of index rebuilds in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	m.DocumentsTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "vaultlens_index_documents",
			Help: "Number of documents in the current corpus",
		},
	)

	m.SkippedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "vaultlens_index_skipped_notes_total",
			Help: "Total number of notes skipped because they could not be read",
		},
	)

	m.RelatedQueriesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "vaultlens_related_queries_total",
			Help: "Total number of related-note computations",
		},
	)

	m.RelatedResultsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "vaultlens_related_results_total",
			Help: "Total number of related-note results returned",
		},
	)

	m.RelatedDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vaultlens_related_duration_seconds",
			Help:    "Duration of related-note computations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.HierarchyBuildsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "vaultlens_hierarchy_builds_total",
			Help: "Total number of tag hierarchy builds",
		},
	)

	m.HierarchyDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vaultlens_hierarchy_operation_duration_seconds",
			Help:    "Duration of tag hierarchy operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	m.WatchTriggersTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaultlens_watch_triggers_total",
			Help: "Total number of debounced watch triggers",
		},
		[]string{"source"},
	)

	reg.MustRegister(collectors.NewGoCollector())

	return m
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRebuild records a rebuild attempt and, on success, the corpus size.
func (m *Metrics) RecordRebuild(documents, skipped int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RebuildsTotal.WithLabelValues(status).Inc()
	m.RebuildDuration.Observe(duration.Seconds())
	if err != nil {
		return
	}
	m.DocumentsTotal.Set(float64(documents))
	m.SkippedTotal.Add(float64(skipped))
}

// RecordRelated records one related-note computation.
func (m *Metrics) RecordRelated(results int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RelatedQueriesTotal.Inc()
	m.RelatedResultsTotal.Add(float64(results))
	m.RelatedDuration.Observe(duration.Seconds())
}

// RecordHierarchy records a build, filter or sort of the tag hierarchy.
func (m *Metrics) RecordHierarchy(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	if operation == "build" {
		m.HierarchyBuildsTotal.Inc()
	}
	m.HierarchyDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTrigger counts a debounced trigger from source ("vault" or "focus").
func (m *Metrics) RecordTrigger(source string) {
	if m == nil {
		return
	}
	m.WatchTriggersTotal.WithLabelValues(source).Inc()
}
