// Package metrics provides Prometheus instrumentation for the editor,
// persistence, AI assist and export paths.
//
// All methods are safe to call on a nil *Metrics, so services can be
// constructed without instrumentation in tests and one-shot CLI commands.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Persistence write results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds every vitae collector.
type Metrics struct {
	Commits           *prometheus.CounterVec
	LookupMisses      *prometheus.CounterVec
	PersistenceWrites *prometheus.CounterVec
	AssistDuration    *prometheus.HistogramVec
	ExportDuration    prometheus.Histogram
}

// New creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on /metrics.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Commits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vitae_editor_commits_total",
			Help: "Total number of committed document snapshots by operation",
		}, []string{"op"}),
		LookupMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vitae_editor_lookup_misses_total",
			Help: "Total number of mutations skipped because a section or block id was not found",
		}, []string{"op"}),
		PersistenceWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vitae_persistence_writes_total",
			Help: "Total number of durable document writes by result",
		}, []string{"result"}),
		AssistDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vitae_assist_duration_seconds",
			Help:    "Duration of AI assist generations",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		}, []string{"provider"}),
		ExportDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vitae_export_duration_seconds",
			Help:    "Duration of PDF exports",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
	}
}

// IncCommit records a committed snapshot.
func (m *Metrics) IncCommit(op string) {
	if m == nil {
		return
	}
	m.Commits.WithLabelValues(op).Inc()
}

// IncLookupMiss records a mutation skipped by a missing id.
func (m *Metrics) IncLookupMiss(op string) {
	if m == nil {
		return
	}
	m.LookupMisses.WithLabelValues(op).Inc()
}

// IncPersistenceWrite records a durable write with its result.
func (m *Metrics) IncPersistenceWrite(err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.PersistenceWrites.WithLabelValues(result).Inc()
}

// ObserveAssist records the duration of a generation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveAssist(provider string, start time.Time) {
	if m == nil {
		return
	}
	m.AssistDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}

// ObserveExport records the duration of a PDF export.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveExport(start time.Time) {
	if m == nil {
		return
	}
	m.ExportDuration.Observe(time.Since(start).Seconds())
}
