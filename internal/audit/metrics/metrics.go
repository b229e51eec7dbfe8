package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for audit search, export and ingest.
type Metrics struct {
	SearchDuration  prometheus.Histogram
	SearchResults   prometheus.Histogram
	ExportsTotal    *prometheus.CounterVec
	EntriesRecorded *prometheus.CounterVec
	IngestSkipped   *prometheus.CounterVec
}

// New registers the audit metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "statedeck_audit_search_duration_seconds",
			Help:    "Duration of audit searches including filtering and grouping",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		SearchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "statedeck_audit_search_matches",
			Help:    "Number of entries matching an audit search before windowing",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),

		ExportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statedeck_audit_exports_total",
			Help: "Audit exports by format and detail level",
		}, []string{"format", "details"}),

		EntriesRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statedeck_audit_entries_recorded_total",
			Help: "Audit entries recorded by category",
		}, []string{"category"}),

		IngestSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statedeck_audit_ingest_skipped_total",
			Help: "Consumed messages that were not recorded, by reason",
		}, []string{"reason"}),
	}
}

// ObserveSearch records a search duration and its match count.
func (m *Metrics) ObserveSearch(d time.Duration, matches int) {
	if m != nil {
		m.SearchDuration.Observe(d.Seconds())
		m.SearchResults.Observe(float64(matches))
	}
}

// IncrementExport records one export.
func (m *Metrics) IncrementExport(format string, details bool) {
	if m != nil {
		label := "false"
		if details {
			label = "true"
		}
		m.ExportsTotal.WithLabelValues(format, label).Inc()
	}
}

// IncrementRecorded records one stored entry.
func (m *Metrics) IncrementRecorded(category string) {
	if m != nil {
		m.EntriesRecorded.WithLabelValues(category).Inc()
	}
}

// IncrementIngestSkipped records one consumed message that was dropped.
func (m *Metrics) IncrementIngestSkipped(reason string) {
	if m != nil {
		m.IngestSkipped.WithLabelValues(reason).Inc()
	}
}
