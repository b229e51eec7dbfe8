package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for version comparisons.
type Metrics struct {
	CacheLookups    *prometheus.CounterVec
	CompareDuration prometheus.Histogram
	DiffSize        prometheus.Histogram
}

// New registers the versions metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statedeck_versions_diff_cache_lookups_total",
			Help: "Diff cache lookups by result",
		}, []string{"result"}), // hit, miss, error

		CompareDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "statedeck_versions_compare_duration_seconds",
			Help:    "Duration of version comparisons including cache lookups",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),

		DiffSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "statedeck_versions_diff_chunks",
			Help:    "Number of chunks in computed diffs",
			Buckets: prometheus.ExponentialBuckets(1, 4, 6),
		}),
	}
}

// IncrementCacheLookup records a cache lookup result.
func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

// ObserveCompare records the duration of a comparison.
func (m *Metrics) ObserveCompare(d time.Duration) {
	if m != nil {
		m.CompareDuration.Observe(d.Seconds())
	}
}

// ObserveDiffSize records how many chunks a computed diff holds.
func (m *Metrics) ObserveDiffSize(chunks int) {
	if m != nil {
		m.DiffSize.Observe(float64(chunks))
	}
}
