package metrics

import (
	"time"

	"earthworks/strwriter/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ExportMetrics tracks string file exports.
//
// Metrics:
//   - strwriter_exports_total: Export count by status
//   - strwriter_export_duration_seconds: Export duration histogram by layer kind
//   - strwriter_lines_total: Lines written by record kind
//   - strwriter_features_skipped_total: Features whose geometry was not written
//   - strwriter_elevation_source_total: Data records per elevation source
type ExportMetrics struct {
	exportsTotal     *prometheus.CounterVec
	exportDuration   *prometheus.HistogramVec
	linesTotal       *prometheus.CounterVec
	featuresSkipped  prometheus.Counter
	elevationSources *prometheus.CounterVec
}

// NewExportMetrics creates and registers export metrics with the provided registry.
func NewExportMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ExportMetrics {
	em := &ExportMetrics{
		exportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "exports_total",
				Help:      "Total number of layer exports by status",
			},
			[]string{"status"},
		),

		exportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "export_duration_seconds",
				Help:      "Duration of layer exports in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"kind"},
		),

		linesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "lines_total",
				Help:      "Total number of string file lines written by record kind",
			},
			[]string{"record"},
		),

		featuresSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "features_skipped_total",
				Help:      "Total number of features whose geometry could not be written",
			},
		),

		elevationSources: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "elevation_source_total",
				Help:      "Total number of data records by elevation source",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		em.exportsTotal,
		em.exportDuration,
		em.linesTotal,
		em.featuresSkipped,
		em.elevationSources,
	)

	return em
}

// Record records one finished export.
func (em *ExportMetrics) Record(s ExportSample) {
	em.exportsTotal.WithLabelValues(s.Status).Inc()
	em.exportDuration.WithLabelValues(s.Kind).Observe(s.Duration.Seconds())

	if s.DataLines > 0 {
		em.linesTotal.WithLabelValues("data").Add(float64(s.DataLines))
	}
	if s.Terminators > 0 {
		em.linesTotal.WithLabelValues("terminator").Add(float64(s.Terminators))
	}
	if s.Skipped > 0 {
		em.featuresSkipped.Add(float64(s.Skipped))
	}
	for source, n := range s.Elevation {
		em.elevationSources.WithLabelValues(source).Add(float64(n))
	}
}

// ExportSample is the outcome of one export as seen by metrics.
type ExportSample struct {
	// Status is "success", "error" or "cancelled".
	Status string

	// Kind is the layer geometry kind ("line", "point").
	Kind string

	// Duration is the wall time of the export.
	Duration time.Duration

	// DataLines and Terminators count the records written.
	DataLines   int
	Terminators int

	// Skipped counts features whose geometry was not written.
	Skipped int

	// Elevation counts data records per elevation source.
	Elevation map[string]int
}
