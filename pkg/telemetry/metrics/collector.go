package metrics

import (
	"earthworks/strwriter/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Export statuses.
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

// Collector owns the Prometheus registry and the export metrics. A nil
// *Collector and a disabled one both ignore every call.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	exportMetrics *ExportMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "strwriter",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:        cfg,
		registry:      registry,
		exportMetrics: NewExportMetrics(cfg, registry),
	}
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordExport records metrics for a finished export.
//
// Example:
//
//	collector.RecordExport(metrics.ExportSample{
//		Status:    metrics.StatusSuccess,
//		Kind:      "line",
//		Duration:  40 * time.Millisecond,
//		DataLines: 1200,
//	})
func (c *Collector) RecordExport(s ExportSample) {
	if !c.Enabled() {
		return
	}

	c.exportMetrics.Record(s)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
