package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
//
// Example:
//
//	collector := metrics.NewCollector(cfg, nil)
//	http.Handle("/metrics", collector.Handler())
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	)
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format, for node_exporter's textfile collector. The file is replaced
// atomically. An empty path or a disabled collector writes nothing.
func (c *Collector) WriteTextfile(path string) error {
	if !c.Enabled() || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}
