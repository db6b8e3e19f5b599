// Package metrics provides Prometheus metrics for string file exports.
//
// # Metrics
//
//   - exports_total{status}: exports by outcome (success, error, cancelled)
//   - export_duration_seconds{kind}: export wall time by layer kind
//   - lines_total{record}: data and terminator records written
//   - features_skipped_total: features whose geometry was not written
//   - elevation_source_total{source}: data records per elevation source
//
// All names are prefixed with the configured namespace ("strwriter").
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordExport(metrics.ExportSample{Status: metrics.StatusSuccess, Kind: "line"})
//
// One-shot exports write the registry to a textfile with WriteTextfile;
// long-running watch and schedule commands can serve Handler instead.
package metrics
