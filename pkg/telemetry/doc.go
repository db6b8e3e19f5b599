// Package telemetry groups the observability packages used by strwriter.
//
// # Components
//
//   - logging: structured slog logging with optional lumberjack rotation
//   - metrics: Prometheus export counters, served on /metrics or written to
//     a node_exporter textfile
//   - health: liveness and readiness probes for the watch and schedule
//     commands
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "text"})
//	if err != nil {
//		return err
//	}
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("source", health.PathCheck(cfg.Source.Path))
package telemetry
