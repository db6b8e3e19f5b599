// Package server exposes Prometheus metrics and health probes over HTTP
// while the watch or schedule commands run.
//
// Routes:
//
//   - /metrics: the export collector registry (only when metrics are enabled)
//   - /health: liveness
//   - /ready: readiness, aggregating the registered health checks
//   - /version: build information
//
// Every route passes through panic recovery and debug-level request
// logging. The server is started with the command's context and shuts down
// gracefully when that context is cancelled:
//
//	srv := server.NewServer(server.Config{ListenAddress: ":9464"}, collector, checker, logger)
//	go func() { _ = srv.Start(ctx) }()
package server
