// Package health serves liveness and readiness probes for the long-running
// watch and schedule commands.
//
// Readiness aggregates named checks, typically the layer source path and the
// session database:
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("source", health.PathCheck(cfg.Source.Path))
//	checker.RegisterCheck("session", health.PingCheck(store))
//
//	mux := http.NewServeMux()
//	health.Register(mux, checker, Version, GitCommit, BuildDate)
//
// /health always answers 200 while the process is up; /ready answers 503
// when any check fails or outlives the checker timeout.
package health
