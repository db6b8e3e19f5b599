package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"earthworks/strwriter/pkg/cli"
	"earthworks/strwriter/pkg/config"
	"earthworks/strwriter/pkg/crs"
	"earthworks/strwriter/pkg/export"
	"earthworks/strwriter/pkg/layer"
	"earthworks/strwriter/pkg/server"
	"earthworks/strwriter/pkg/session"
	"earthworks/strwriter/pkg/telemetry/health"
	"earthworks/strwriter/pkg/telemetry/logging"
	"earthworks/strwriter/pkg/telemetry/metrics"
)

// app holds the components shared by the export commands.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	catalog   *layer.FileCatalog
	registry  *crs.Registry
	collector *metrics.Collector
	store     *session.Store
	checker   *health.Checker
}

// newApp builds the catalog, CRS registry, metrics collector and, when
// enabled, the session store.
func newApp(cfg *config.Config, logger *logging.Logger) (*app, error) {
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	if logger == nil {
		logger = logging.FromSlog(nil)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		catalog:   layer.NewFileCatalog(cfg.Source.Path, cfg.Source.CRS).WithExtensions(cfg.Watch.Extensions).WithLogger(logger.Slog()),
		registry:  crs.NewRegistry(),
		collector: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
	}

	if cfg.Session.Enabled {
		store, err := session.Open(cfg.Session.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		a.store = store
	}
	return a, nil
}

// requireSource fails when no layer source is configured.
func (a *app) requireSource() error {
	if a.cfg.Source.Path == "" {
		return cli.NewConfigError("source.path", "no layer source configured (set source.path or --source)")
	}
	return nil
}

// exporter creates an Exporter. A nil prompter writes to the output
// directory without asking.
func (a *app) exporter(prompter export.PathPrompter) *export.Exporter {
	opts := []export.Option{
		export.WithRegistry(a.registry),
		export.WithMetrics(a.collector, a.cfg.Telemetry.Metrics.TextfilePath),
		export.WithLogger(a.logger),
		export.WithOutputDir(a.cfg.Export.OutputDir),
	}
	if prompter != nil {
		opts = append(opts, export.WithPrompter(prompter))
	}
	if a.store != nil {
		opts = append(opts, export.WithHistory(a.store))
	}
	return export.NewExporter(a.catalog, opts...)
}

// defaultRequest is a request for layerName carrying the export defaults.
func (a *app) defaultRequest(layerName string) export.Request {
	return export.Request{
		Layer:     layerName,
		TargetCRS: a.cfg.Export.TargetCRS,
		Field:     a.cfg.Export.AttributeField,
		DefaultZ:  a.cfg.Export.DefaultZ,
		Trigger:   export.TriggerCLI,
	}
}

// server returns the metrics and health server, or nil when no listen
// address is configured.
func (a *app) server() *server.Server {
	addr := a.cfg.Telemetry.Metrics.ListenAddress
	if addr == "" {
		return nil
	}

	checker := health.New(2 * time.Second)
	checker.RegisterCheck("source", health.PathCheck(a.cfg.Source.Path))
	if a.store != nil {
		checker.RegisterCheck("session", health.PingCheck(a.store))
	}
	a.checker = checker

	return server.NewServer(server.Config{
		ListenAddress: addr,
		Build: server.BuildInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		},
	}, a.collector, checker, a.logger)
}

// observe reports an export outcome to the readiness probe, if served.
func (a *app) observe(layerName string, res *export.Result, err error) {
	if a.checker == nil {
		return
	}
	var path string
	if res != nil {
		path = res.Path
	}
	a.checker.ObserveExport(layerName, path, err)
}

// serve runs srv in the background until ctx is done. A nil srv is a no-op.
func (a *app) serve(ctx context.Context, srv *server.Server) {
	if srv == nil {
		return
	}
	go func() {
		if err := srv.Start(ctx); err != nil {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
}

// Close releases the session store.
func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// currentApp builds an app from the global configuration. With needSource
// it fails unless a layer source is configured.
func currentApp(needSource bool) (*app, error) {
	a, err := newApp(config.GetConfig(), logging.FromSlog(nil))
	if err != nil {
		return nil, err
	}
	if needSource {
		if err := a.requireSource(); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}
