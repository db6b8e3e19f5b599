package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"earthworks/strwriter/pkg/export"
	"earthworks/strwriter/pkg/layer"
	"earthworks/strwriter/pkg/telemetry/logging"
)

// Exporter runs one export.
type Exporter interface {
	Export(ctx context.Context, req export.Request) (*export.Result, error)
}

// RunnerConfig selects what a Runner exports.
type RunnerConfig struct {
	// Layers restricts exports to these layer names. Empty means every
	// line and point layer in the catalog.
	Layers []string

	TargetCRS string
	Field     string
	DefaultZ  string
}

// Runner re-exports layers when their source files change. Runs never
// overlap.
type Runner struct {
	exporter Exporter
	catalog  layer.Catalog
	config   RunnerConfig
	logger   *logging.Logger
	notify   func(layer string, res *export.Result, err error)

	mu sync.Mutex
}

// NewRunner creates a Runner.
func NewRunner(exporter Exporter, catalog layer.Catalog, cfg RunnerConfig, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.FromSlog(nil)
	}
	return &Runner{
		exporter: exporter,
		catalog:  catalog,
		config:   cfg,
		logger:   logger.With("component", "watch"),
	}
}

// OnResult registers a callback invoked after every export attempt with the
// layer name. res is nil when the export failed before writing.
func (r *Runner) OnResult(fn func(layer string, res *export.Result, err error)) {
	r.notify = fn
}

// Watch exports every selected layer once and then again each time fw
// reports changed sources. It blocks until ctx is cancelled.
func (r *Runner) Watch(ctx context.Context, fw *FileWatcher) error {
	if _, err := r.ExportChanged(ctx, nil); err != nil {
		r.logger.ErrorContext(ctx, "Initial export failed", "error", err)
	}
	return fw.Watch(ctx, func(ctx context.Context, paths []string) error {
		_, err := r.ExportChanged(ctx, paths)
		return err
	})
}

// ExportChanged exports the selected layers read from any of paths. A nil
// paths exports all of them. Every layer is attempted; the errors are
// joined.
func (r *Runner) ExportChanged(ctx context.Context, paths []string) ([]*export.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	targets, err := r.targets(ctx, paths)
	if err != nil {
		return nil, err
	}

	var results []*export.Result
	var errs []error
	for _, name := range targets {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res, err := r.exporter.Export(ctx, export.Request{
			Layer:     name,
			TargetCRS: r.config.TargetCRS,
			Field:     r.config.Field,
			DefaultZ:  r.config.DefaultZ,
			Trigger:   export.TriggerWatch,
		})
		if r.notify != nil {
			r.notify(name, res, err)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

// targets resolves the layer names to export.
func (r *Runner) targets(ctx context.Context, paths []string) ([]string, error) {
	layers, err := r.catalog.Layers(ctx)
	if err != nil {
		return nil, err
	}

	var changed map[string]bool
	if paths != nil {
		changed = make(map[string]bool, len(paths))
		for _, p := range paths {
			changed[filepath.Clean(p)] = true
		}
	}

	wanted := make(map[string]bool, len(r.config.Layers))
	for _, name := range r.config.Layers {
		wanted[name] = true
	}

	var names []string
	for _, l := range layers {
		if len(wanted) > 0 {
			if !wanted[l.Name] {
				continue
			}
		} else if !l.Supported() {
			continue
		}
		if changed != nil && !changed[filepath.Clean(l.Source)] {
			continue
		}
		names = append(names, l.Name)
	}

	// Configured layers missing from the catalog still go to the exporter
	// on full runs so the failure is reported.
	if paths == nil {
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			seen[n] = true
		}
		for _, name := range r.config.Layers {
			if !seen[name] {
				names = append(names, name)
			}
		}
	}

	return names, nil
}
