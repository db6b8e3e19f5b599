package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"earthworks/strwriter/pkg/crs"
	"earthworks/strwriter/pkg/layer"
	"earthworks/strwriter/pkg/surpac"
	"earthworks/strwriter/pkg/telemetry/logging"
	"earthworks/strwriter/pkg/telemetry/metrics"
)

// FileExtension is appended to the layer name for default destinations.
const FileExtension = ".str"

// Triggers recorded with each run.
const (
	TriggerCLI      = "cli"
	TriggerWatch    = "watch"
	TriggerSchedule = "schedule"
)

// Request describes one export.
type Request struct {
	// Layer is the catalog name of the layer to export.
	Layer string

	// TargetCRS is the output CRS. Empty keeps the layer's CRS.
	TargetCRS string

	// Field is the attribute written in the last record column. Empty
	// writes "None".
	Field string

	// DefaultZ is the default elevation as entered. Text that does not
	// parse as a finite number means 0.
	DefaultZ string

	// Output is the destination file. Empty asks the PathPrompter, or
	// falls back to {output_dir}/{layer}.str when there is none.
	Output string

	// Trigger names what started the export ("cli", "watch", "schedule").
	Trigger string
}

// Result describes a finished export.
type Result struct {
	RunID     string
	Layer     string
	Kind      layer.Kind
	Path      string
	SourceCRS string
	TargetCRS string
	Stats     *surpac.Stats
	StartedAt time.Time
	Duration  time.Duration
}

// Message is the success notification shown to users.
func (r *Result) Message() string {
	return fmt.Sprintf("Layer %s saved as %s", r.Layer, r.Path)
}

// PathPrompter asks the user where to save a layer. Returning "" or
// ErrCancelled cancels the export.
type PathPrompter interface {
	PromptSavePath(ctx context.Context, layerName, suggested string) (string, error)
}

// Run is the history record of one export attempt.
type Run struct {
	RunID       string
	Layer       string
	Path        string
	Trigger     string
	Status      string
	TargetCRS   string
	DataLines   int
	Terminators int
	Skipped     int
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// HistoryRecorder stores export runs.
type HistoryRecorder interface {
	RecordRun(ctx context.Context, run Run) error
}

// Exporter runs exports against a layer catalog. Exports are serialised; it
// is safe to call Export from several goroutines.
type Exporter struct {
	mu sync.Mutex

	catalog    layer.Catalog
	registry   *crs.Registry
	serializer *surpac.Serializer
	prompter   PathPrompter
	history    HistoryRecorder
	metrics    *metrics.Collector
	textfile   string
	logger     *logging.Logger
	outputDir  string
	newRunID   func() string
	now        func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithRegistry sets the CRS registry.
func WithRegistry(r *crs.Registry) Option {
	return func(e *Exporter) { e.registry = r }
}

// WithSerializer sets the serializer, e.g. one with a fixed clock.
func WithSerializer(s *surpac.Serializer) Option {
	return func(e *Exporter) { e.serializer = s }
}

// WithPrompter sets the save path prompter used when a request has no
// Output.
func WithPrompter(p PathPrompter) Option {
	return func(e *Exporter) { e.prompter = p }
}

// WithHistory records every run, including failed and cancelled ones.
func WithHistory(h HistoryRecorder) Option {
	return func(e *Exporter) { e.history = h }
}

// WithMetrics records every run in c. A non-empty textfile receives the
// registry contents after each run.
func WithMetrics(c *metrics.Collector, textfile string) Option {
	return func(e *Exporter) {
		e.metrics = c
		e.textfile = textfile
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Exporter) { e.logger = l }
}

// WithOutputDir sets the directory for default destinations.
func WithOutputDir(dir string) Option {
	return func(e *Exporter) { e.outputDir = dir }
}

// WithRunIDs sets the run ID generator.
func WithRunIDs(next func() string) Option {
	return func(e *Exporter) { e.newRunID = next }
}

// NewExporter creates an Exporter reading layers from catalog.
func NewExporter(catalog layer.Catalog, opts ...Option) *Exporter {
	e := &Exporter{
		catalog:   catalog,
		outputDir: ".",
		newRunID:  func() string { return uuid.New().String() },
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = crs.NewRegistry()
	}
	if e.serializer == nil {
		e.serializer = surpac.NewSerializer()
	}
	if e.logger == nil {
		e.logger = logging.FromSlog(nil)
	}
	return e
}

// DefaultPath returns {output_dir}/{layer}.str.
func (e *Exporter) DefaultPath(layerName string) string {
	return filepath.Join(e.outputDir, layerName+FileExtension)
}

// Export writes the requested layer as a string file.
//
// Lookup, kind and CRS failures return before any file is touched. A
// transform failure aborts mid-write; the truncated file stays on disk and
// the returned Result, non-nil alongside the error, names it.
func (e *Exporter) Export(ctx context.Context, req Request) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := &Result{
		RunID:     e.newRunID(),
		Layer:     req.Layer,
		StartedAt: e.now(),
	}

	ctx = logging.WithRunID(ctx, res.RunID)
	ctx = logging.WithLayer(ctx, req.Layer)
	if req.Trigger != "" {
		ctx = logging.WithComponent(ctx, req.Trigger)
	}

	written, err := e.export(ctx, req, res)
	res.Duration = e.now().Sub(res.StartedAt)
	e.finish(ctx, req, res, err)

	if err != nil {
		if written {
			return res, err
		}
		return nil, err
	}
	return res, nil
}

// export runs the export steps and reports whether the destination file was
// created.
func (e *Exporter) export(ctx context.Context, req Request, res *Result) (bool, error) {
	l, err := e.catalog.Lookup(ctx, req.Layer)
	if err != nil {
		if errors.Is(err, layer.ErrLayerNotFound) {
			return false, NewLayerNotFoundError(req.Layer)
		}
		return false, err
	}
	res.Kind = l.Kind

	if !l.Supported() {
		return false, NewUnsupportedLayerError(l.Name, l.Kind)
	}

	res.SourceCRS = l.CRS
	if res.SourceCRS == "" {
		res.SourceCRS = crs.WGS84
	}
	res.TargetCRS = res.SourceCRS
	if req.TargetCRS != "" {
		if res.TargetCRS, err = crs.Normalize(req.TargetCRS); err != nil {
			return false, err
		}
	}
	transform, err := e.registry.Transform(res.SourceCRS, res.TargetCRS)
	if err != nil {
		return false, err
	}

	in := surpac.InputFromLayer(l, transform, req.Field, surpac.ParseDefaultZ(req.DefaultZ))

	path, err := e.destination(ctx, req, l.Name)
	if err != nil {
		return false, err
	}
	res.Path = path

	stats, err := e.writeFile(ctx, path, in)
	if stats == nil {
		// The file could not be created.
		res.Path = ""
		return false, err
	}
	res.Stats = stats
	return true, err
}

func (e *Exporter) destination(ctx context.Context, req Request, name string) (string, error) {
	if req.Output != "" {
		return req.Output, nil
	}
	if e.prompter == nil {
		return e.DefaultPath(name), nil
	}

	path, err := e.prompter.PromptSavePath(ctx, name, name+FileExtension)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", ErrCancelled
	}
	return path, nil
}

// errWriter remembers the first write error so file failures can be told
// apart from serialization failures.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, err
}

func (e *Exporter) writeFile(ctx context.Context, path string, in *surpac.Input) (stats *surpac.Stats, err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, NewWriteError(path, "create", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, NewWriteError(path, "create", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = NewWriteError(path, "close", cerr)
		}
	}()

	ew := &errWriter{w: f}
	bw := bufio.NewWriter(ew)

	stats, serr := e.serializer.Write(ctx, bw, in)

	// Lines already produced stay in the file, even on failure.
	ferr := bw.Flush()

	switch {
	case ew.err != nil:
		return stats, NewWriteError(path, "write", ew.err)
	case serr != nil:
		return stats, serr
	case ferr != nil:
		return stats, NewWriteError(path, "write", ferr)
	}
	return stats, nil
}

func (e *Exporter) finish(ctx context.Context, req Request, res *Result, err error) {
	status := metrics.StatusSuccess
	switch {
	case errors.Is(err, ErrCancelled):
		status = metrics.StatusCancelled
	case err != nil:
		status = metrics.StatusError
	}

	log := e.logger.WithContext(ctx)
	switch status {
	case metrics.StatusSuccess:
		log.Info("export finished",
			"path", res.Path,
			"source_crs", res.SourceCRS,
			"target_crs", res.TargetCRS,
			"features", res.Stats.Features,
			"lines", res.Stats.Lines(),
			"duration", res.Duration,
		)
		if res.Stats.Skipped > 0 {
			log.Warn("features skipped", "count", res.Stats.Skipped)
		}
	case metrics.StatusCancelled:
		log.Debug("export cancelled")
	default:
		if res.Path != "" {
			log.Warn("partial file left on disk", "path", res.Path)
		}
		log.Error("export failed", "error", err)
	}

	sample := metrics.ExportSample{
		Status:   status,
		Kind:     res.Kind.String(),
		Duration: res.Duration,
	}
	run := Run{
		RunID:      res.RunID,
		Layer:      req.Layer,
		Path:       res.Path,
		Trigger:    req.Trigger,
		Status:     status,
		TargetCRS:  res.TargetCRS,
		StartedAt:  res.StartedAt,
		FinishedAt: res.StartedAt.Add(res.Duration),
	}
	if res.Stats != nil {
		sample.DataLines = res.Stats.DataLines
		sample.Terminators = res.Stats.Terminators
		sample.Skipped = res.Stats.Skipped
		sample.Elevation = res.Stats.Elevation
		run.DataLines = res.Stats.DataLines
		run.Terminators = res.Stats.Terminators
		run.Skipped = res.Stats.Skipped
	}
	if err != nil {
		run.Error = err.Error()
	}

	e.metrics.RecordExport(sample)
	if werr := e.metrics.WriteTextfile(e.textfile); werr != nil {
		log.Warn("failed to write metrics textfile", "path", e.textfile, "error", werr)
	}

	if e.history != nil {
		// History failures are logged, not returned.
		if herr := e.history.RecordRun(context.WithoutCancel(ctx), run); herr != nil {
			log.Warn("failed to record export history", "error", herr)
		}
	}
}
