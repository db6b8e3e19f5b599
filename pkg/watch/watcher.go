package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"earthworks/strwriter/pkg/layer"
)

// FileWatcher watches layer source files and reports the changed paths
// after a quiet period.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	config  *FileWatcherConfig

	// file is set when Path names a single file; its directory is watched
	// instead so editors that replace the file are still seen.
	file string

	mu      sync.Mutex
	running bool
	changes *changeSet
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// FileWatcherConfig contains configuration for the file watcher.
type FileWatcherConfig struct {
	// Path is the layer file or directory to watch.
	Path string

	// DebounceInterval is the quiet period after the last change before
	// onChange runs (default: 500ms).
	DebounceInterval time.Duration

	// Extensions is the list of file extensions to watch.
	Extensions []string

	// SkipHidden controls whether to skip hidden files.
	SkipHidden bool
}

// DefaultFileWatcherConfig returns the default watcher configuration.
func DefaultFileWatcherConfig() *FileWatcherConfig {
	return &FileWatcherConfig{
		DebounceInterval: 500 * time.Millisecond,
		Extensions:       append([]string(nil), layer.DefaultExtensions...),
		SkipHidden:       true,
	}
}

// NewFileWatcher creates a file watcher. Nothing is watched until Watch.
func NewFileWatcher(config *FileWatcherConfig, logger *slog.Logger) (*FileWatcher, error) {
	if config == nil {
		config = DefaultFileWatcherConfig()
	}
	if len(config.Extensions) == 0 {
		config.Extensions = layer.DefaultExtensions
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		logger:  logger,
		config:  config,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called. After each burst of
// changes it calls onChange with the changed paths, sorted. A failing
// onChange is logged and watching continues.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func(ctx context.Context, paths []string) error) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	fw.running = true
	fw.changes = newChangeSet(fw.config.DebounceInterval, func(paths []string) {
		fw.logger.Info("Layer sources changed", "paths", paths)
		if err := onChange(ctx, paths); err != nil {
			fw.logger.Error("Change handler failed", "error", err)
		}
	})
	changes := fw.changes
	fw.mu.Unlock()

	defer func() {
		changes.Stop()
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		close(fw.doneCh)
	}()

	if err := fw.addPath(fw.config.Path); err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	fw.logger.Info("File watcher started",
		"path", fw.config.Path,
		"debounce_ms", fw.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("File watcher stopped (context cancelled)")
			return nil

		case <-fw.stopCh:
			fw.logger.Info("File watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !fw.shouldProcessEvent(event) {
				continue
			}
			fw.logger.Debug("File event detected", "path", event.Name, "op", event.Op.String())
			changes.Add(event.Name)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			fw.logger.Error("File watcher error", "error", err)
		}
	}
}

// Stop ends Watch, drops changes not yet reported and releases the
// underlying watcher.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	running := fw.running
	fw.mu.Unlock()

	if running {
		close(fw.stopCh)
		<-fw.doneCh
	}

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// addPath adds the directory holding the layer sources to the watcher.
// Directories are not walked; the catalog does not read subdirectories.
func (fw *FileWatcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	dir := path
	if !info.IsDir() {
		fw.file = filepath.Clean(path)
		dir = filepath.Dir(path)
	}

	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %q: %w", dir, err)
	}
	fw.logger.Debug("Watching directory", "path", dir)
	return nil
}

// shouldProcessEvent determines if an event should trigger an export.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	if fw.file != "" && filepath.Clean(event.Name) != fw.file {
		return false
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	if !fw.hasValidExtension(ext) {
		return false
	}

	if fw.config.SkipHidden && strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}

	return true
}

// hasValidExtension checks if a file extension should be watched.
func (fw *FileWatcher) hasValidExtension(ext string) bool {
	for _, validExt := range fw.config.Extensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// changeSet collects changed paths and flushes them together once no
// change has arrived for the quiet period.
type changeSet struct {
	quiet time.Duration
	flush func(paths []string)

	mu       sync.Mutex
	paths    map[string]struct{}
	timer    *time.Timer
	stopped  bool
	inflight sync.WaitGroup
}

func newChangeSet(quiet time.Duration, flush func(paths []string)) *changeSet {
	return &changeSet{
		quiet: quiet,
		flush: flush,
		paths: make(map[string]struct{}),
	}
}

// Add records path and restarts the quiet period.
func (c *changeSet) Add(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.paths[path] = struct{}{}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.quiet, c.fire)
}

// fire hands the collected paths, sorted, to flush.
func (c *changeSet) fire() {
	c.mu.Lock()
	if c.stopped || len(c.paths) == 0 {
		c.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(c.paths))
	for p := range c.paths {
		paths = append(paths, p)
	}
	c.paths = make(map[string]struct{})
	c.timer = nil
	c.inflight.Add(1)
	c.mu.Unlock()
	defer c.inflight.Done()

	sort.Strings(paths)
	c.flush(paths)
}

// Stop drops pending paths and waits for a flush already running. Later
// Adds are ignored. It must not be called from flush.
func (c *changeSet) Stop() {
	c.mu.Lock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.paths = make(map[string]struct{})
	c.mu.Unlock()

	c.inflight.Wait()
}
