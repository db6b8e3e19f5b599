package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

const collection = `{"type":"FeatureCollection","features":[]}`

func TestDefaultFileWatcherConfig(t *testing.T) {
	config := DefaultFileWatcherConfig()

	if config.DebounceInterval != 500*time.Millisecond {
		t.Errorf("config.DebounceInterval = %v, want 500ms", config.DebounceInterval)
	}
	if len(config.Extensions) != 2 {
		t.Errorf("config.Extensions count = %d, want 2", len(config.Extensions))
	}
	if !config.SkipHidden {
		t.Error("config.SkipHidden = false, want true")
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(nil, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v, want nil", err)
	}
	if watcher.watcher == nil || watcher.stopCh == nil {
		t.Fatal("watcher not fully initialised")
	}
	if err := watcher.Stop(); err != nil {
		t.Errorf("Stop() before Watch error = %v", err)
	}
}

func startWatcher(t *testing.T, path string) (chan []string, context.CancelFunc) {
	t.Helper()

	config := DefaultFileWatcherConfig()
	config.Path = path
	config.DebounceInterval = 50 * time.Millisecond

	watcher, err := NewFileWatcher(config, nil)
	if err != nil {
		t.Fatal(err)
	}

	changes := make(chan []string, 10)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = watcher.Watch(ctx, func(_ context.Context, paths []string) error {
			changes <- paths
			return nil
		})
	}()
	t.Cleanup(func() {
		cancel()
		_ = watcher.Stop()
	})

	// Wait for watcher to start
	time.Sleep(100 * time.Millisecond)
	return changes, cancel
}

func TestFileWatcher_Watch_Directory(t *testing.T) {
	dir := t.TempDir()
	changes, _ := startWatcher(t, dir)

	file := filepath.Join(dir, "haul_roads.geojson")
	if err := os.WriteFile(file, []byte(collection), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changes:
		if len(paths) != 1 || paths[0] != file {
			t.Errorf("paths = %v, want [%s]", paths, file)
		}
	case <-time.After(time.Second):
		t.Fatal("change not reported after file creation")
	}
}

func TestFileWatcher_Watch_SingleFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "collars.geojson")
	other := filepath.Join(dir, "other.geojson")
	if err := os.WriteFile(file, []byte(collection), 0o644); err != nil {
		t.Fatal(err)
	}

	changes, _ := startWatcher(t, file)

	// A sibling file is ignored.
	if err := os.WriteFile(other, []byte(collection), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case paths := <-changes:
		t.Fatalf("unexpected change %v", paths)
	case <-time.After(200 * time.Millisecond):
	}

	if err := os.WriteFile(file, []byte(collection), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case paths := <-changes:
		if len(paths) != 1 || paths[0] != file {
			t.Errorf("paths = %v, want [%s]", paths, file)
		}
	case <-time.After(time.Second):
		t.Fatal("change not reported after file modification")
	}
}

func TestFileWatcher_Debouncing(t *testing.T) {
	dir := t.TempDir()
	changes, _ := startWatcher(t, dir)

	a := filepath.Join(dir, "a.geojson")
	b := filepath.Join(dir, "b.json")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(a, []byte(collection), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(b, []byte(collection), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case paths := <-changes:
		if len(paths) != 2 || paths[0] != a || paths[1] != b {
			t.Errorf("paths = %v, want [%s %s]", paths, a, b)
		}
	case <-time.After(time.Second):
		t.Fatal("change not reported")
	}

	select {
	case paths := <-changes:
		t.Errorf("burst produced a second callback: %v", paths)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFileWatcher_DoubleStart(t *testing.T) {
	dir := t.TempDir()
	config := DefaultFileWatcherConfig()
	config.Path = dir

	watcher, err := NewFileWatcher(config, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = watcher.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = watcher.Watch(ctx, func(context.Context, []string) error { return nil }) }()
	time.Sleep(50 * time.Millisecond)

	if err := watcher.Watch(ctx, func(context.Context, []string) error { return nil }); err == nil {
		t.Error("second Watch() error = nil, want already running")
	}
}

func TestFileWatcher_MissingPath(t *testing.T) {
	config := DefaultFileWatcherConfig()
	config.Path = filepath.Join(t.TempDir(), "missing")

	watcher, err := NewFileWatcher(config, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = watcher.Stop() }()

	if err := watcher.Watch(context.Background(), nil); err == nil {
		t.Error("Watch() on a missing path error = nil")
	}
}

func TestFileWatcher_ShouldProcessEvent(t *testing.T) {
	watcher, err := NewFileWatcher(DefaultFileWatcherConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = watcher.Stop() }()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"geojson write", fsnotify.Event{Name: "/data/roads.geojson", Op: fsnotify.Write}, true},
		{"upper case extension", fsnotify.Event{Name: "/data/ROADS.GEOJSON", Op: fsnotify.Create}, true},
		{"json remove", fsnotify.Event{Name: "/data/roads.json", Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: "/data/roads.geojson", Op: fsnotify.Chmod}, false},
		{"other extension", fsnotify.Event{Name: "/data/roads.str", Op: fsnotify.Write}, false},
		{"hidden file", fsnotify.Event{Name: "/data/.roads.geojson", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := watcher.shouldProcessEvent(tt.event); got != tt.want {
				t.Errorf("shouldProcessEvent(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestChangeSet_FlushesOnceAfterQuietPeriod(t *testing.T) {
	var mu sync.Mutex
	var flushed [][]string
	c := newChangeSet(30*time.Millisecond, func(paths []string) {
		mu.Lock()
		flushed = append(flushed, paths)
		mu.Unlock()
	})
	defer c.Stop()

	for _, p := range []string{"/data/b.geojson", "/data/a.geojson", "/data/b.geojson"} {
		c.Add(p)
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(flushed) != 1 {
		t.Fatalf("flush count = %d, want 1", len(flushed))
	}
	if got := flushed[0]; len(got) != 2 || got[0] != "/data/a.geojson" || got[1] != "/data/b.geojson" {
		t.Errorf("flushed = %v, want sorted unique paths", got)
	}
}

func TestChangeSet_Stop(t *testing.T) {
	var calls atomic.Int32
	c := newChangeSet(30*time.Millisecond, func([]string) { calls.Add(1) })

	c.Add("/data/roads.geojson")
	c.Stop()
	c.Stop()
	c.Add("/data/roads.geojson")

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("flush ran after Stop: %d calls", got)
	}
}

func TestChangeSet_StopWaitsForRunningFlush(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	c := newChangeSet(10*time.Millisecond, func([]string) {
		close(started)
		<-release
		finished.Store(true)
	})
	c.Add("/data/roads.geojson")

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("flush did not start")
	}

	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a flush was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the flush finished")
	}
	if !finished.Load() {
		t.Error("Stop returned before the flush completed")
	}
}
