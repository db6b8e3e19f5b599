// Package watch re-exports layers when their GeoJSON sources change.
//
// FileWatcher wraps fsnotify with extension filtering and collects changed
// paths until the source is quiet, so a burst of writes produces one
// callback. Runner maps the changed files back to catalog layers and
// exports each one with the "watch" trigger.
//
//	fw, _ := watch.NewFileWatcher(&watch.FileWatcherConfig{
//		Path:             "./layers",
//		DebounceInterval: 500 * time.Millisecond,
//		Extensions:       []string{".geojson"},
//	}, nil)
//	defer fw.Stop()
//
//	runner := watch.NewRunner(exporter, catalog, watch.RunnerConfig{}, logger)
//	err := runner.Watch(ctx, fw)
package watch
