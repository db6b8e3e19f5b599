package config

import "time"

// Config is the root configuration structure for strwriter.
// It contains the layer source, export defaults, session persistence,
// watch and schedule triggers, and telemetry settings.
type Config struct {
	// Source describes where vector layers are read from.
	Source SourceConfig `yaml:"source" toml:"source"`

	// Export holds the defaults applied to every export request.
	Export ExportConfig `yaml:"export" toml:"export"`

	// Session controls persistence of the last dialog values and export
	// history.
	Session SessionConfig `yaml:"session" toml:"session"`

	// Watch configures re-export when the source changes on disk.
	Watch WatchConfig `yaml:"watch" toml:"watch"`

	// Schedule configures cron-driven exports.
	Schedule ScheduleConfig `yaml:"schedule" toml:"schedule"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
}

// SourceConfig describes the layer source.
type SourceConfig struct {
	// Path is a GeoJSON file or a directory of GeoJSON files. Each file is
	// one layer.
	Path string `yaml:"path" toml:"path"`

	// CRS is the coordinate reference system assumed for layers that do not
	// declare one.
	// Default: "EPSG:4326"
	CRS string `yaml:"crs" toml:"crs"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	// TargetCRS is the output coordinate reference system. Empty keeps the
	// layer's own CRS.
	TargetCRS string `yaml:"target_crs" toml:"target_crs"`

	// AttributeField is written in the last column of every data record.
	// Empty writes "None".
	AttributeField string `yaml:"attribute_field" toml:"attribute_field"`

	// DefaultZ is the elevation text used when neither the vertex nor the
	// ELEV field provides one. Unparseable text means 0.
	// Default: "0"
	DefaultZ string `yaml:"default_z" toml:"default_z"`

	// OutputDir is where non-interactive exports write {layer}.str.
	// Default: "."
	OutputDir string `yaml:"output_dir" toml:"output_dir"`
}

// SessionConfig controls the session database.
type SessionConfig struct {
	// Enabled turns on session persistence.
	// Default: true
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Path is the SQLite database file.
	// Default: "data/strwriter.db"
	Path string `yaml:"path" toml:"path"`

	// HistoryLimit is the number of runs listed by default.
	// Default: 20
	HistoryLimit int `yaml:"history_limit" toml:"history_limit"`
}

// WatchConfig configures the source watcher.
type WatchConfig struct {
	// DebounceInterval is how long the source must be quiet before the
	// export runs.
	// Default: 500ms
	DebounceInterval time.Duration `yaml:"debounce_interval" toml:"debounce_interval"`

	// Extensions lists the file extensions that trigger a re-export.
	// Default: [".geojson", ".json"]
	Extensions []string `yaml:"extensions" toml:"extensions"`

	// Layers names the layers re-exported on change. Empty re-exports every
	// line and point layer.
	Layers []string `yaml:"layers" toml:"layers"`
}

// ScheduleConfig lists cron-driven export jobs.
type ScheduleConfig struct {
	// Jobs are run by "strwriter schedule".
	Jobs []JobConfig `yaml:"jobs" toml:"jobs"`
}

// JobConfig is one scheduled export.
type JobConfig struct {
	// Name identifies the job in logs and history. Must be unique.
	Name string `yaml:"name" toml:"name"`

	// Cron is a standard 5-field cron expression.
	Cron string `yaml:"cron" toml:"cron"`

	// Layer is the layer to export.
	Layer string `yaml:"layer" toml:"layer"`

	// TargetCRS overrides export.target_crs.
	TargetCRS string `yaml:"target_crs" toml:"target_crs"`

	// AttributeField overrides export.attribute_field.
	AttributeField string `yaml:"attribute_field" toml:"attribute_field"`

	// DefaultZ overrides export.default_z.
	DefaultZ string `yaml:"default_z" toml:"default_z"`

	// Output is the destination file. Empty writes {output_dir}/{layer}.str.
	Output string `yaml:"output" toml:"output"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging" toml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level" toml:"level"`

	// Format is the log output format ("json", "text", "console").
	// Default: "text"
	Format string `yaml:"format" toml:"format"`

	// AddSource includes file and line number in logs.
	AddSource bool `yaml:"add_source" toml:"add_source"`

	// File enables output to a rotating log file.
	File LogFileConfig `yaml:"file" toml:"file"`
}

// LogFileConfig configures log file rotation.
type LogFileConfig struct {
	// Path is the log file. Empty logs to stderr.
	Path string `yaml:"path" toml:"path"`

	// MaxSizeMB is the size at which the file is rotated.
	// Default: 10
	MaxSizeMB int `yaml:"max_size_mb" toml:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	// Default: 3
	MaxBackups int `yaml:"max_backups" toml:"max_backups"`

	// MaxAgeDays is how long rotated files are kept.
	// Default: 28
	MaxAgeDays int `yaml:"max_age_days" toml:"max_age_days"`

	// Compress gzips rotated files.
	Compress bool `yaml:"compress" toml:"compress"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled turns metrics collection on.
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Namespace prefixes every metric name.
	// Default: "strwriter"
	Namespace string `yaml:"namespace" toml:"namespace"`

	// TextfilePath, when set, receives the metrics in Prometheus text format
	// after every export, for node_exporter's textfile collector.
	TextfilePath string `yaml:"textfile_path" toml:"textfile_path"`

	// ListenAddress, when set, serves /metrics while watch or schedule runs.
	ListenAddress string `yaml:"listen_address" toml:"listen_address"`

	// DurationBuckets are the export duration histogram buckets in seconds.
	// Default: [0.01, 0.05, 0.1, 0.5, 1, 5, 30]
	DurationBuckets []float64 `yaml:"duration_buckets" toml:"duration_buckets"`
}
