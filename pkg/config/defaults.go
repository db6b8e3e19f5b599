package config

import "time"

// Default values for configuration fields.
const (
	// DefaultConfigFile is read when no --config flag is given. A missing
	// file at this path is not an error.
	DefaultConfigFile = "strwriter.yaml"

	// Source defaults
	DefaultSourceCRS = "EPSG:4326"

	// Export defaults
	DefaultExportDefaultZ  = "0"
	DefaultExportOutputDir = "."

	// Session defaults
	DefaultSessionEnabled      = true
	DefaultSessionPath         = "data/strwriter.db"
	DefaultSessionHistoryLimit = 20

	// Watch defaults
	DefaultWatchDebounceInterval = 500 * time.Millisecond

	// Logging defaults
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultLogFileMaxSizeMB  = 10
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	// Metrics defaults
	DefaultMetricsNamespace = "strwriter"
)

// DefaultWatchExtensions are the source file extensions that trigger a
// re-export.
var DefaultWatchExtensions = []string{".geojson", ".json"}

// DefaultDurationBuckets are the export duration histogram buckets.
var DefaultDurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30}

// NewDefaultConfig returns a configuration with every default applied,
// including the boolean defaults that ApplyDefaults cannot tell apart from
// an explicit false.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Session.Enabled = DefaultSessionEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	applySourceDefaults(&cfg.Source)
	applyExportDefaults(&cfg.Export)
	applySessionDefaults(&cfg.Session)
	applyWatchDefaults(&cfg.Watch)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applySourceDefaults(cfg *SourceConfig) {
	if cfg.CRS == "" {
		cfg.CRS = DefaultSourceCRS
	}
}

func applyExportDefaults(cfg *ExportConfig) {
	if cfg.DefaultZ == "" {
		cfg.DefaultZ = DefaultExportDefaultZ
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultExportOutputDir
	}
}

func applySessionDefaults(cfg *SessionConfig) {
	if cfg.Path == "" {
		cfg.Path = DefaultSessionPath
	}
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = DefaultSessionHistoryLimit
	}
}

func applyWatchDefaults(cfg *WatchConfig) {
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = DefaultWatchDebounceInterval
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = append([]string(nil), DefaultWatchExtensions...)
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Logging.File.MaxSizeMB == 0 {
		cfg.Logging.File.MaxSizeMB = DefaultLogFileMaxSizeMB
	}
	if cfg.Logging.File.MaxBackups == 0 {
		cfg.Logging.File.MaxBackups = DefaultLogFileMaxBackups
	}
	if cfg.Logging.File.MaxAgeDays == 0 {
		cfg.Logging.File.MaxAgeDays = DefaultLogFileMaxAgeDays
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Metrics.DurationBuckets) == 0 {
		cfg.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
}
