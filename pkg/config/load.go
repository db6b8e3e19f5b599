package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// envPrefix prefixes every environment override.
const envPrefix = "STRWRITER_"

// LoadConfig loads configuration from a YAML or TOML file at the specified
// path. Files ending in .toml are decoded as TOML, everything else as YAML.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Decoding on top of the defaults keeps boolean defaults that the file
	// does not mention.
	cfg := NewDefaultConfig()
	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// LoadConfigWithEnvOverrides loads configuration from a file and applies
// environment variable overrides. Environment variables follow the naming
// convention STRWRITER_SECTION_FIELD (e.g., STRWRITER_EXPORT_TARGET_CRS) and
// always take precedence over the file. An empty path loads the defaults.
//
// The loading sequence is:
// 1. Load YAML or TOML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefaultConfig()
	} else {
		var err error
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// ResolvePath returns the configuration file to load. An explicit path is
// returned as is. Otherwise DefaultConfigFile is used when it exists, and
// "" (defaults only) when it does not.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultConfigFile); err != nil {
		return ""
	}
	return DefaultConfigFile
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Source overrides
	if val := getenv("SOURCE_PATH"); val != "" {
		cfg.Source.Path = val
	}
	if val := getenv("SOURCE_CRS"); val != "" {
		cfg.Source.CRS = val
	}

	// Export overrides
	if val := getenv("EXPORT_TARGET_CRS"); val != "" {
		cfg.Export.TargetCRS = val
	}
	if val := getenv("EXPORT_ATTRIBUTE_FIELD"); val != "" {
		cfg.Export.AttributeField = val
	}
	if val := getenv("EXPORT_DEFAULT_Z"); val != "" {
		cfg.Export.DefaultZ = val
	}
	if val := getenv("EXPORT_OUTPUT_DIR"); val != "" {
		cfg.Export.OutputDir = val
	}

	// Session overrides
	if val := getenv("SESSION_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Session.Enabled = b
		}
	}
	if val := getenv("SESSION_PATH"); val != "" {
		cfg.Session.Path = val
	}

	// Watch overrides
	if val := getenv("WATCH_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.DebounceInterval = d
		}
	}

	// Telemetry overrides
	if val := getenv("TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := getenv("TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := getenv("TELEMETRY_LOGGING_FILE_PATH"); val != "" {
		cfg.Telemetry.Logging.File.Path = val
	}
	if val := getenv("TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := getenv("TELEMETRY_METRICS_TEXTFILE_PATH"); val != "" {
		cfg.Telemetry.Metrics.TextfilePath = val
	}
	if val := getenv("TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
}

func getenv(key string) string {
	return os.Getenv(envPrefix + key)
}
