package config

import (
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"

	"earthworks/strwriter/pkg/crs"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "export.target_crs").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateSource(&cfg.Source)...)
	errs = append(errs, validateExport("export", &cfg.Export)...)
	errs = append(errs, validateSession(&cfg.Session)...)
	errs = append(errs, validateWatch(&cfg.Watch)...)
	errs = append(errs, validateSchedule(&cfg.Schedule)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateSource(cfg *SourceConfig) []FieldError {
	var errs []FieldError

	if cfg.CRS == "" {
		errs = append(errs, FieldError{
			Field:   "source.crs",
			Message: "source CRS is required",
		})
	} else if _, err := crs.Normalize(cfg.CRS); err != nil {
		errs = append(errs, FieldError{
			Field:   "source.crs",
			Message: err.Error(),
		})
	}

	return errs
}

func validateExport(prefix string, cfg *ExportConfig) []FieldError {
	var errs []FieldError

	if cfg.TargetCRS != "" {
		if _, err := crs.Normalize(cfg.TargetCRS); err != nil {
			errs = append(errs, FieldError{
				Field:   prefix + ".target_crs",
				Message: err.Error(),
			})
		}
	}

	if cfg.OutputDir == "" {
		errs = append(errs, FieldError{
			Field:   prefix + ".output_dir",
			Message: "output directory is required",
		})
	}

	return errs
}

func validateSession(cfg *SessionConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "session.path",
			Message: "session path is required when sessions are enabled",
		})
	}
	if cfg.HistoryLimit < 0 {
		errs = append(errs, FieldError{
			Field:   "session.history_limit",
			Message: "history limit must be non-negative",
		})
	}

	return errs
}

func validateWatch(cfg *WatchConfig) []FieldError {
	var errs []FieldError

	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "watch.debounce_interval",
			Message: "debounce interval must be non-negative",
		})
	}

	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("watch.extensions[%d]", i),
				Message: fmt.Sprintf("extension %q must start with '.'", ext),
			})
		}
	}

	return errs
}

func validateSchedule(cfg *ScheduleConfig) []FieldError {
	var errs []FieldError

	seen := make(map[string]bool, len(cfg.Jobs))
	for i, job := range cfg.Jobs {
		prefix := fmt.Sprintf("schedule.jobs[%d]", i)

		if job.Name == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: "job name is required",
			})
		} else if seen[job.Name] {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: fmt.Sprintf("duplicate job name %q", job.Name),
			})
		}
		seen[job.Name] = true

		if job.Cron == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".cron",
				Message: "cron expression is required",
			})
		} else if _, err := cron.ParseStandard(job.Cron); err != nil {
			errs = append(errs, FieldError{
				Field:   prefix + ".cron",
				Message: fmt.Sprintf("invalid cron expression %q: %v", job.Cron, err),
			})
		}

		if job.Layer == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".layer",
				Message: "layer is required",
			})
		}

		if job.TargetCRS != "" {
			if _, err := crs.Normalize(job.TargetCRS); err != nil {
				errs = append(errs, FieldError{
					Field:   prefix + ".target_crs",
					Message: err.Error(),
				})
			}
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text' or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Logging.File.MaxSizeMB < 0 || cfg.Logging.File.MaxBackups < 0 || cfg.Logging.File.MaxAgeDays < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.file",
			Message: "rotation limits must be non-negative",
		})
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Namespace == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.namespace",
			Message: "metrics namespace is required when metrics are enabled",
		})
	}
	if cfg.Metrics.ListenAddress != "" {
		if _, _, err := net.SplitHostPort(cfg.Metrics.ListenAddress); err != nil {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.listen_address",
				Message: fmt.Sprintf("invalid listen address %q: %v", cfg.Metrics.ListenAddress, err),
			})
		}
	}
	if !sort.Float64sAreSorted(cfg.Metrics.DurationBuckets) {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.duration_buckets",
			Message: "duration buckets must be in increasing order",
		})
	}

	return errs
}
