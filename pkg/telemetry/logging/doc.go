// Package logging provides structured logging for export runs.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Context-aware logging with run IDs and layer names
//   - Optional rotating file output
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "text",
//	})
//
//	ctx = logging.WithRunID(ctx, runID)
//	ctx = logging.WithLayer(ctx, "haul_roads")
//	logger.InfoContext(ctx, "export finished", "lines", 1204)
//
// # File Output
//
// Setting Config.File.Path writes logs to a file rotated by size, keeping
// MaxBackups old files for at most MaxAgeDays days.
package logging
