package cli

import (
	"errors"
	"fmt"

	"earthworks/strwriter/pkg/config"
	"earthworks/strwriter/pkg/export"
)

// Exit codes returned by the strwriter command.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUserInput = 2
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// IsSilent reports whether err needs no notification. A cancelled save
// prompt ends the command quietly.
func IsSilent(err error) bool {
	return errors.Is(err, export.ErrCancelled)
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil || IsSilent(err) {
		return ExitOK
	}

	var notFound *export.LayerNotFoundError
	var unsupported *export.UnsupportedLayerError
	var cfgErr *ConfigError
	var validation config.ValidationError
	switch {
	case errors.As(err, &notFound),
		errors.As(err, &unsupported),
		errors.As(err, &cfgErr),
		errors.As(err, &validation):
		return ExitUserInput
	default:
		return ExitFailure
	}
}
