package cli

import (
	"errors"
	"fmt"
	"testing"

	"earthworks/strwriter/pkg/config"
	"earthworks/strwriter/pkg/export"
	"earthworks/strwriter/pkg/layer"
)

func TestConfigError(t *testing.T) {
	err := &ConfigError{
		Field:   "telemetry.metrics.listen_address",
		Message: "missing required field",
	}

	expected := "config error in telemetry.metrics.listen_address: missing required field"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("field", "message")
	if err.Field != "field" {
		t.Errorf("Field = %q, want %q", err.Field, "field")
	}
	if err.Message != "message" {
		t.Errorf("Message = %q, want %q", err.Message, "message")
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := &CommandError{
		Command: "export",
		Err:     underlyingErr,
	}

	expected := "command export failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := &CommandError{
		Command: "export",
		Err:     underlyingErr,
	}

	unwrapped := err.Unwrap()
	if unwrapped != underlyingErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, underlyingErr)
	}

	// Test with errors.Is
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should work with CommandError.Unwrap()")
	}
}

func TestNewCommandError(t *testing.T) {
	underlyingErr := errors.New("test")
	err := NewCommandError("command", underlyingErr)

	if err.Command != "command" {
		t.Errorf("Command = %q, want %q", err.Command, "command")
	}
	if err.Err != underlyingErr {
		t.Errorf("Err = %v, want %v", err.Err, underlyingErr)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"cancelled", export.ErrCancelled, ExitOK},
		{"wrapped cancel", fmt.Errorf("export: %w", export.ErrCancelled), ExitOK},
		{"layer not found", export.NewLayerNotFoundError("benches"), ExitUserInput},
		{"unsupported", export.NewUnsupportedLayerError("pits", layer.KindOther), ExitUserInput},
		{"config", NewConfigError("output", "bad"), ExitUserInput},
		{"validation", config.ValidationError{Errors: []config.FieldError{{Field: "source.crs", Message: "bad"}}}, ExitUserInput},
		{"command wrapping not found", NewCommandError("export", export.NewLayerNotFoundError("x")), ExitUserInput},
		{"write failure", export.NewWriteError("out.str", "create", errors.New("denied")), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsSilent(t *testing.T) {
	if !IsSilent(export.ErrCancelled) {
		t.Error("IsSilent(ErrCancelled) = false")
	}
	if IsSilent(errors.New("boom")) {
		t.Error("IsSilent(other) = true")
	}
}
