package export

import (
	"errors"
	"fmt"

	"earthworks/strwriter/pkg/layer"
)

// ErrCancelled is returned when the user dismisses the save prompt. Callers
// treat it as a silent no-op.
var ErrCancelled = errors.New("export cancelled")

// LayerNotFoundError reports a requested layer that the catalog does not
// hold. No file is touched.
type LayerNotFoundError struct {
	Layer string
}

// Error implements the error interface. The text is shown to users verbatim.
func (e *LayerNotFoundError) Error() string {
	return fmt.Sprintf("Layer %s not found.", e.Layer)
}

// Unwrap returns layer.ErrLayerNotFound.
func (e *LayerNotFoundError) Unwrap() error {
	return layer.ErrLayerNotFound
}

// NewLayerNotFoundError creates a new LayerNotFoundError.
func NewLayerNotFoundError(name string) *LayerNotFoundError {
	return &LayerNotFoundError{Layer: name}
}

// UnsupportedLayerError reports a layer whose geometry is neither lines nor
// points.
type UnsupportedLayerError struct {
	Layer string
	Kind  layer.Kind
}

// Error implements the error interface.
func (e *UnsupportedLayerError) Error() string {
	return fmt.Sprintf("Layer %s has unsupported geometry (%s); only line and point layers can be exported.", e.Layer, e.Kind)
}

// NewUnsupportedLayerError creates a new UnsupportedLayerError.
func NewUnsupportedLayerError(name string, kind layer.Kind) *UnsupportedLayerError {
	return &UnsupportedLayerError{Layer: name, Kind: kind}
}

// WriteError reports a failure creating or writing the destination file.
type WriteError struct {
	Path  string // Destination file
	Op    string // "create", "write" or "close"
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *WriteError) Unwrap() error {
	return e.Cause
}

// NewWriteError creates a new WriteError.
func NewWriteError(path, op string, cause error) *WriteError {
	return &WriteError{
		Path:  path,
		Op:    op,
		Cause: cause,
	}
}
