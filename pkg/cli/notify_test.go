package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"earthworks/strwriter/pkg/export"
)

func TestNotifier(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	n := NewNotifier(out, errOut).Plain()

	n.Success("Layer haul_roads saved as out/haul_roads.str")
	n.Failure(export.NewLayerNotFoundError("benches"))

	if got, want := out.String(), "✓ Layer haul_roads saved as out/haul_roads.str\n"; got != want {
		t.Errorf("success = %q, want %q", got, want)
	}
	if got, want := errOut.String(), "✗ Layer benches not found.\n"; got != want {
		t.Errorf("failure = %q, want %q", got, want)
	}
}

func TestNotifierSilentErrors(t *testing.T) {
	errOut := &bytes.Buffer{}
	n := NewNotifier(&bytes.Buffer{}, errOut)

	n.Failure(nil)
	n.Failure(fmt.Errorf("prompt: %w", export.ErrCancelled))

	if errOut.Len() != 0 {
		t.Errorf("silent errors printed %q", errOut.String())
	}
}

func TestNotifierStyled(t *testing.T) {
	out := &bytes.Buffer{}
	NewNotifier(out, nil).Success("done")

	if !strings.Contains(out.String(), "done") {
		t.Errorf("styled output %q lost the message", out.String())
	}
}
