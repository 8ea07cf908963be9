// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableErrorMessage(t *testing.T) {
	t.Parallel()

	cause := errors.New("permission denied")
	ae := NewErrorContext().
		WithOperation("read mods directory").
		WithResource("./mods").
		Wrap(cause).
		Build()

	want := "failed to read mods directory: ./mods: permission denied"
	if got := ae.Error(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestActionableErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	ae := WrapWithOperation(cause, "extract payload")

	if !errors.Is(ae, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestWrapWithOperationNilError(t *testing.T) {
	t.Parallel()

	if ae := WrapWithOperation(nil, "anything"); ae != nil {
		t.Errorf("expected nil for nil cause, got %v", ae)
	}
}

func TestBuildRequiresOperation(t *testing.T) {
	t.Parallel()

	if ae := NewErrorContext().WithResource("./mods").Build(); ae != nil {
		t.Errorf("expected nil without an operation, got %v", ae)
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("expected nil error without an operation, got %v", err)
	}
}

func TestFormatIncludesSuggestions(t *testing.T) {
	t.Parallel()

	ae := NewErrorContext().
		WithOperation("resolve load order").
		WithSuggestion("Remove one of the conflicting mods").
		WithSuggestion("Run with --verbose for details").
		Build()

	out := ae.Format(false)
	if !strings.Contains(out, "• Remove one of the conflicting mods") {
		t.Errorf("missing first suggestion in %q", out)
	}
	if !strings.Contains(out, "• Run with --verbose for details") {
		t.Errorf("missing second suggestion in %q", out)
	}
}

func TestFormatVerboseShowsErrorChain(t *testing.T) {
	t.Parallel()

	inner := errors.New("checksum mismatch")
	mid := NewErrorContext().
		WithOperation("verify cache entry").
		Wrap(inner).
		Build()
	outer := NewErrorContext().
		WithOperation("extract mod payloads").
		Wrap(mid).
		Build()

	out := outer.Format(true)
	if !strings.Contains(out, "Error chain:") {
		t.Errorf("missing error chain in %q", out)
	}
	if !strings.Contains(out, "checksum mismatch") {
		t.Errorf("missing innermost cause in %q", out)
	}

	if terse := outer.Format(false); strings.Contains(terse, "Error chain:") {
		t.Errorf("non-verbose format must not include the chain: %q", terse)
	}
}
