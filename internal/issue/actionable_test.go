// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableErrorError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "locate project root"},
			want: "failed to locate project root",
		},
		{
			name: "operation with resource",
			err:  &ActionableError{Operation: "parse package", Resource: "backend"},
			want: "failed to parse package: backend",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "parse package",
				Resource:  "backend",
				Cause:     errors.New("line 3: missing name"),
			},
			want: "failed to parse package: backend: line 3: missing name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableErrorChain(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("not found")
	err := NewErrorContext().
		WithOperation("resolve tool").
		WithResource("ghcid").
		Wrap(fmt.Errorf("lookup: %w", sentinel)).
		BuildError()

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should reach the wrapped sentinel")
	}
	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("errors.As(*ActionableError) failed for %T", err)
	}
	if ae.HasSuggestions() {
		t.Error("HasSuggestions() = true, want false")
	}
}

func TestActionableErrorFormat(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("load configuration").
		WithSuggestion("Run 'hsdev config show'").
		WithSuggestions("Check the CUE syntax", "Check .hsdev/project.toml").
		Wrap(fmt.Errorf("decode: %w", errors.New("expected string"))).
		Build()

	plain := err.Format(false)
	if strings.Count(plain, "  • ") != 3 {
		t.Errorf("Format(false) should list three suggestions:\n%s", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	for _, want := range []string{"Error chain:", "1. decode: expected string", "2. expected string"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, verbose)
		}
	}
}

func TestBuildWithoutOperation(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil", err)
	}
	if WrapWithOperation(nil, "noop") != nil {
		t.Error("WrapWithOperation(nil) should return nil")
	}
	if got := WrapWithOperation(errors.New("boom"), "start ghcid").Error(); got != "failed to start ghcid: boom" {
		t.Errorf("WrapWithOperation().Error() = %q", got)
	}
}
