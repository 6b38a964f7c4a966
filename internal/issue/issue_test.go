// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestValuesOrderedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != int(ProcessFailedId) {
		t.Fatalf("len(Values()) = %d, want %d", len(values), ProcessFailedId)
	}
	for i, is := range values {
		if want := Id(i + 1); is.Id() != want {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, is.Id(), want)
		}
		if strings.TrimSpace(string(is.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", is.Id())
		}
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	is := Get(ProjectRootNotFoundId)
	if is == nil {
		t.Fatal("Get(ProjectRootNotFoundId) = nil")
	}
	if !strings.Contains(string(is.MarkdownMsg()), ".hsdev/") {
		t.Error("project root issue should mention the marker directory")
	}
	if Get(Id(0)) != nil {
		t.Error("Get(0) should be nil")
	}
}

func TestLinksAreCopies(t *testing.T) {
	t.Parallel()

	is := Get(ToolNotFoundId)
	links := is.ExtLinks()
	if len(links) == 0 {
		t.Fatal("tool issue should carry an external link")
	}
	links[0] = "mutated"
	if is.ExtLinks()[0] == "mutated" {
		t.Error("ExtLinks() exposes the internal slice")
	}
	if is.DocLinks() != nil && len(is.DocLinks()) != 0 {
		t.Error("tool issue should have no doc links")
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	out, err := Get(ManifestAmbiguousId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	for _, want := range []string{"Ambiguous package manifest", "See also", "github.com/sol/hpack"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered page missing %q:\n%s", want, out)
		}
	}
}
