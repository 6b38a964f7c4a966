// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/hsdev/hsdev/internal/project"
)

// fakeLookPath resolves names found in bin to /usr/bin/<name>.
func fakeLookPath(bin ...string) LookPathFunc {
	return func(file string) (string, error) {
		for _, b := range bin {
			if b == file {
				if filepath.IsAbs(file) {
					return file, nil
				}
				return filepath.Join(string(filepath.Separator), "usr", "bin", file), nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	abs := func(name string) string { return filepath.Join(string(filepath.Separator), "usr", "bin", name) }

	tests := []struct {
		name      string
		mode      project.ShellMode
		overrides Tools
		installed []string
		want      Tools
		wantTool  string
	}{
		{
			name:      "nix mode resolves only nix-shell",
			mode:      project.ShellNix,
			installed: []string{"nix-shell"},
			want:      Tools{GHCi: "ghci", GHCid: "ghcid", NixShell: abs("nix-shell")},
		},
		{
			name:      "nix mode without nix-shell",
			mode:      project.ShellNix,
			installed: []string{"ghci", "ghcid"},
			wantTool:  "nix-shell",
		},
		{
			name:      "host mode resolves ghci and ghcid",
			mode:      project.ShellHost,
			installed: []string{"ghci", "ghcid"},
			want:      Tools{GHCi: abs("ghci"), GHCid: abs("ghcid")},
		},
		{
			name:      "host mode without ghcid",
			mode:      project.ShellHost,
			installed: []string{"ghci", "nix-shell"},
			wantTool:  "ghcid",
		},
		{
			name:      "overrides win",
			mode:      project.ShellHost,
			overrides: Tools{GHCi: "ghci-9.6", GHCid: "ghcid"},
			installed: []string{"ghci-9.6", "ghcid"},
			want:      Tools{GHCi: abs("ghci-9.6"), GHCid: abs("ghcid")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tt.mode, tt.overrides, fakeLookPath(tt.installed...))
			if tt.wantTool != "" {
				var mte *MissingToolError
				if !errors.As(err, &mte) || mte.Name != tt.wantTool || !errors.Is(err, ErrToolNotFound) {
					t.Fatalf("Resolve() error = %v, want missing %s", err, tt.wantTool)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
