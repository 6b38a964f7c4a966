// SPDX-License-Identifier: MPL-2.0

package hpack

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const frontendYAML = `
name: frontend
version: 0.2.0
synopsis: The web frontend
license: BSD3
source-dirs: shared
default-extensions:
  - OverloadedStrings
language: Haskell2010
ghc-options: -Wall -Wno-unused-do-bind
dependencies:
  - base >= 4 && < 5
  - text

library:
  source-dirs: src
  exposed-modules: Frontend
  when:
    - condition: impl(ghcjs)
      ghcjs-options: -dedupe
    - condition: os(windows)
      then:
        source-dirs: win
      else:
        source-dirs: posix

executables:
  frontend-exe:
    main: Main.hs
    source-dirs: app

tests:
  spec:
    main: Spec.hs
    source-dirs: test
    dependencies: hspec
`

func writeManifest(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecode(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, t.TempDir(), frontendYAML)
	pkg, warnings, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if pkg.Name != "frontend" || pkg.Version != "0.2.0" || pkg.License != "BSD3" {
		t.Errorf("package = %+v", pkg)
	}
	if !slices.Equal(pkg.Common.GHCOptions, []string{"-Wall", "-Wno-unused-do-bind"}) {
		t.Errorf("GHCOptions = %v", pkg.Common.GHCOptions)
	}
	if pkg.Library == nil {
		t.Fatal("Library = nil")
	}
	if len(pkg.Library.When) != 2 {
		t.Fatalf("When = %d entries, want 2", len(pkg.Library.When))
	}
	if c := pkg.Library.When[0]; c.Condition != "impl(ghcjs)" || !slices.Equal(c.Then.GHCJSOptions, []string{"-dedupe"}) {
		t.Errorf("inline when = %+v", c)
	}
	if c := pkg.Library.When[1]; c.Else == nil || !slices.Equal(c.Else.SourceDirs, []string{"posix"}) {
		t.Errorf("then/else when = %+v", c)
	}
	if len(pkg.Executables) != 1 || pkg.Executables[0].Name != "frontend-exe" || pkg.Executables[0].Main != "Main.hs" {
		t.Errorf("Executables = %+v", pkg.Executables)
	}
	if len(pkg.Tests) != 1 || !slices.Equal(pkg.Tests[0].Dependencies, []string{"hspec"}) {
		t.Errorf("Tests = %+v", pkg.Tests)
	}

	bi, ok := pkg.LibraryBuildInfo()
	if !ok {
		t.Fatal("LibraryBuildInfo() ok = false")
	}
	if !slices.Equal(bi.SourceDirs, []string{"shared", "src"}) || bi.Language != "Haskell2010" {
		t.Errorf("LibraryBuildInfo() = %+v", bi)
	}
}

func TestDecode_NameDefaultsToDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "backend")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	pkg, _, err := Decode(writeManifest(t, dir, "library:\n  source-dirs: src\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if pkg.Name != "backend" {
		t.Errorf("Name = %q, want backend", pkg.Name)
	}
}

func TestDecode_Warnings(t *testing.T) {
	t.Parallel()

	src := `
name: x
defaults: sol/hpack-template
mystery: 1
library:
  colour: blue
`
	_, warnings, err := DecodeBytes([]byte(src), "/p/x/package.yaml")
	if err != nil {
		t.Fatalf("DecodeBytes() error = %v", err)
	}
	joined := strings.Join(warnings, "\n")
	for _, want := range []string{
		"defaults are not supported",
		`unknown field "mystery" in top level`,
		`unknown field "colour" in library`,
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings missing %q:\n%s", want, joined)
		}
	}
}

func TestDecode_DependencyMapping(t *testing.T) {
	t.Parallel()

	pkg, _, err := DecodeBytes([]byte("name: x\ndependencies:\n  text: '>= 2'\n  base: ~\n"), "package.yaml")
	if err != nil {
		t.Fatalf("DecodeBytes() error = %v", err)
	}
	if want := []string{"base", "text >= 2"}; !slices.Equal(pkg.Common.Dependencies, want) {
		t.Errorf("Dependencies = %v, want %v", pkg.Common.Dependencies, want)
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"not yaml", "name: [unterminated", ""},
		{"not a mapping", "- a\n- b\n", "top level must be a mapping"},
		{"bad source-dirs", "source-dirs:\n  a: b\n", "source-dirs must be a string or a list of strings"},
		{"when without condition", "when:\n  source-dirs: x\n", "missing a condition"},
		{"else without then", "when:\n  condition: true\n  else:\n    source-dirs: y\n", "else without then"},
		{"mixed then", "when:\n  condition: true\n  then: {}\n  source-dirs: y\n", "mixes then/else"},
		{"bad executables", "executables: [a]\n", "executables must be a mapping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := DecodeBytes([]byte(tt.src), "/p/package.yaml")
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("DecodeBytes() error = %v, want *DecodeError", err)
			}
			if de.Path != "/p/package.yaml" || !errors.Is(err, ErrDecode) {
				t.Errorf("DecodeError = %+v", de)
			}
			if !strings.Contains(de.Message, tt.want) {
				t.Errorf("Message = %q, want it to contain %q", de.Message, tt.want)
			}
		})
	}
}

func TestDecode_MissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := Decode(filepath.Join(t.TempDir(), FileName))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Decode() error = %v, want ErrDecode", err)
	}
}
