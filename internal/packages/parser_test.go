// SPDX-License-Identifier: MPL-2.0

package packages

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/hsdev/hsdev/internal/discovery"
	"github.com/hsdev/hsdev/internal/testutil"
	"github.com/hsdev/hsdev/pkg/cabal"
	"github.com/hsdev/hsdev/pkg/hpack"
	"github.com/hsdev/hsdev/pkg/platform"
)

var linux = platform.NewModel("linux", "x86_64", "ghc")

const backendCabal = `cabal-version: 2.4
name: backend
library
  hs-source-dirs: src
  default-extensions: OverloadedStrings
  default-language: Haskell2010
  ghc-options: -Wall
  if os(linux)
    hs-source-dirs: src-linux
  if impl(ghcjs)
    hs-source-dirs: src-js
`

func newParser(t *testing.T) *Parser {
	t.Helper()
	caps, _ := testutil.Capabilities(t, nil)
	return NewParser(caps, linux)
}

func TestParser_Parse_Cabal(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"backend/backend.cabal": backendCabal})

	p := newParser(t)
	res, err := p.Parse(context.Background(), filepath.Join(root, "backend"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	d := res.Descriptor
	if d.Name() != "backend" {
		t.Errorf("Name() = %q", d.Name())
	}
	if d.Root() != filepath.Join(root, "backend") {
		t.Errorf("Root() = %q", d.Root())
	}
	if d.File() != filepath.Join(root, "backend", "backend.cabal") {
		t.Errorf("File() = %q", d.File())
	}
	if !slices.Equal(d.SourceDirs(), []string{"src", "src-linux"}) {
		t.Errorf("SourceDirs() = %v", d.SourceDirs())
	}
	if want := []string{filepath.Join(root, "backend", "src"), filepath.Join(root, "backend", "src-linux")}; !slices.Equal(d.SourcePaths(), want) {
		t.Errorf("SourcePaths() = %v, want %v", d.SourcePaths(), want)
	}
	if lang, ok := d.DefaultLanguage(); !ok || lang != "Haskell2010" {
		t.Errorf("DefaultLanguage() = %q, %v", lang, ok)
	}
	if !slices.Equal(d.DefaultExtensions(), []string{"OverloadedStrings"}) {
		t.Errorf("DefaultExtensions() = %v", d.DefaultExtensions())
	}
	opts := d.CompilerOptions()
	if len(opts) != 1 || opts[0].Flavor != cabal.FlavorGHC || !slices.Equal(opts[0].Options, []string{"-Wall"}) {
		t.Errorf("CompilerOptions() = %+v", opts)
	}
}

func TestParser_Parse_RelativeDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"backend/backend.cabal": backendCabal})
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	rel, err := filepath.Rel(wd, filepath.Join(root, "backend"))
	if err != nil {
		t.Skipf("no relative path from %s to the temp dir: %v", wd, err)
	}

	res, err := newParser(t).Parse(context.Background(), rel)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", rel, err)
	}
	d := res.Descriptor
	if !filepath.IsAbs(d.File()) || d.File() != filepath.Join(root, "backend", "backend.cabal") {
		t.Errorf("File() = %q, want absolute path", d.File())
	}
	if d.Root() != filepath.Join(root, "backend") {
		t.Errorf("Root() = %q", d.Root())
	}
}

func TestParser_Parse_Hpack(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"frontend/package.yaml":   "source-dirs: src\nlibrary: {}\nmystery: 1\n",
		"frontend/frontend.cabal": "this file is stale and must be ignored {",
	})

	p := newParser(t)
	res, err := p.Parse(context.Background(), filepath.Join(root, "frontend"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.Descriptor.Name() != "frontend" {
		t.Errorf("Name() = %q, want the directory name", res.Descriptor.Name())
	}
	if _, ok := res.Descriptor.DefaultLanguage(); ok {
		t.Error("DefaultLanguage() should be unset")
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "mystery") {
		t.Errorf("Warnings = %v", res.Warnings)
	}
}

func TestParser_Parse_DefaultSourceDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"common/common.cabal": "cabal-version: 2.4\nname: common\nlibrary\n  exposed-modules: Common\n"})

	p := newParser(t)
	res, err := p.Parse(context.Background(), filepath.Join(root, "common"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !slices.Equal(res.Descriptor.SourceDirs(), []string{"."}) {
		t.Errorf("SourceDirs() = %v, want [.]", res.Descriptor.SourceDirs())
	}
}

func TestParser_Parse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   map[string]string
		wantErr error
		target  any
	}{
		{"no manifest", map[string]string{"p/Main.hs": ""}, discovery.ErrManifestNotFound, new(*discovery.NotFoundError)},
		{"ambiguous", map[string]string{"p/a.cabal": backendCabal, "p/b.cabal": backendCabal}, discovery.ErrManifestAmbiguous, new(*discovery.AmbiguousError)},
		{"bad yaml", map[string]string{"p/package.yaml": "- not a mapping\n"}, hpack.ErrDecode, new(*hpack.DecodeError)},
		{"bad cabal", map[string]string{"p/p.cabal": "library\n  if os(\n"}, ErrParseFailed, new(*ParseFailedError)},
		{"no library", map[string]string{"p/p.cabal": "cabal-version: 2.4\nname: p\nexecutable p\n  main-is: Main.hs\n"}, ErrNoLibrary, new(*NoLibraryError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			testutil.WriteTree(t, root, tt.files)

			p := newParser(t)
			res, err := p.Parse(context.Background(), filepath.Join(root, "p"))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.As(err, tt.target) {
				t.Errorf("Parse() error type = %T", err)
			}
			if res.Descriptor != nil {
				t.Error("Descriptor should be nil on failure")
			}
		})
	}
}

func TestParser_ParseStrict_Logs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"good/good.cabal": "name: good\nlibrary\n  extensions: CPP\n",
		"bad/bad.cabal":   "name: bad\n",
	})

	caps, logs := testutil.Capabilities(t, nil)
	p := NewParser(caps, linux)

	if d := p.ParseStrict(context.Background(), filepath.Join(root, "good")); d == nil {
		t.Fatal("ParseStrict(good) = nil")
	}
	if d := p.ParseStrict(context.Background(), filepath.Join(root, "bad")); d != nil {
		t.Fatal("ParseStrict(bad) should be nil")
	}

	out := logs.String()
	for _, want := range []string{"WARN", "deprecated", "ERRO", "does not declare a library"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestParser_Parse_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newParser(t)
	if _, err := p.Parse(ctx, t.TempDir()); !errors.Is(err, context.Canceled) {
		t.Errorf("Parse() error = %v, want context.Canceled", err)
	}
}

func TestDescriptor_AccessorsCopy(t *testing.T) {
	t.Parallel()

	d := &Descriptor{
		sourceDirs:      []string{"src"},
		compilerOptions: []cabal.CompilerOption{{Flavor: cabal.FlavorGHC, Options: []string{"-O"}}},
	}
	d.SourceDirs()[0] = "changed"
	d.CompilerOptions()[0].Options[0] = "changed"
	if d.sourceDirs[0] != "src" || d.compilerOptions[0].Options[0] != "-O" {
		t.Error("accessors must not expose internal slices")
	}
}
