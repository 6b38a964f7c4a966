// SPDX-License-Identifier: MPL-2.0

package cabal

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

const fullCabal = `cabal-version: 2.4
name:          backend
version:       0.1.0.0
description:
  First line.
  .
  Second paragraph.

-- shared settings
common warnings
  ghc-options: -Wall

library
  import: warnings
  hs-source-dirs: src
  default-language: Haskell2010
  default-extensions:
    OverloadedStrings
    LambdaCase
  build-depends:
      base >= 4 && < 5
    , text
  if os(windows)
    hs-source-dirs: src-windows
  elif os(linux)
    hs-source-dirs: src-linux
  else
    hs-source-dirs: src-other
  if impl(ghcjs)
    ghcjs-options: -dedupe
    default-language: GHC2021

executable backend
  main-is: Main.hs
  hs-source-dirs: app
`

func mustParse(t *testing.T, src string) ([]Warning, *Document) {
	t.Helper()
	warnings, doc, err := Parse([]byte(src), "test.cabal")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return warnings, doc
}

func TestParse_Document(t *testing.T) {
	t.Parallel()

	warnings, doc := mustParse(t, fullCabal)
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if doc.Name() != "backend" {
		t.Errorf("Name() = %q, want backend", doc.Name())
	}
	desc, _ := doc.Field("description")
	if desc != "First line.\n\nSecond paragraph." {
		t.Errorf("description = %q", desc)
	}
	if got := len(doc.SectionsOf(SectionExecutable)); got != 1 {
		t.Errorf("executables = %d, want 1", got)
	}
	if doc.Library() == nil {
		t.Fatal("Library() = nil")
	}
}

func TestSection_Resolve(t *testing.T) {
	t.Parallel()

	_, doc := mustParse(t, fullCabal)
	lib := doc.Library()

	tests := []struct {
		name     string
		env      testEnv
		wantDirs []string
		wantLang string
		wantJS   []string
	}{
		{"linux ghc", linuxGHC, []string{"src", "src-linux"}, "Haskell2010", nil},
		{"windows ghc", testEnv{"windows", "x86_64", "ghc"}, []string{"src", "src-windows"}, "Haskell2010", nil},
		{"ghcjs", testEnv{"ghcjs", "javascript", "ghcjs"}, []string{"src", "src-other"}, "GHC2021", []string{"-dedupe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			bi := lib.Resolve(tt.env)
			if !slices.Equal(bi.SourceDirs, tt.wantDirs) {
				t.Errorf("SourceDirs = %v, want %v", bi.SourceDirs, tt.wantDirs)
			}
			if bi.DefaultLanguage != tt.wantLang {
				t.Errorf("DefaultLanguage = %q, want %q", bi.DefaultLanguage, tt.wantLang)
			}
			if got := bi.Options(FlavorGHC); !slices.Equal(got, []string{"-Wall"}) {
				t.Errorf("ghc options = %v, want [-Wall] from the common stanza", got)
			}
			if got := bi.Options(FlavorGHCJS); !slices.Equal(got, tt.wantJS) {
				t.Errorf("ghcjs options = %v, want %v", got, tt.wantJS)
			}
			if !slices.Equal(bi.DefaultExtensions, []string{"OverloadedStrings", "LambdaCase"}) {
				t.Errorf("DefaultExtensions = %v", bi.DefaultExtensions)
			}
			if !slices.Equal(bi.BuildDepends, []string{"base >= 4 && < 5", "text"}) {
				t.Errorf("BuildDepends = %v", bi.BuildDepends)
			}
		})
	}
}

func TestParse_Braces(t *testing.T) {
	t.Parallel()

	src := `name: frontend
cabal-version: 2.4
library {
  hs-source-dirs: src
  if os(linux) {
    hs-source-dirs: linux
  } else {
    hs-source-dirs: other
  }
  default-language: Haskell2010
}
`
	_, doc := mustParse(t, src)
	bi := doc.Library().Resolve(testEnv{"osx", "aarch64", "ghc"})
	if !slices.Equal(bi.SourceDirs, []string{"src", "other"}) {
		t.Errorf("SourceDirs = %v, want [src other]", bi.SourceDirs)
	}
	if bi.DefaultLanguage != "Haskell2010" {
		t.Errorf("DefaultLanguage = %q", bi.DefaultLanguage)
	}
}

func TestParse_Warnings(t *testing.T) {
	t.Parallel()

	src := "name: common\ncabal-version: 2.4\n" +
		"library\n" +
		"\textensions: CPP\n" +
		"\tif foo(bar)\n" +
		"\t  ghc-options: -O2\n" +
		"\tdefault-language: Haskell2010\n" +
		"\tdefault-language: GHC2021\n" +
		"weird-stanza x\n" +
		"  field: 1\n"

	warnings, doc := mustParse(t, src)
	var msgs []string
	for _, w := range warnings {
		msgs = append(msgs, w.String())
	}
	joined := strings.Join(msgs, "\n")
	for _, want := range []string{
		"tab character used for indentation",
		`field "extensions" is deprecated`,
		`unknown condition "foo"`,
		`field "default-language" already set on line 7`,
		`ignoring unknown section "weird-stanza"`,
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings missing %q:\n%s", want, joined)
		}
	}
	if len(doc.Sections) != 1 {
		t.Errorf("sections = %d, want the unknown stanza to be dropped", len(doc.Sections))
	}
	bi := doc.Library().Resolve(linuxGHC)
	if !slices.Equal(bi.DefaultExtensions, []string{"CPP"}) || bi.DefaultLanguage != "GHC2021" {
		t.Errorf("Resolve() = %+v", bi)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing name", "cabal-version: 2.4\nlibrary\n  hs-source-dirs: src\n", `missing required field "name"`},
		{"else without if", "name: x\nlibrary\n  else\n    ghc-options: -O\n", `"else" without a preceding "if"`},
		{"bad condition", "name: x\nlibrary\n  if os(linux\n    ghc-options: -O\n", "invalid condition"},
		{"undefined import", "name: x\nlibrary\n  import: nope\n", `undefined common stanza "nope"`},
		{"unnamed executable", "name: x\nexecutable\n  main-is: Main.hs\n", "executable section requires a name"},
		{"inconsistent indentation", "name: x\nlibrary\n    hs-source-dirs: src\n  ghc-options: -O\n", "inconsistent indentation"},
		{"missing brace", "name: x\nlibrary {\n  hs-source-dirs: src\n", "missing '}'"},
		{"top-level if", "name: x\nif os(linux)\n  ghc-options: -O\n", "only allowed inside a section"},
		{"nested section", "name: x\nlibrary\n  executable y\n    main-is: A.hs\n", "cannot be nested"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, doc, err := Parse([]byte(tt.src), "bad.cabal")
			if err == nil {
				t.Fatal("Parse() should fail")
			}
			if doc != nil {
				t.Error("Parse() should not return a document on failure")
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("error should wrap ErrParse, got %v", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) || pe.Filename != "bad.cabal" {
				t.Fatalf("error should be a *ParseError for bad.cabal, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestParse_CollectsAllDiagnostics(t *testing.T) {
	t.Parallel()

	_, _, err := Parse([]byte("library\n  else\n  import: missing\n"), "multi.cabal")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
	if len(pe.Diagnostics) != 3 {
		t.Errorf("Diagnostics = %v, want 3 entries", pe.Diagnostics)
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		commas bool
		want   []string
	}{
		{"src, lib\n  test", true, []string{"src", "lib", "test"}},
		{`"dir with space", other`, true, []string{"dir with space", "other"}},
		{`-Wall -optl-Wl,-rpath "-with \"q\""`, false, []string{"-Wall", "-optl-Wl,-rpath", `-with "q"`}},
		{"", true, nil},
	}
	for _, tt := range tests {
		if got := tokenize(tt.in, tt.commas); !slices.Equal(got, tt.want) {
			t.Errorf("tokenize(%q, %v) = %q, want %q", tt.in, tt.commas, got, tt.want)
		}
	}
}
