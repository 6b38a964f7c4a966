// SPDX-License-Identifier: MPL-2.0

package cabal

import "testing"

type testEnv struct{ os, arch, flavor string }

func (e testEnv) OS() string             { return e.os }
func (e testEnv) Arch() string           { return e.arch }
func (e testEnv) CompilerFlavor() string { return e.flavor }

var linuxGHC = testEnv{os: "linux", arch: "x86_64", flavor: "ghc"}

func TestParseCondition_Eval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cond string
		env  testEnv
		want bool
	}{
		{"os(linux)", linuxGHC, true},
		{"os(windows)", linuxGHC, false},
		{"os(darwin)", testEnv{os: "osx", arch: "aarch64", flavor: "ghc"}, true},
		{"os(macos)", testEnv{os: "osx", arch: "aarch64", flavor: "ghc"}, true},
		{"os(mingw32)", testEnv{os: "windows", arch: "x86_64", flavor: "ghc"}, true},
		{"arch(x86_64)", linuxGHC, true},
		{"arch(amd64)", linuxGHC, true},
		{"arch(aarch64)", linuxGHC, false},
		{"impl(ghc)", linuxGHC, true},
		{"impl(ghc >= 9.2 && < 9.8)", linuxGHC, true},
		{"impl(ghcjs)", linuxGHC, false},
		{"impl(ghcjs)", testEnv{os: "ghcjs", arch: "javascript", flavor: "ghcjs"}, true},
		{"flag(dev)", linuxGHC, false},
		{"!flag(dev)", linuxGHC, true},
		{"true", linuxGHC, true},
		{"False", linuxGHC, false},
		{"os(linux) && !impl(ghcjs)", linuxGHC, true},
		{"os(windows) || arch(x86_64)", linuxGHC, true},
		{"!(os(linux) || os(osx))", linuxGHC, false},
		{"os(linux) && (flag(a) || true)", linuxGHC, true},
		{"whatever(x)", linuxGHC, false},
	}

	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			t.Parallel()
			expr, err := ParseCondition(tt.cond)
			if err != nil {
				t.Fatalf("ParseCondition(%q) error = %v", tt.cond, err)
			}
			if got := expr.Eval(tt.env); got != tt.want {
				t.Errorf("%s.Eval() = %v, want %v", expr, got, tt.want)
			}
		})
	}
}

func TestParseCondition_Errors(t *testing.T) {
	t.Parallel()

	for _, cond := range []string{
		"",
		"os(linux",
		"(os(linux)",
		"os(linux) &&",
		"linux",
		"os(linux) os(osx)",
		"os(linux) & arch(x86_64)",
	} {
		t.Run(cond, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseCondition(cond); err == nil {
				t.Errorf("ParseCondition(%q) should fail", cond)
			}
		})
	}
}

func TestVar_Impl(t *testing.T) {
	t.Parallel()

	flavor, rng := Var{Kind: CondImpl, Arg: "ghc >= 9.4"}.Impl()
	if flavor != "ghc" || rng != ">= 9.4" {
		t.Errorf("Impl() = (%q, %q), want (\"ghc\", \">= 9.4\")", flavor, rng)
	}
	flavor, rng = Var{Kind: CondImpl, Arg: "ghcjs"}.Impl()
	if flavor != "ghcjs" || rng != "" {
		t.Errorf("Impl() = (%q, %q), want (\"ghcjs\", \"\")", flavor, rng)
	}
}

func TestUnknownVars(t *testing.T) {
	t.Parallel()

	expr, err := ParseCondition("os(linux) && (foo(x) || !bar(y))")
	if err != nil {
		t.Fatal(err)
	}
	got := unknownVars(expr)
	if len(got) != 2 || got[0] != "foo" || got[1] != "bar" {
		t.Errorf("unknownVars() = %v, want [foo bar]", got)
	}
}
