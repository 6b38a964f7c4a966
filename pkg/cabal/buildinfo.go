// SPDX-License-Identifier: MPL-2.0

package cabal

import "strings"

// Compiler flavors whose option fields are recognised.
const (
	FlavorGHC   CompilerFlavor = "ghc"
	FlavorGHCJS CompilerFlavor = "ghcjs"
)

type (
	// CompilerFlavor names a Haskell compiler, as in ghc-options/ghcjs-options.
	CompilerFlavor string

	// CompilerOption is the option list declared for one compiler flavor.
	CompilerOption struct {
		Flavor  CompilerFlavor
		Options []string
	}

	// BuildInfo is a section's build information after conditionals have
	// been evaluated. List fields accumulate across branches in file order;
	// DefaultLanguage takes the last value seen.
	BuildInfo struct {
		SourceDirs        []string
		DefaultExtensions []string
		OtherExtensions   []string
		DefaultLanguage   string
		CompilerOptions   []CompilerOption
		BuildDepends      []string
	}
)

// Resolve flattens the section, taking the branch of every conditional that
// env selects.
func (s *Section) Resolve(env Env) BuildInfo {
	var bi BuildInfo
	bi.resolve(s.Body, env)
	return bi
}

func (bi *BuildInfo) resolve(b Block, env Env) {
	for _, item := range b.Items {
		switch x := item.(type) {
		case *Field:
			bi.apply(x)
		case *Conditional:
			if x.Cond.Eval(env) {
				bi.resolve(x.Then, env)
			} else if x.Else != nil {
				bi.resolve(*x.Else, env)
			}
		}
	}
}

func (bi *BuildInfo) apply(f *Field) {
	switch f.Name {
	case "hs-source-dirs", "hs-source-dir":
		bi.SourceDirs = append(bi.SourceDirs, tokenize(f.Value, true)...)
	case "default-extensions", "extensions":
		bi.DefaultExtensions = append(bi.DefaultExtensions, tokenize(f.Value, true)...)
	case "other-extensions":
		bi.OtherExtensions = append(bi.OtherExtensions, tokenize(f.Value, true)...)
	case "default-language":
		if lang := strings.TrimSpace(f.Value); lang != "" {
			bi.DefaultLanguage = lang
		}
	case "ghc-options":
		bi.addOptions(FlavorGHC, tokenize(f.Value, false))
	case "ghcjs-options":
		bi.addOptions(FlavorGHCJS, tokenize(f.Value, false))
	case "build-depends":
		bi.BuildDepends = append(bi.BuildDepends, splitDepends(f.Value)...)
	}
}

func (bi *BuildInfo) addOptions(flavor CompilerFlavor, opts []string) {
	for i := range bi.CompilerOptions {
		if bi.CompilerOptions[i].Flavor == flavor {
			bi.CompilerOptions[i].Options = append(bi.CompilerOptions[i].Options, opts...)
			return
		}
	}
	bi.CompilerOptions = append(bi.CompilerOptions, CompilerOption{Flavor: flavor, Options: opts})
}

// Options returns the options declared for flavor, or nil.
func (bi BuildInfo) Options(flavor CompilerFlavor) []string {
	for _, co := range bi.CompilerOptions {
		if co.Flavor == flavor {
			return co.Options
		}
	}
	return nil
}
