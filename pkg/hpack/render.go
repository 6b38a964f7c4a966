// SPDX-License-Identifier: MPL-2.0

package hpack

import (
	"fmt"
	"strings"
)

// cabalVersion is the cabal-version written into rendered descriptions.
const cabalVersion = "2.2"

// Render renders pkg as a .cabal package description. Package-wide build
// info is written into every component ahead of the component's own.
func Render(pkg *Package) string {
	var b strings.Builder
	field(&b, 0, "cabal-version", cabalVersion)
	field(&b, 0, "name", pkg.Name)
	field(&b, 0, "version", pkg.Version)
	field(&b, 0, "synopsis", pkg.Synopsis)
	field(&b, 0, "license", pkg.License)
	field(&b, 0, "build-type", "Simple")

	if pkg.Library != nil {
		b.WriteString("\nlibrary\n")
		renderBuildInfo(&b, 2, pkg.Common.Merge(pkg.Library.BuildInfo))
	}
	for _, exe := range pkg.Executables {
		fmt.Fprintf(&b, "\nexecutable %s\n", exe.Name)
		field(&b, 2, "main-is", exe.Main)
		renderBuildInfo(&b, 2, pkg.Common.Merge(exe.BuildInfo))
	}
	for _, test := range pkg.Tests {
		fmt.Fprintf(&b, "\ntest-suite %s\n", test.Name)
		field(&b, 2, "type", "exitcode-stdio-1.0")
		field(&b, 2, "main-is", test.Main)
		renderBuildInfo(&b, 2, pkg.Common.Merge(test.BuildInfo))
	}
	return b.String()
}

func renderBuildInfo(b *strings.Builder, indent int, bi BuildInfo) {
	field(b, indent, "hs-source-dirs", quoteList(bi.SourceDirs))
	field(b, indent, "default-extensions", strings.Join(bi.DefaultExtensions, " "))
	field(b, indent, "default-language", bi.Language)
	field(b, indent, "ghc-options", strings.Join(bi.GHCOptions, " "))
	field(b, indent, "ghcjs-options", strings.Join(bi.GHCJSOptions, " "))
	field(b, indent, "cpp-options", strings.Join(bi.CPPOptions, " "))
	field(b, indent, "build-depends", strings.Join(bi.Dependencies, ", "))

	pad := strings.Repeat(" ", indent)
	for _, c := range bi.When {
		fmt.Fprintf(b, "%sif %s\n", pad, c.Condition)
		renderBranch(b, indent+2, c.Then)
		if c.Else != nil {
			fmt.Fprintf(b, "%selse\n", pad)
			renderBranch(b, indent+2, *c.Else)
		}
	}
}

// renderBranch renders a conditional branch. cabal rejects empty branches,
// so an empty one gets a harmless placeholder field.
func renderBranch(b *strings.Builder, indent int, bi BuildInfo) {
	before := b.Len()
	renderBuildInfo(b, indent, bi)
	if b.Len() == before {
		field(b, indent, "buildable", "True")
	}
}

func field(b *strings.Builder, indent int, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s%s: %s\n", strings.Repeat(" ", indent), name, value)
}

// quoteList joins values with ", ", quoting the ones cabal would otherwise
// split.
func quoteList(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || strings.ContainsAny(v, " \t,\"\\") {
			v = `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v) + `"`
		}
		out = append(out, v)
	}
	return strings.Join(out, ", ")
}
