// SPDX-License-Identifier: MPL-2.0

package packages

import (
	"path/filepath"
	"slices"

	"github.com/hsdev/hsdev/pkg/cabal"
)

// Descriptor is an immutable summary of a package's library component.
type Descriptor struct {
	name              string
	file              string
	root              string
	sourceDirs        []string
	defaultExtensions []string
	defaultLanguage   string
	compilerOptions   []cabal.CompilerOption
}

// Name returns the package name.
func (d *Descriptor) Name() string { return d.name }

// File returns the manifest the descriptor was read from.
func (d *Descriptor) File() string { return d.file }

// Root returns the absolute package directory.
func (d *Descriptor) Root() string { return d.root }

// SourceDirs returns the library's source directories relative to Root.
// It is never empty: a package without any declares ".".
func (d *Descriptor) SourceDirs() []string { return slices.Clone(d.sourceDirs) }

// SourcePaths returns SourceDirs joined onto Root.
func (d *Descriptor) SourcePaths() []string {
	out := make([]string, len(d.sourceDirs))
	for i, dir := range d.sourceDirs {
		out[i] = filepath.Join(d.root, dir)
	}
	return out
}

// DefaultExtensions returns the library's default-extensions.
func (d *Descriptor) DefaultExtensions() []string { return slices.Clone(d.defaultExtensions) }

// DefaultLanguage returns the library's default-language, if declared.
func (d *Descriptor) DefaultLanguage() (string, bool) {
	return d.defaultLanguage, d.defaultLanguage != ""
}

// CompilerOptions returns the per-flavor compiler options.
func (d *Descriptor) CompilerOptions() []cabal.CompilerOption {
	out := make([]cabal.CompilerOption, len(d.compilerOptions))
	for i, co := range d.compilerOptions {
		out[i] = cabal.CompilerOption{Flavor: co.Flavor, Options: slices.Clone(co.Options)}
	}
	return out
}
