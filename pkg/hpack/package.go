// SPDX-License-Identifier: MPL-2.0

package hpack

import (
	"errors"
	"fmt"
	"slices"
)

// ErrDecode is the sentinel error wrapped by DecodeError.
var ErrDecode = errors.New("invalid package.yaml")

type (
	// BuildInfo holds the build-info fields hpack allows at the top level and
	// in every component.
	BuildInfo struct {
		SourceDirs        []string
		DefaultExtensions []string
		Language          string
		GHCOptions        []string
		GHCJSOptions      []string
		CPPOptions        []string
		Dependencies      []string
		When              []Conditional
	}

	// Conditional is a "when" entry. Condition uses cabal's condition syntax.
	Conditional struct {
		Condition string
		Then      BuildInfo
		Else      *BuildInfo
	}

	// Component is a library, executable or test suite.
	Component struct {
		// Name is empty for the library.
		Name string
		// Main is the main module or file of executables and tests.
		Main string
		BuildInfo
	}

	// Package is a decoded package.yaml.
	Package struct {
		Name     string
		Version  string
		Synopsis string
		License  string
		// Common is the top-level build info merged into every component.
		Common      BuildInfo
		Library     *Component
		Executables []Component
		Tests       []Component
	}

	// DecodeError reports a package.yaml that could not be decoded.
	DecodeError struct {
		Path    string
		Message string
	}
)

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Unwrap returns ErrDecode for errors.Is() compatibility.
func (e *DecodeError) Unwrap() error { return ErrDecode }

// Merge returns b with other's fields appended. other's language, when
// set, replaces b's.
func (b BuildInfo) Merge(other BuildInfo) BuildInfo {
	out := BuildInfo{
		SourceDirs:        concat(b.SourceDirs, other.SourceDirs),
		DefaultExtensions: concat(b.DefaultExtensions, other.DefaultExtensions),
		Language:          b.Language,
		GHCOptions:        concat(b.GHCOptions, other.GHCOptions),
		GHCJSOptions:      concat(b.GHCJSOptions, other.GHCJSOptions),
		CPPOptions:        concat(b.CPPOptions, other.CPPOptions),
		Dependencies:      concat(b.Dependencies, other.Dependencies),
		When:              concat(b.When, other.When),
	}
	if other.Language != "" {
		out.Language = other.Language
	}
	return out
}

// LibraryBuildInfo returns the package-wide build info merged with the
// library's own. ok is false when the package declares no library.
func (p *Package) LibraryBuildInfo() (bi BuildInfo, ok bool) {
	if p.Library == nil {
		return BuildInfo{}, false
	}
	return p.Common.Merge(p.Library.BuildInfo), true
}

func concat[T any](a, b []T) []T {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	return slices.Concat(a, b)
}
