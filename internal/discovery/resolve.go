// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hsdev/hsdev/pkg/hpack"
)

const (
	// FormatCanonical is a .cabal package description.
	FormatCanonical Format = iota
	// FormatAlternate is an hpack package.yaml.
	FormatAlternate
)

// CabalExt is the file extension of canonical manifests.
const CabalExt = ".cabal"

type (
	// Format identifies a manifest format.
	Format int

	// Reference is a resolved manifest path together with its format.
	Reference struct {
		Path   string
		Format Format
	}
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatCanonical:
		return "cabal"
	case FormatAlternate:
		return "hpack"
	default:
		return "unknown"
	}
}

// IsManifestName reports whether a file name looks like a manifest.
func IsManifestName(name string) bool {
	return name == hpack.FileName || (strings.HasSuffix(name, CabalExt) && len(name) > len(CabalExt))
}

// Resolve returns the manifest that describes the package at path, which
// may be a manifest file or a package directory.
//
// package.yaml takes precedence over .cabal files, because hpack generates
// the latter from the former. A directory with neither yields a
// *NotFoundError; a directory with several .cabal files and no package.yaml
// yields an *AmbiguousError.
func Resolve(path string) (Reference, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Reference{}, &NotFoundError{Path: path}
		}
		return Reference{}, fmt.Errorf("resolve manifest: %w", err)
	}
	if info.IsDir() {
		return resolveDir(path)
	}
	return resolveFile(path)
}

func resolveFile(path string) (Reference, error) {
	name := filepath.Base(path)
	switch {
	case name == hpack.FileName:
		return Reference{Path: path, Format: FormatAlternate}, nil
	case IsManifestName(name):
		sibling := filepath.Join(filepath.Dir(path), hpack.FileName)
		if isRegularFile(sibling) {
			return Reference{Path: sibling, Format: FormatAlternate}, nil
		}
		return Reference{Path: path, Format: FormatCanonical}, nil
	default:
		return Reference{}, &NotFoundError{Path: path}
	}
}

func resolveDir(dir string) (Reference, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Reference{}, fmt.Errorf("resolve manifest: %w", err)
	}

	var alternates, canonicals []string
	for _, entry := range entries {
		name := entry.Name()
		if !IsManifestName(name) {
			continue
		}
		full := filepath.Join(dir, name)
		if !isRegularFile(full) {
			continue
		}
		if name == hpack.FileName {
			alternates = append(alternates, full)
		} else {
			canonicals = append(canonicals, full)
		}
	}
	slices.Sort(canonicals)

	switch {
	case len(alternates) == 1:
		return Reference{Path: alternates[0], Format: FormatAlternate}, nil
	case len(alternates) == 0 && len(canonicals) == 1:
		return Reference{Path: canonicals[0], Format: FormatCanonical}, nil
	case len(alternates) == 0 && len(canonicals) == 0:
		return Reference{}, &NotFoundError{Path: dir}
	default:
		return Reference{}, &AmbiguousError{Dir: dir, Candidates: slices.Concat(alternates, canonicals)}
	}
}

// isRegularFile follows symlinks.
func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
