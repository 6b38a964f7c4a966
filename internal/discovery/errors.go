// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrManifestNotFound is the sentinel error wrapped by NotFoundError.
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrManifestAmbiguous is the sentinel error wrapped by AmbiguousError.
	ErrManifestAmbiguous = errors.New("ambiguous manifest")
)

type (
	// NotFoundError is returned when a path holds no package manifest.
	NotFoundError struct {
		Path string
	}

	// AmbiguousError is returned when a directory holds several manifests
	// and none of the resolution rules picks one.
	AmbiguousError struct {
		Dir        string
		Candidates []string
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no .cabal file or package.yaml found at %s", e.Path)
}

// Unwrap returns ErrManifestNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrManifestNotFound }

// Error implements the error interface.
func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("multiple package manifests in %s: %s", e.Dir, strings.Join(e.Candidates, ", "))
}

// Unwrap returns ErrManifestAmbiguous for errors.Is() compatibility.
func (e *AmbiguousError) Unwrap() error { return ErrManifestAmbiguous }
