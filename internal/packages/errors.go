// SPDX-License-Identifier: MPL-2.0

package packages

import (
	"errors"
	"fmt"
)

var (
	// ErrParseFailed is the sentinel error wrapped by ParseFailedError.
	ErrParseFailed = errors.New("package description could not be parsed")

	// ErrNoLibrary is the sentinel error wrapped by NoLibraryError.
	ErrNoLibrary = errors.New("package has no library")
)

type (
	// ParseFailedError reports a manifest that could not be read or parsed.
	ParseFailedError struct {
		Path    string
		Message string
	}

	// NoLibraryError reports a package without a main library section.
	NoLibraryError struct {
		Path string
	}
)

// Error implements the error interface.
func (e *ParseFailedError) Error() string {
	return fmt.Sprintf("failed to parse %s: %s", e.Path, e.Message)
}

// Unwrap returns ErrParseFailed for errors.Is() compatibility.
func (e *ParseFailedError) Unwrap() error { return ErrParseFailed }

// Error implements the error interface.
func (e *NoLibraryError) Error() string {
	return fmt.Sprintf("%s does not declare a library", e.Path)
}

// Unwrap returns ErrNoLibrary for errors.Is() compatibility.
func (e *NoLibraryError) Unwrap() error { return ErrNoLibrary }
