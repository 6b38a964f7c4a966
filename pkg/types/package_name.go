// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPackageName is the sentinel error wrapped by InvalidPackageNameError.
var ErrInvalidPackageName = errors.New("invalid package name")

type (
	// PackageName is a Haskell package name such as "backend" or "text-show".
	// Names are hyphen-separated components of letters and digits, and every
	// component must contain at least one letter.
	PackageName string

	// InvalidPackageNameError is returned when a PackageName is malformed.
	InvalidPackageNameError struct {
		Value  PackageName
		Reason string
	}
)

// String returns the string representation of the PackageName.
func (n PackageName) String() string { return string(n) }

// Validate returns an error if the name is not a well-formed package name.
func (n PackageName) Validate() error {
	if n == "" {
		return &InvalidPackageNameError{Value: n, Reason: "must be non-empty"}
	}
	for part := range strings.SplitSeq(string(n), "-") {
		if part == "" {
			return &InvalidPackageNameError{Value: n, Reason: "empty component"}
		}
		hasLetter := false
		for _, r := range part {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
				hasLetter = true
			case r >= '0' && r <= '9':
			default:
				return &InvalidPackageNameError{Value: n, Reason: fmt.Sprintf("unexpected character %q", r)}
			}
		}
		if !hasLetter {
			return &InvalidPackageNameError{Value: n, Reason: fmt.Sprintf("component %q has no letter", part)}
		}
	}
	return nil
}

// Error implements the error interface for InvalidPackageNameError.
func (e *InvalidPackageNameError) Error() string {
	return fmt.Sprintf("invalid package name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidPackageName for errors.Is() compatibility.
func (e *InvalidPackageNameError) Unwrap() error { return ErrInvalidPackageName }
