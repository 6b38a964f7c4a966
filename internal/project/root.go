// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// MarkerDir is the directory that marks a project root.
const MarkerDir = ".hsdev"

// ErrProjectRootNotFound is the sentinel error wrapped by RootNotFoundError.
var ErrProjectRootNotFound = errors.New("project root not found")

// RootNotFoundError is returned when no ancestor of Start holds MarkerDir.
type RootNotFoundError struct {
	Start string
}

// Error implements the error interface.
func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("no %s directory found in %s or any parent directory", MarkerDir, e.Start)
}

// Unwrap returns ErrProjectRootNotFound for errors.Is() compatibility.
func (e *RootNotFoundError) Unwrap() error { return ErrProjectRootNotFound }

// FindRoot walks upward from start and returns the first directory that
// contains MarkerDir.
func FindRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("find project root: %w", err)
	}
	for dir := abs; ; {
		info, statErr := os.Stat(filepath.Join(dir, MarkerDir))
		if statErr == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &RootNotFoundError{Start: abs}
		}
		dir = parent
	}
}

// WithRoot finds the project root above start and calls fn with it.
func WithRoot(start string, fn func(root string) error) error {
	root, err := FindRoot(start)
	if err != nil {
		return err
	}
	return fn(root)
}
