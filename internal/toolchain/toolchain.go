// SPDX-License-Identifier: MPL-2.0

// Package toolchain resolves the external programs hsdev drives.
package toolchain

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/hsdev/hsdev/internal/project"
)

// Default program names.
const (
	DefaultGHCi     = "ghci"
	DefaultGHCid    = "ghcid"
	DefaultNixShell = "nix-shell"
)

// ErrToolNotFound is the sentinel error wrapped by MissingToolError.
var ErrToolNotFound = errors.New("tool not found")

type (
	// Tools holds the programs used for a session. A bare name is resolved
	// by the project shell; anything else is an absolute path.
	Tools struct {
		GHCi     string
		GHCid    string
		NixShell string
	}

	// MissingToolError reports a program that is not installed.
	MissingToolError struct {
		Name string
		Err  error
	}

	// LookPathFunc matches exec.LookPath.
	LookPathFunc func(file string) (string, error)
)

// Error implements the error interface.
func (e *MissingToolError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Name, e.Err)
}

// Unwrap returns ErrToolNotFound for errors.Is() compatibility.
func (e *MissingToolError) Unwrap() error { return ErrToolNotFound }

// Resolve fills in defaults for unset tools and resolves the ones hsdev
// starts itself to absolute paths, failing fast when any is missing.
//
// In nix mode only nix-shell is started directly; ghci and ghcid come from
// the Nix shell and are left as given. In host mode ghci and ghcid are
// resolved and nix-shell is not needed.
func Resolve(mode project.ShellMode, overrides Tools, lookPath LookPathFunc) (Tools, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	tools := Tools{
		GHCi:     orDefault(overrides.GHCi, DefaultGHCi),
		GHCid:    orDefault(overrides.GHCid, DefaultGHCid),
		NixShell: orDefault(overrides.NixShell, DefaultNixShell),
	}

	var err error
	switch mode {
	case project.ShellHost:
		if tools.GHCi, err = resolve(tools.GHCi, lookPath); err != nil {
			return Tools{}, err
		}
		if tools.GHCid, err = resolve(tools.GHCid, lookPath); err != nil {
			return Tools{}, err
		}
		tools.NixShell = ""
	default:
		if tools.NixShell, err = resolve(tools.NixShell, lookPath); err != nil {
			return Tools{}, err
		}
	}
	return tools, nil
}

func resolve(name string, lookPath LookPathFunc) (string, error) {
	path, err := lookPath(name)
	if err != nil {
		return "", &MissingToolError{Name: name, Err: err}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &MissingToolError{Name: name, Err: err}
	}
	return abs, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
