// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hsdev/hsdev/internal/capability"
	"github.com/hsdev/hsdev/internal/packages"
)

const (
	// ScriptName is the file name of the generated script.
	ScriptName = ".ghci"

	// LegacyLanguage is used when no package declares a default-language,
	// matching what GHCi assumes for packages without one.
	LegacyLanguage = "Haskell98"

	// CommonPackage is the name of the optional shared package.
	CommonPackage = "common"

	// RunModule exposes the entry point the test hook calls.
	RunModule = "Hsdev.Run"
)

// ErrNoValidPackages is the sentinel error wrapped by NoValidPackagesError.
var ErrNoValidPackages = errors.New("no valid packages")

type (
	// Configurator builds session scripts from package directories.
	Configurator struct {
		caps   capability.Set
		parser *packages.Parser
	}

	// NoValidPackagesError is returned when none of the given directories
	// holds a usable package.
	NoValidPackagesError struct {
		Dirs []string
	}
)

// Error implements the error interface.
func (e *NoValidPackagesError) Error() string {
	if len(e.Dirs) == 0 {
		return "no package directories were found"
	}
	return fmt.Sprintf("none of the package directories could be parsed: %s", strings.Join(e.Dirs, ", "))
}

// Unwrap returns ErrNoValidPackages for errors.Is() compatibility.
func (e *NoValidPackagesError) Unwrap() error { return ErrNoValidPackages }

// NewConfigurator returns a Configurator reading packages with parser.
func NewConfigurator(caps capability.Set, parser *packages.Parser) *Configurator {
	return &Configurator{caps: caps, parser: parser}
}

// Build parses every directory and assembles the script. Directories that
// fail to parse are skipped with a single warning; if none parse the
// failure is logged and the returned error wraps a *NoValidPackagesError.
func (c *Configurator) Build(ctx context.Context, dirs []string) (*Script, error) {
	var (
		descs  []*packages.Descriptor
		failed []string
	)
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d := c.parser.ParseStrict(ctx, dir); d != nil {
			descs = append(descs, d)
		} else {
			failed = append(failed, dir)
		}
	}
	if len(descs) == 0 {
		return nil, c.caps.Fail(&NoValidPackagesError{Dirs: dirs}, "cannot build the GHCi session")
	}
	if len(failed) > 0 {
		c.caps.Log.Warn("skipping packages that could not be parsed", "dirs", strings.Join(failed, ", "))
	}

	script := &Script{
		Modules: []string{"Backend", "Frontend"},
		Imports: []string{RunModule, "Frontend", "Backend"},
	}
	for _, d := range descs {
		script.SearchPaths = append(script.SearchPaths, d.SourcePaths()...)
		if d.Name() == CommonPackage {
			script.Modules = append(script.Modules, "Common")
		}
	}
	script.Languages = c.languages(descs)
	return script, nil
}

func (c *Configurator) languages(descs []*packages.Descriptor) []string {
	var langs []string
	for _, d := range descs {
		if lang, ok := d.DefaultLanguage(); ok && !slices.Contains(langs, lang) {
			langs = append(langs, lang)
		}
	}
	switch len(langs) {
	case 0:
		return []string{LegacyLanguage}
	case 1:
		return langs
	default:
		c.caps.Log.Warn("packages declare different default languages, loading them together may fail",
			"languages", strings.Join(langs, ", "))
		return langs
	}
}

// WithScript writes the script for dirs to a fresh temporary directory and
// calls fn with its path. The directory is removed when fn returns or
// panics. No file is written when Build fails.
func (c *Configurator) WithScript(ctx context.Context, dirs []string, fn func(path string) error) error {
	script, err := c.Build(ctx, dirs)
	if err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "hsdev-ghci-")
	if err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			c.caps.Log.Warn("failed to remove session directory", "dir", tmpDir, "err", rmErr)
		}
	}()

	path := filepath.Join(tmpDir, ScriptName)
	if err := script.Rewrite(path); err != nil {
		return err
	}
	c.caps.Log.Debug("wrote session script", "path", path)
	return fn(path)
}

// Refresh rebuilds the script for dirs and rewrites path in place. On
// failure the existing script is left untouched.
func (c *Configurator) Refresh(ctx context.Context, dirs []string, path string) error {
	script, err := c.Build(ctx, dirs)
	if err != nil {
		return err
	}
	return script.Rewrite(path)
}
