// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

// VendoredImplDir is the project-relative directory holding the vendored
// framework implementation. Manifests below it belong to the framework, not
// to the project, and are never reported.
const VendoredImplDir = ".hsdev/impl"

// DefaultIgnore lists build-output directories that carry copies of
// manifests.
var DefaultIgnore = []string{
	"**/dist-newstyle/**",
	"**/.stack-work/**",
}

type (
	// Option configures a Locator.
	Option func(*Locator)

	// Locator finds package manifests below a project root.
	Locator struct {
		ignore   []string
		vendored []string
		logger   *log.Logger
	}

	// walkState is shared across one Locate call.
	walkState struct {
		visited map[string]bool
		found   []string
	}
)

// WithIgnore replaces the ignore globs. Globs are doublestar patterns matched
// against slash-separated root-relative paths.
func WithIgnore(globs ...string) Option {
	return func(l *Locator) { l.ignore = slices.Clone(globs) }
}

// WithVendoredDir overrides the reserved vendored directory.
func WithVendoredDir(dir string) Option {
	return func(l *Locator) { l.vendored = splitSegments(dir) }
}

// WithLogger sets the logger used for debug output about skipped paths.
func WithLogger(logger *log.Logger) Option {
	return func(l *Locator) { l.logger = logger }
}

// NewLocator returns a Locator using DefaultIgnore and VendoredImplDir
// unless overridden.
func NewLocator(opts ...Option) (*Locator, error) {
	l := &Locator{
		ignore:   slices.Clone(DefaultIgnore),
		vendored: splitSegments(VendoredImplDir),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.New(io.Discard)
	}
	for _, glob := range l.ignore {
		if !doublestar.ValidatePattern(glob) {
			return nil, fmt.Errorf("invalid ignore pattern %q", glob)
		}
	}
	return l, nil
}

// Locate returns the sorted paths of every manifest below root. Symbolic
// links are followed; each real directory is visited once, so link cycles
// terminate. Any I/O error aborts the walk.
func (l *Locator) Locate(ctx context.Context, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("locate manifests: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("locate manifests: %s is not a directory", root)
	}

	st := &walkState{visited: make(map[string]bool)}
	if err := l.walk(ctx, st, root, ""); err != nil {
		return nil, err
	}
	slices.Sort(st.found)
	return st.found, nil
}

func (l *Locator) walk(ctx context.Context, st *walkState, dir, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("locate manifests: %w", err)
	}
	if st.visited[target] {
		l.logger.Debug("skipping already visited directory", "path", dir, "target", target)
		return nil
	}
	st.visited[target] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("locate manifests: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		childRel := path.Join(rel, name)
		if l.excluded(childRel) {
			l.logger.Debug("skipping excluded path", "path", childRel)
			continue
		}

		full := filepath.Join(dir, name)
		info, err := os.Stat(full)
		if err != nil {
			if entry.Type()&fs.ModeSymlink != 0 && errors.Is(err, fs.ErrNotExist) {
				l.logger.Debug("skipping dangling symlink", "path", full)
				continue
			}
			return fmt.Errorf("locate manifests: %w", err)
		}

		switch {
		case info.IsDir():
			if err := l.walk(ctx, st, full, childRel); err != nil {
				return err
			}
		case info.Mode().IsRegular() && IsManifestName(name):
			st.found = append(st.found, full)
		}
	}
	return nil
}

// excluded reports whether the root-relative slash path lies in the
// vendored directory or matches an ignore glob.
func (l *Locator) excluded(rel string) bool {
	if containsSegments(splitSegments(rel), l.vendored) {
		return true
	}
	for _, glob := range l.ignore {
		// A trailing "/**" only matches below the directory, so directories
		// are also tested with a dummy child.
		if doublestar.MatchUnvalidated(glob, rel) || doublestar.MatchUnvalidated(glob, rel+"/_") {
			return true
		}
	}
	return false
}

// PackageDirs returns the unique parent directories of manifest files in
// first-seen order.
func PackageDirs(files []string) []string {
	seen := make(map[string]bool, len(files))
	dirs := make([]string, 0, len(files))
	for _, f := range files {
		dir := filepath.Dir(f)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func splitSegments(p string) []string {
	var out []string
	for seg := range strings.SplitSeq(filepath.ToSlash(p), "/") {
		if seg != "" && seg != "." {
			out = append(out, seg)
		}
	}
	return out
}

// containsSegments reports whether want occurs as consecutive elements of
// segs.
func containsSegments(segs, want []string) bool {
	if len(want) == 0 {
		return false
	}
	for i := 0; i+len(want) <= len(segs); i++ {
		if slices.Equal(segs[i:i+len(want)], want) {
			return true
		}
	}
	return false
}
