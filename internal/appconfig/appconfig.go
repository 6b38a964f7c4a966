// SPDX-License-Identifier: MPL-2.0

// Package appconfig reads the configuration files an application bundles
// as resources, one directory per environment (for example "config/dev").
package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// ErrNotText is returned when a bundled config file is not valid UTF-8.
var ErrNotText = errors.New("config file is not valid UTF-8 text")

type (
	// Config is one bundled configuration file.
	Config struct {
		// Path is slash-separated and relative to the environment directory.
		Path string
		// Contents is the full file text.
		Contents string
	}

	// NotTextError reports the offending file.
	NotTextError struct {
		Path string
	}
)

func (e *NotTextError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, ErrNotText)
}

func (e *NotTextError) Unwrap() error { return ErrNotText }

// GetConfigs returns every regular file below base/sub, sorted by path.
// A missing sub directory yields an empty slice.
func GetConfigs(fsys afero.Fs, base, sub string) ([]Config, error) {
	dir := filepath.Join(base, sub)
	info, err := fsys.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return []Config{}, nil
	case err != nil:
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	configs := []Config{}
	err = afero.Walk(fsys, dir, func(p string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		data, readErr := afero.ReadFile(fsys, p)
		if readErr != nil {
			return fmt.Errorf("read %s: %w", p, readErr)
		}
		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil {
			return fmt.Errorf("relative path of %s: %w", p, relErr)
		}
		rel = filepath.ToSlash(rel)
		if !utf8.Valid(data) {
			return &NotTextError{Path: path.Join(filepath.ToSlash(sub), rel)}
		}
		configs = append(configs, Config{Path: rel, Contents: string(data)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(configs, func(a, b Config) int { return strings.Compare(a.Path, b.Path) })
	return configs, nil
}
