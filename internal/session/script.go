// SPDX-License-Identifier: MPL-2.0

package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Script is a generated GHCi session script.
type Script struct {
	// SearchPaths are the absolute source directories passed to -i.
	SearchPaths []string
	// Languages are passed as -X flags.
	Languages []string
	// Modules are loaded with :load.
	Modules []string
	// Imports are the qualified imports made available at the prompt.
	Imports []string
}

// Lines returns the script's lines.
func (s *Script) Lines() []string {
	langs := make([]string, len(s.Languages))
	for i, l := range s.Languages {
		langs[i] = "-X" + l
	}
	lines := []string{
		":set " + ghciQuote("-i"+strings.Join(s.SearchPaths, ":")),
		":set " + strings.Join(langs, " "),
		":load " + strings.Join(s.Modules, " "),
	}
	for _, mod := range s.Imports {
		lines = append(lines, "import qualified "+mod)
	}
	return lines
}

// String renders the script as GHCi reads it.
func (s *Script) String() string {
	return strings.Join(s.Lines(), "\n") + "\n"
}

// Rewrite replaces the file at path with the script. The file is swapped
// in with a rename, so a concurrent reader sees either the old or the new
// contents.
func (s *Script) Rewrite(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ghci-*")
	if err != nil {
		return fmt.Errorf("write session script: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(s.String()); err != nil {
		tmp.Close() //nolint:errcheck // already failing
		os.Remove(tmpName)
		return fmt.Errorf("write session script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write session script: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write session script: %w", err)
	}
	return nil
}

// ghciQuote wraps an argument containing whitespace in a Haskell string
// literal, which is how GHCi's :set splits arguments.
func ghciQuote(arg string) string {
	if !strings.ContainsAny(arg, " \t\"") {
		return arg
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(arg) + `"`
}
