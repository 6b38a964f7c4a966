// SPDX-License-Identifier: MPL-2.0

package cabal

import (
	"errors"
	"fmt"
	"strings"
)

// Section kinds recognised in a package description.
const (
	SectionLibrary          = "library"
	SectionExecutable       = "executable"
	SectionTestSuite        = "test-suite"
	SectionBenchmark        = "benchmark"
	SectionForeignLibrary   = "foreign-library"
	SectionCommon           = "common"
	SectionFlag             = "flag"
	SectionSourceRepository = "source-repository"
	SectionCustomSetup      = "custom-setup"
)

// ErrParse is the sentinel error wrapped by ParseError.
var ErrParse = errors.New("cabal parse error")

var knownSections = map[string]bool{
	SectionLibrary:          true,
	SectionExecutable:       true,
	SectionTestSuite:        true,
	SectionBenchmark:        true,
	SectionForeignLibrary:   true,
	SectionCommon:           true,
	SectionFlag:             true,
	SectionSourceRepository: true,
	SectionCustomSetup:      true,
}

type (
	// Document is a parsed package description.
	Document struct {
		// Fields are the top-level (package-wide) fields in file order.
		Fields []Field
		// Sections are the stanzas in file order. common stanzas are kept
		// here as well, although their contents are already spliced into
		// the sections that import them.
		Sections []*Section
	}

	// Section is one stanza, e.g. "library" or "executable backend".
	Section struct {
		// Kind is the lower-cased stanza keyword.
		Kind string
		// Name is the stanza argument, empty for the main library.
		Name string
		Line int
		Body Block
	}

	// Block is the ordered content of a section or conditional branch.
	Block struct {
		Items []Item
	}

	// Item is an element of a Block: a *Field or a *Conditional.
	Item interface {
		// Pos returns the 1-based line the item starts on.
		Pos() int
	}

	// Field is a "name: value" entry. Continuation lines are joined with
	// newlines into Value.
	Field struct {
		// Name is the lower-cased field name.
		Name  string
		Value string
		Line  int
	}

	// Conditional is an if/else construct. elif chains are represented as
	// an Else block holding a single nested Conditional.
	Conditional struct {
		Cond Expr
		Line int
		Then Block
		Else *Block
	}

	// Warning is a non-fatal problem found while parsing.
	Warning struct {
		Line    int
		Message string
	}

	// Diagnostic is one fatal problem found while parsing.
	Diagnostic struct {
		Line    int
		Message string
	}

	// ParseError collects every fatal problem in a file.
	ParseError struct {
		Filename    string
		Diagnostics []Diagnostic
	}
)

// Pos implements Item.
func (f *Field) Pos() int { return f.Line }

// Pos implements Item.
func (c *Conditional) Pos() int { return c.Line }

// String renders the warning as "line N: message".
func (w Warning) String() string {
	if w.Line == 0 {
		return w.Message
	}
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// String renders the diagnostic as "line N: message".
func (d Diagnostic) String() string {
	if d.Line == 0 {
		return d.Message
	}
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	if len(e.Diagnostics) == 1 {
		return fmt.Sprintf("%s: %s", e.Filename, e.Diagnostics[0])
	}
	lines := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		lines = append(lines, d.String())
	}
	return fmt.Sprintf("%s: %d errors:\n  %s", e.Filename, len(e.Diagnostics), strings.Join(lines, "\n  "))
}

// Unwrap returns ErrParse for errors.Is() compatibility.
func (e *ParseError) Unwrap() error { return ErrParse }

// Field returns the value of the last top-level field with the given name.
func (d *Document) Field(name string) (string, bool) {
	name = strings.ToLower(name)
	for i := len(d.Fields) - 1; i >= 0; i-- {
		if d.Fields[i].Name == name {
			return d.Fields[i].Value, true
		}
	}
	return "", false
}

// Name returns the package name declared by the top-level name field.
func (d *Document) Name() string {
	v, _ := d.Field("name")
	return strings.TrimSpace(v)
}

// Library returns the main (unnamed) library section, or nil when the
// package has none.
func (d *Document) Library() *Section {
	for _, s := range d.Sections {
		if s.Kind == SectionLibrary && s.Name == "" {
			return s
		}
	}
	return nil
}

// SectionsOf returns every section of the given kind, in file order.
func (d *Document) SectionsOf(kind string) []*Section {
	var out []*Section
	for _, s := range d.Sections {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
