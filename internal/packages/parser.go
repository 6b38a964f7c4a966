// SPDX-License-Identifier: MPL-2.0

package packages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hsdev/hsdev/internal/capability"
	"github.com/hsdev/hsdev/internal/discovery"
	"github.com/hsdev/hsdev/pkg/cabal"
	"github.com/hsdev/hsdev/pkg/hpack"
	"github.com/hsdev/hsdev/pkg/types"
)

type (
	// Parser reads package descriptors for one platform.
	Parser struct {
		caps capability.Set
		env  cabal.Env
	}

	// Result is a successfully parsed package along with any warnings.
	Result struct {
		Warnings   []string
		Descriptor *Descriptor
	}
)

// NewParser returns a Parser that evaluates conditionals against env.
func NewParser(caps capability.Set, env cabal.Env) *Parser {
	return &Parser{caps: caps, env: env}
}

// Parse reads the package in dir. It never logs; failures are returned as
// *discovery.NotFoundError, *discovery.AmbiguousError, *hpack.DecodeError,
// *ParseFailedError or *NoLibraryError.
func (p *Parser) Parse(ctx context.Context, dir string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	ref, err := discovery.Resolve(dir)
	if err != nil {
		return Result{}, err
	}

	var (
		warnings []string
		data     []byte
	)
	switch ref.Format {
	case discovery.FormatAlternate:
		pkg, decodeWarnings, err := hpack.Decode(ref.Path)
		if err != nil {
			return Result{}, err
		}
		warnings = append(warnings, decodeWarnings...)
		data = []byte(hpack.Render(pkg))
	default:
		data, err = os.ReadFile(ref.Path)
		if err != nil {
			return Result{}, &ParseFailedError{Path: ref.Path, Message: err.Error()}
		}
	}

	cabalWarnings, doc, err := cabal.Parse(data, ref.Path)
	for _, w := range cabalWarnings {
		warnings = append(warnings, w.String())
	}
	if err != nil {
		return Result{Warnings: warnings}, &ParseFailedError{Path: ref.Path, Message: err.Error()}
	}

	lib := doc.Library()
	if lib == nil {
		return Result{Warnings: warnings}, &NoLibraryError{Path: ref.Path}
	}
	bi := lib.Resolve(p.env)

	file, err := filepath.Abs(ref.Path)
	if err != nil {
		return Result{Warnings: warnings}, &ParseFailedError{Path: ref.Path, Message: err.Error()}
	}

	name := doc.Name()
	if err := types.PackageName(name).Validate(); err != nil {
		warnings = append(warnings, err.Error())
	}

	sourceDirs := bi.SourceDirs
	if len(sourceDirs) == 0 {
		sourceDirs = []string{"."}
	}

	return Result{
		Warnings: warnings,
		Descriptor: &Descriptor{
			name:              name,
			file:              file,
			root:              filepath.Dir(file),
			sourceDirs:        sourceDirs,
			defaultExtensions: bi.DefaultExtensions,
			defaultLanguage:   bi.DefaultLanguage,
			compilerOptions:   bi.CompilerOptions,
		},
	}, nil
}

// ParseStrict is Parse for callers that only care about success: warnings
// are logged at warn level, failures at error level, and nil is returned on
// failure.
func (p *Parser) ParseStrict(ctx context.Context, dir string) *Descriptor {
	res, err := p.Parse(ctx, dir)
	for _, w := range res.Warnings {
		p.caps.Log.Warn("package description warning", "dir", dir, "warning", w)
	}
	if err != nil {
		p.caps.Log.Error("failed to parse package", "dir", dir, "err", describe(err))
		return nil
	}
	return res.Descriptor
}

// describe returns a one-line summary of a parse failure.
func describe(err error) string {
	switch e := err.(type) {
	case *discovery.NotFoundError:
		return fmt.Sprintf("no package manifest in %s", e.Path)
	case *discovery.AmbiguousError:
		return fmt.Sprintf("several package manifests in %s, keep only one of %v", e.Dir, e.Candidates)
	default:
		return err.Error()
	}
}
