// SPDX-License-Identifier: MPL-2.0

package cabal

import (
	"fmt"
	"regexp"
	"strings"
)

var fieldRe = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9_-]*)\s*:(.*)$`)

// listFields may legitimately appear more than once in a block.
var listFields = map[string]bool{
	"hs-source-dirs":     true,
	"default-extensions": true,
	"other-extensions":   true,
	"extensions":         true,
	"ghc-options":        true,
	"ghcjs-options":      true,
	"build-depends":      true,
	"exposed-modules":    true,
	"other-modules":      true,
	"c-sources":          true,
	"includes":           true,
	"extra-libraries":    true,
	"import":             true,
}

var deprecatedFields = map[string]string{
	"extensions":    "default-extensions or other-extensions",
	"hs-source-dir": "hs-source-dirs",
}

// sectionsWithName must carry a name argument.
var sectionsWithName = map[string]bool{
	SectionExecutable:     true,
	SectionTestSuite:      true,
	SectionBenchmark:      true,
	SectionForeignLibrary: true,
	SectionCommon:         true,
	SectionFlag:           true,
}

type parser struct {
	filename string
	lines    []line
	pos      int
	warnings []Warning
	diags    []Diagnostic
	commons  map[string]Block
}

// Parse parses a .cabal package description. Non-fatal problems are
// returned as warnings alongside the document. When any fatal problem is
// found the error is a *ParseError listing all of them and the document
// is nil.
func Parse(data []byte, filename string) ([]Warning, *Document, error) {
	p := &parser{filename: filename, commons: make(map[string]Block)}
	p.lines = splitLines(data, p.warnf)

	doc := p.parseTop()
	if _, ok := doc.Field("name"); !ok {
		p.errorf(0, `missing required field "name"`)
	}
	if _, ok := doc.Field("cabal-version"); !ok {
		p.warnf(0, `missing field "cabal-version"`)
	}

	if len(p.diags) > 0 {
		return p.warnings, nil, &ParseError{Filename: filename, Diagnostics: p.diags}
	}
	return p.warnings, doc, nil
}

func (p *parser) warnf(line int, format string, args ...any) {
	p.warnings = append(p.warnings, Warning{Line: line, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) errorf(line int, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{Line: line, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) parseTop() *Document {
	doc := &Document{}
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]

		if f := p.parseField(ln, false); f != nil {
			doc.Fields = append(doc.Fields, *f)
			continue
		}

		if strings.HasPrefix(ln.text, "}") {
			p.errorf(ln.no, "unmatched '}'")
			p.pos++
			continue
		}

		kw, rest := splitKeyword(ln.text)
		args, braced := trimBrace(rest)
		p.pos++

		switch {
		case kw == "if" || kw == "elif" || kw == "else":
			p.errorf(ln.no, "%q is only allowed inside a section", kw)
			p.parseBody(ln, braced)
		case !knownSections[kw]:
			p.warnf(ln.no, "ignoring unknown section %q", kw)
			p.parseBody(ln, braced)
		default:
			if s := p.parseSection(ln, kw, args, braced); s != nil {
				doc.Sections = append(doc.Sections, s)
			}
		}
	}
	return doc
}

func (p *parser) parseSection(hdr line, kind, name string, braced bool) *Section {
	if sectionsWithName[kind] && name == "" {
		p.errorf(hdr.no, "%s section requires a name", kind)
	}

	body := p.expandImports(p.parseBody(hdr, braced))
	s := &Section{Kind: kind, Name: name, Line: hdr.no, Body: body}

	if kind == SectionCommon {
		key := strings.ToLower(name)
		if _, dup := p.commons[key]; dup {
			p.warnf(hdr.no, "duplicate common stanza %q, the later one wins", name)
		}
		p.commons[key] = body
	}
	return s
}

// parseBody parses the block following a header line, which may be
// brace-delimited or layout-delimited.
func (p *parser) parseBody(hdr line, braced bool) Block {
	if !braced && p.pos < len(p.lines) && p.lines[p.pos].text == "{" {
		braced = true
		p.pos++
	}
	if !braced {
		return p.parseItems(hdr.indent, false)
	}
	b := p.parseItems(hdr.indent, true)
	p.closeBrace(hdr)
	return b
}

// closeBrace consumes the "}" ending a braced block. Text after the brace,
// as in "} else {", is left on the line for the caller to handle.
func (p *parser) closeBrace(hdr line) {
	if p.pos >= len(p.lines) {
		p.errorf(hdr.no, "missing '}' for block opened here")
		return
	}
	ln := &p.lines[p.pos]
	rest := strings.TrimSpace(strings.TrimPrefix(ln.text, "}"))
	if rest == "" {
		p.pos++
		return
	}
	ln.text = rest
	ln.indent = hdr.indent
}

func (p *parser) parseItems(parentIndent int, braced bool) Block {
	var (
		b           Block
		blockIndent = -1
		seen        = make(map[string]int)
	)
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		if braced && strings.HasPrefix(ln.text, "}") {
			return b
		}
		if !braced {
			if ln.indent <= parentIndent {
				return b
			}
			if blockIndent < 0 {
				blockIndent = ln.indent
			} else if ln.indent != blockIndent {
				p.errorf(ln.no, "inconsistent indentation (expected column %d, got %d)", blockIndent+1, ln.indent+1)
				p.skipChildren(ln)
				continue
			}
		}

		if f := p.parseField(ln, braced); f != nil {
			if prev, ok := seen[f.Name]; ok && !listFields[f.Name] {
				p.warnf(f.Line, "field %q already set on line %d", f.Name, prev)
			}
			seen[f.Name] = f.Line
			b.Items = append(b.Items, f)
			continue
		}

		kw, rest := splitKeyword(ln.text)
		switch kw {
		case "if":
			b.Items = append(b.Items, p.parseConditional(ln, rest))
		case "else", "elif":
			p.errorf(ln.no, "%q without a preceding \"if\"", kw)
			p.skipChildren(ln)
		default:
			if knownSections[kw] {
				p.errorf(ln.no, "section %q cannot be nested", kw)
			} else {
				p.errorf(ln.no, "unexpected %q", ln.text)
			}
			p.skipChildren(ln)
		}
	}
	return b
}

// skipChildren consumes ln and every following line indented deeper.
func (p *parser) skipChildren(ln line) {
	p.pos++
	for p.pos < len(p.lines) && p.lines[p.pos].indent > ln.indent {
		p.pos++
	}
}

// parseField parses a field and its continuation lines starting at ln, or
// returns nil without consuming anything when ln is not a field.
func (p *parser) parseField(ln line, braced bool) *Field {
	m := fieldRe.FindStringSubmatch(ln.text)
	if m == nil {
		return nil
	}
	name := strings.ToLower(m[1])
	if repl, ok := deprecatedFields[name]; ok {
		p.warnf(ln.no, "field %q is deprecated, use %s", name, repl)
	}

	var parts []string
	if v := strings.TrimSpace(m[2]); v != "" {
		parts = append(parts, v)
	}
	p.pos++
	for p.pos < len(p.lines) {
		next := p.lines[p.pos]
		if next.indent <= ln.indent || (braced && strings.HasPrefix(next.text, "}")) {
			break
		}
		if next.text == "." {
			parts = append(parts, "")
		} else {
			parts = append(parts, next.text)
		}
		p.pos++
	}
	return &Field{Name: name, Value: strings.Join(parts, "\n"), Line: ln.no}
}

func (p *parser) parseConditional(ln line, rest string) *Conditional {
	src, braced := trimBrace(rest)
	p.pos++
	c := &Conditional{Cond: p.condition(ln.no, src), Line: ln.no}
	c.Then = p.parseBody(ln, braced)
	p.parseElse(c, ln)
	return c
}

func (p *parser) parseElse(c *Conditional, hdr line) {
	if p.pos >= len(p.lines) {
		return
	}
	ln := p.lines[p.pos]
	if ln.indent != hdr.indent {
		return
	}
	kw, rest := splitKeyword(ln.text)
	switch kw {
	case "else":
		rest, braced := trimBrace(rest)
		if rest != "" {
			p.errorf(ln.no, "unexpected %q after else", rest)
		}
		p.pos++
		b := p.parseBody(ln, braced)
		c.Else = &b
	case "elif":
		c.Else = &Block{Items: []Item{p.parseConditional(ln, rest)}}
	}
}

func (p *parser) condition(lineNo int, src string) Expr {
	if src == "" {
		p.errorf(lineNo, "missing condition")
		return Lit(false)
	}
	expr, err := ParseCondition(src)
	if err != nil {
		p.errorf(lineNo, "invalid condition %q: %v", src, err)
		return Lit(false)
	}
	for _, kind := range unknownVars(expr) {
		p.warnf(lineNo, "unknown condition %q evaluates to false", kind)
	}
	return expr
}

// expandImports replaces import fields with the contents of the named
// common stanzas, recursing into conditionals.
func (p *parser) expandImports(b Block) Block {
	out := Block{Items: make([]Item, 0, len(b.Items))}
	for _, item := range b.Items {
		switch x := item.(type) {
		case *Field:
			if x.Name != "import" {
				out.Items = append(out.Items, x)
				continue
			}
			for _, name := range tokenize(x.Value, true) {
				common, ok := p.commons[strings.ToLower(name)]
				if !ok {
					p.errorf(x.Line, "undefined common stanza %q", name)
					continue
				}
				out.Items = append(out.Items, common.Items...)
			}
		case *Conditional:
			c := *x
			c.Then = p.expandImports(x.Then)
			if x.Else != nil {
				e := p.expandImports(*x.Else)
				c.Else = &e
			}
			out.Items = append(out.Items, &c)
		}
	}
	return out
}
