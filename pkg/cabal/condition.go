// SPDX-License-Identifier: MPL-2.0

package cabal

import (
	"fmt"
	"strings"
	"unicode"
)

// Condition kinds a Var can test.
const (
	CondOS   = "os"
	CondArch = "arch"
	CondImpl = "impl"
	CondFlag = "flag"
)

type (
	// Env is the platform a condition is evaluated against.
	Env interface {
		OS() string
		Arch() string
		CompilerFlavor() string
	}

	// Expr is a parsed conditional expression.
	Expr interface {
		Eval(env Env) bool
		String() string
	}

	// Lit is a literal true or false.
	Lit bool

	// Var is a test such as os(linux) or impl(ghc >= 9.2). Arg holds the raw
	// text between the parentheses.
	Var struct {
		Kind string
		Arg  string
	}

	// Not negates X.
	Not struct{ X Expr }

	// And is true when both operands are.
	And struct{ L, R Expr }

	// Or is true when either operand is.
	Or struct{ L, R Expr }
)

var osAliases = map[string]string{
	"darwin":   "osx",
	"macos":    "osx",
	"mingw32":  "windows",
	"win32":    "windows",
	"cygwin32": "windows",
}

var archAliases = map[string]string{
	"amd64":       "x86_64",
	"x86":         "i386",
	"i486":        "i386",
	"i586":        "i386",
	"i686":        "i386",
	"arm64":       "aarch64",
	"powerpc":     "ppc",
	"powerpc64":   "ppc64",
	"powerpc64le": "ppc64le",
	"mipsel":      "mips",
	"mipseb":      "mips",
	"js":          "javascript",
}

// CanonicalOS lower-cases an OS name and resolves cabal's aliases.
func CanonicalOS(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := osAliases[name]; ok {
		return alias
	}
	return name
}

// CanonicalArch lower-cases an architecture name and resolves cabal's aliases.
func CanonicalArch(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := archAliases[name]; ok {
		return alias
	}
	return name
}

// Eval implements Expr.
func (l Lit) Eval(Env) bool { return bool(l) }

func (l Lit) String() string {
	if l {
		return "true"
	}
	return "false"
}

// Eval implements Expr. os and arch compare canonical names; impl compares
// the compiler flavor only, so version ranges such as impl(ghc >= 9.2)
// always hold for a matching flavor. flag(...) and unknown kinds are false.
func (v Var) Eval(env Env) bool {
	switch v.Kind {
	case CondOS:
		return CanonicalOS(v.Arg) == CanonicalOS(env.OS())
	case CondArch:
		return CanonicalArch(v.Arg) == CanonicalArch(env.Arch())
	case CondImpl:
		flavor, _ := v.Impl()
		return strings.EqualFold(flavor, env.CompilerFlavor())
	default:
		return false
	}
}

// Impl splits an impl(...) argument into flavor and version range.
func (v Var) Impl() (flavor, versionRange string) {
	arg := strings.TrimSpace(v.Arg)
	end := strings.IndexFunc(arg, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_')
	})
	if end < 0 {
		return arg, ""
	}
	return arg[:end], strings.TrimSpace(arg[end:])
}

func (v Var) String() string { return v.Kind + "(" + strings.TrimSpace(v.Arg) + ")" }

// Eval implements Expr.
func (n Not) Eval(env Env) bool { return !n.X.Eval(env) }

func (n Not) String() string { return "!" + n.X.String() }

// Eval implements Expr.
func (a And) Eval(env Env) bool { return a.L.Eval(env) && a.R.Eval(env) }

func (a And) String() string { return "(" + a.L.String() + " && " + a.R.String() + ")" }

// Eval implements Expr.
func (o Or) Eval(env Env) bool { return o.L.Eval(env) || o.R.Eval(env) }

func (o Or) String() string { return "(" + o.L.String() + " || " + o.R.String() + ")" }

// ParseCondition parses the text after "if" or "elif".
func ParseCondition(s string) (Expr, error) {
	p := &condParser{src: s}
	p.next()
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok != tokEOF {
		return nil, fmt.Errorf("unexpected %q in condition %q", p.text, s)
	}
	return e, nil
}

// unknownVars lists test kinds in e that are not os, arch, impl or flag.
func unknownVars(e Expr) []string {
	switch x := e.(type) {
	case Var:
		switch x.Kind {
		case CondOS, CondArch, CondImpl, CondFlag:
			return nil
		}
		return []string{x.Kind}
	case Not:
		return unknownVars(x.X)
	case And:
		return append(unknownVars(x.L), unknownVars(x.R)...)
	case Or:
		return append(unknownVars(x.L), unknownVars(x.R)...)
	default:
		return nil
	}
}

type condToken int

const (
	tokEOF condToken = iota
	tokIdent
	tokLParen
	tokRParen
	tokNot
	tokAnd
	tokOr
	tokBad
)

type condParser struct {
	src  string
	pos  int
	tok  condToken
	text string
}

func (p *condParser) next() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
	if p.pos >= len(p.src) {
		p.tok, p.text = tokEOF, ""
		return
	}
	start := p.pos
	switch c := p.src[p.pos]; {
	case c == '(':
		p.pos++
		p.tok = tokLParen
	case c == ')':
		p.pos++
		p.tok = tokRParen
	case c == '!':
		p.pos++
		p.tok = tokNot
	case strings.HasPrefix(p.src[p.pos:], "&&"):
		p.pos += 2
		p.tok = tokAnd
	case strings.HasPrefix(p.src[p.pos:], "||"):
		p.pos += 2
		p.tok = tokOr
	case isIdentByte(c):
		for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
			p.pos++
		}
		p.tok = tokIdent
	default:
		p.pos++
		p.tok = tokBad
	}
	p.text = p.src[start:p.pos]
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *condParser) parseOr() (Expr, error) {
	l, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok == tokOr {
		p.next()
		r, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l = Or{L: l, R: r}
	}
	return l, nil
}

func (p *condParser) parseAnd() (Expr, error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok == tokAnd {
		p.next()
		r, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		l = And{L: l, R: r}
	}
	return l, nil
}

func (p *condParser) parseUnary() (Expr, error) {
	switch p.tok {
	case tokNot:
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil
	case tokLParen:
		p.next()
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok != tokRParen {
			return nil, fmt.Errorf("missing ')' in condition %q", p.src)
		}
		p.next()
		return e, nil
	case tokIdent:
		name := p.text
		// The argument is taken raw up to the matching parenthesis, since
		// version ranges contain && and || of their own.
		rest := p.src[p.pos:]
		trimmed := strings.TrimLeft(rest, " \t")
		if !strings.HasPrefix(trimmed, "(") {
			switch strings.ToLower(name) {
			case "true":
				p.next()
				return Lit(true), nil
			case "false":
				p.next()
				return Lit(false), nil
			}
			return nil, fmt.Errorf("unexpected identifier %q in condition %q", name, p.src)
		}
		open := p.pos + (len(rest) - len(trimmed))
		closeIdx, err := matchParen(p.src, open)
		if err != nil {
			return nil, err
		}
		arg := p.src[open+1 : closeIdx]
		p.pos = closeIdx + 1
		p.next()
		return Var{Kind: strings.ToLower(name), Arg: strings.TrimSpace(arg)}, nil
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of condition %q", p.src)
	default:
		return nil, fmt.Errorf("unexpected %q in condition %q", p.text, p.src)
	}
}

// matchParen returns the index of the ')' that closes the '(' at open.
func matchParen(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("missing ')' in condition %q", s)
}
