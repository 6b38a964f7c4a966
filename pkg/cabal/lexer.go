// SPDX-License-Identifier: MPL-2.0

package cabal

import (
	"strings"
)

// line is one significant (non-blank, non-comment) source line.
type line struct {
	no     int
	indent int
	text   string
}

// splitLines drops blank lines and comment lines and measures indentation.
// Tabs in indentation count as one column each and are reported through
// warn, matching cabal's own "tab used for indentation" warning.
func splitLines(data []byte, warn func(line int, msg string)) []line {
	src := strings.TrimPrefix(string(data), "﻿")
	src = strings.ReplaceAll(src, "\r\n", "\n")

	var out []line
	for i, raw := range strings.Split(src, "\n") {
		indent := 0
		tabbed := false
		for indent < len(raw) && (raw[indent] == ' ' || raw[indent] == '\t') {
			if raw[indent] == '\t' {
				tabbed = true
			}
			indent++
		}
		body := strings.TrimRight(raw[indent:], " \t")
		if body == "" || strings.HasPrefix(body, "--") {
			continue
		}
		if tabbed {
			warn(i+1, "tab character used for indentation")
		}
		out = append(out, line{no: i + 1, indent: indent, text: body})
	}
	return out
}

// tokenize splits a field value into tokens. Tokens are separated by
// whitespace and, when commas is set, by commas. Double-quoted tokens may
// contain separators and the escapes \" and \\.
func tokenize(s string, commas bool) []string {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
		quoted  bool
	)
	flush := func() {
		if cur.Len() > 0 || quoted {
			out = append(out, cur.String())
		}
		cur.Reset()
		quoted = false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote && c == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case c == '"':
			inQuote = !inQuote
			quoted = true
		case !inQuote && (c == ' ' || c == '\t' || c == '\n' || (commas && c == ',')):
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return out
}

// splitDepends splits a build-depends value into its comma-separated
// entries with inner whitespace collapsed.
func splitDepends(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if entry := strings.Join(strings.Fields(part), " "); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

// splitKeyword returns the first word of s in lower case and the trimmed rest.
func splitKeyword(s string) (keyword, rest string) {
	idx := strings.IndexAny(s, " \t{")
	if idx < 0 {
		return strings.ToLower(s), ""
	}
	return strings.ToLower(s[:idx]), strings.TrimSpace(s[idx:])
}

// trimBrace strips a trailing "{" that opens a brace-delimited block.
func trimBrace(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "{") {
		return strings.TrimSpace(strings.TrimSuffix(s, "{")), true
	}
	return s, false
}
