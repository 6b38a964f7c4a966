// SPDX-License-Identifier: MPL-2.0

// Package cabal parses Haskell package descriptions written in the .cabal
// format.
//
// Parsing keeps the document's structure (top-level fields, sections and
// if/elif/else conditionals) so that conditionals can be evaluated later
// against a platform. Section.Resolve flattens one section into the
// BuildInfo fields hsdev needs: source directories, language, extensions and
// compiler options.
//
// Both indentation layout and brace-delimited blocks are accepted. common
// stanzas are expanded into the sections that import them while parsing.
// Problems that cabal-install would report as warnings are returned as
// Warning values; problems that make the file unusable are collected in a
// *ParseError.
package cabal
