// SPDX-License-Identifier: MPL-2.0

// Package discovery finds Haskell package manifests.
//
// A Locator walks a project tree (following symbolic links) and returns every
// .cabal file and hpack package.yaml below it, skipping the vendored framework
// implementation under .hsdev/impl and any configured ignore globs. Resolve
// picks the manifest that describes a single package directory.
//
// File organization:
//   - locator.go: Locator, its options and PackageDirs
//   - resolve.go: Format, Reference and Resolve
//   - errors.go: NotFoundError and AmbiguousError
package discovery
