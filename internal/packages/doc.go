// SPDX-License-Identifier: MPL-2.0

// Package packages turns a package directory into a Descriptor: the subset
// of a Haskell package description a GHCi session needs.
//
// hpack manifests are decoded and rendered to .cabal syntax first, so both
// formats go through the same parser. Conditionals are evaluated against the
// platform the Parser was created with.
package packages
