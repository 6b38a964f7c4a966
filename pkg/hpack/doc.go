// SPDX-License-Identifier: MPL-2.0

// Package hpack reads hpack package.yaml manifests and renders them as .cabal
// package descriptions, so that both manifest formats flow through the same
// cabal parser.
package hpack
