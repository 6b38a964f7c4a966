// SPDX-License-Identifier: MPL-2.0

// Package platform describes the machine hsdev runs on.
//
// The Model type carries the operating system, architecture and compiler
// flavor in the vocabulary that cabal conditionals use (os(osx), arch(x86_64),
// impl(ghc)), translated from Go's GOOS/GOARCH names. The package also
// detects application sandboxes (Flatpak, Snap) whose child processes have
// to be spawned on the host.
package platform
