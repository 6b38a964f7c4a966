// SPDX-License-Identifier: MPL-2.0

// Package project locates the project root and runs tools inside the
// project's development shell.
//
// The root is the nearest ancestor directory holding a .hsdev/ directory.
// Tools run either through nix-shell (the project's default.nix exposes one
// shell per tool under the "shells" attribute) or, for projects that manage
// their toolchain without Nix, directly on the host through an embedded
// POSIX shell interpreter.
package project
