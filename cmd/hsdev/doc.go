// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the hsdev command-line interface.
//
// Every command goes through an App, the composition root that owns the
// configuration provider, the process runner and the standard streams.
// Tests build an App with Dependencies to replace any of them.
package cmd
