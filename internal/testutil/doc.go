// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include file-tree fixtures (WriteTree, MustMkdirAll), a
// recording process runner (Runner) and a capability set whose log output is
// captured in memory (Capabilities).
package testutil
