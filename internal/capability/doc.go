// SPDX-License-Identifier: MPL-2.0

// Package capability bundles the side-effecting services hsdev components
// receive explicitly: a logger, a process runner and a way to fail loudly.
//
// Components never reach for global loggers or exec.Command themselves.
// Tests pass Discard() or a Set with a recording Runner.
package capability
