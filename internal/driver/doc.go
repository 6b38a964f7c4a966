// SPDX-License-Identifier: MPL-2.0

// Package driver starts GHCi and ghcid for a generated session script.
package driver
