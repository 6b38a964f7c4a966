// SPDX-License-Identifier: MPL-2.0

// Package session builds the GHCi script that loads a project's backend and
// frontend packages into one interpreter session.
package session
