// SPDX-License-Identifier: MPL-2.0

// Package issue turns failures into guidance a developer can act on.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. Issue pages are longer Markdown explanations rendered
// with glamour for the handful of failures that stop hsdev before it can
// start GHCi or ghcid.
package issue
