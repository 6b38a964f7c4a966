// SPDX-License-Identifier: MPL-2.0

// Package config loads hsdev settings.
//
// Values are layered with Viper, lowest precedence first:
//
//  1. built-in defaults (DefaultConfig)
//  2. the user config, CUE, at <config dir>/hsdev/config.cue
//  3. project overrides, TOML, at <project root>/.hsdev/project.toml
//
// Both files are validated against the embedded CUE schema
// (config_schema.cue) before they are merged, so a typo in either is
// reported with the offending field path.
package config
