// SPDX-License-Identifier: MPL-2.0

// Package config loads the gmw project table.
//
// A configuration document may be written in YAML, TOML or CUE. Whatever the
// format, the document is unified with the embedded CUE schema (#Config),
// validated, decoded into Config, and then checked for the constraints the
// schema cannot express (absolute base paths, server groups in domain mode,
// parseable restart commands). The resulting Config is built once per process
// and treated as read-only by every other package.
//
// Process-wide settings that are not part of the project table (verbosity,
// confirmation, timeouts) are layered with Viper from flags and GMW_*
// environment variables; see Settings.
package config
