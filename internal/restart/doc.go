// SPDX-License-Identifier: MPL-2.0

// Package restart decides whether WildFly must be restarted after an
// artifact is deployed.
//
// The restart_rules section of the configuration is compiled once into an
// Engine: an ordered table of regular expressions evaluated first match
// wins, preceded by the global module override and followed by built-in
// defaults for wars and everything else. Expressions that do not compile are
// reported as warnings and left out of the table.
package restart
