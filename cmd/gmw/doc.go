// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the gmw command tree.
//
// Every command handler builds a session from the persistent flags and the
// loaded configuration, delegates the decisions to the internal packages and
// is the only place where an error becomes output and an exit code.
package cmd
