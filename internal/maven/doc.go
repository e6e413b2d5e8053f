// SPDX-License-Identifier: MPL-2.0

// Package maven turns a module classification into the exact mvn command
// lines that build it. Nothing here executes a process; the resulting Plan
// is handed to a runner.
package maven
