// SPDX-License-Identifier: MPL-2.0

// Package logging builds the diagnostic logger shared by gmw's packages.
// Diagnostics go to stderr so that stdout stays clean for command output.
package logging
