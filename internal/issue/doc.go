// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown guidance
// for the failures gmw reports to users.
//
// Lower layers return plain or typed errors; the CLI layer maps them to a
// catalog Id and renders the matching guidance when verbose output is on.
package issue
