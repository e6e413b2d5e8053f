// SPDX-License-Identifier: MPL-2.0

// Package vcs reports which revision a module is being built from.
package vcs
