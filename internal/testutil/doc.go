// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fixtures shared by the package tests.
package testutil
