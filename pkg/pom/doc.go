// SPDX-License-Identifier: MPL-2.0

// Package pom finds and reads Maven project descriptors (pom.xml).
//
// Only the handful of elements gmw needs are decoded: the project's own
// artifactId, its packaging and its declared sub-modules. Inherited values
// from a <parent> block are deliberately not consulted.
//
// Lookups go through a billy.Filesystem so callers can run the locator
// against the real disk (osfs) or an in-memory tree (memfs) in tests.
package pom
