// SPDX-License-Identifier: MPL-2.0

// Package detector works out where the current directory sits: which
// configured project owns it, which Maven module it belongs to, and how
// that module is deployed.
//
// Resolution is split into small pure steps (ResolveProject, pom.Locate,
// pom.ReadFile, Classify) which Detector chains together. Every step fails
// with a typed error so the command layer can explain what to fix.
package detector
