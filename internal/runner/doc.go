// SPDX-License-Identifier: MPL-2.0

// Package runner executes the external commands gmw plans: Maven builds,
// artifact copies, ssh and jboss-cli calls. Every run is bounded by a
// context and a timeout and is never retried.
//
// Recorder is an in-memory Runner for tests.
package runner
