// SPDX-License-Identifier: MPL-2.0

// Package confirm asks the user before gmw runs a build or touches a server.
package confirm
