// SPDX-License-Identifier: MPL-2.0

// Package deploy plans how a built artifact reaches WildFly.
//
// Plans are plain lists of external commands (cp, touch, scp, ssh,
// jboss-cli.sh) so that the same value can be printed as a guide, shown in
// a dry run, or executed step by step through a runner.Runner. Three
// deployment shapes are supported: global modules copied under the WildFly
// modules tree, standalone deployments triggered with a .dodeploy marker,
// and managed-domain deployments pushed to a server group via jboss-cli.
package deploy
