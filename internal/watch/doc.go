// SPDX-License-Identifier: MPL-2.0

// Package watch rebuilds a module when its sources change.
//
// A Watcher registers the module directory tree with fsnotify, filters
// events through doublestar globs (src/** and pom.xml by default, build
// output and editor noise excluded), and calls OnChange once per quiet
// period with the set of changed paths. A change that arrives while the
// previous callback is still running is held back and delivered after it.
package watch
