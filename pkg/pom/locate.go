// SPDX-License-Identifier: MPL-2.0

package pom

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
)

// ErrDescriptorNotFound is returned when no pom.xml exists at or above the
// starting directory.
var ErrDescriptorNotFound = errors.New("pom.xml not found")

// Location is where a descriptor was found.
type Location struct {
	// Path is the descriptor file.
	Path string
	// Dir is the directory holding it.
	Dir string
	// Steps counts parent hops from the starting directory; 0 means the
	// descriptor sits in the starting directory itself.
	Steps int
}

// Locate walks from start towards the filesystem root and returns the first
// directory containing a pom.xml.
func Locate(fsys billy.Filesystem, start string) (Location, error) {
	dir := filepath.Clean(start)
	for steps := 0; ; steps++ {
		candidate := filepath.Join(dir, FileName)
		ok, err := isFile(fsys, candidate)
		if err != nil {
			return Location{}, err
		}
		if ok {
			return Location{Path: candidate, Dir: dir, Steps: steps}, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Location{}, fmt.Errorf("%w in %s or any parent directory", ErrDescriptorNotFound, start)
		}
		dir = parent
	}
}

// Exists reports whether dir contains a descriptor.
func Exists(fsys billy.Filesystem, dir string) bool {
	ok, _ := isFile(fsys, filepath.Join(dir, FileName))
	return ok
}

func isFile(fsys billy.Filesystem, path string) (bool, error) {
	info, err := fsys.Stat(path)
	switch {
	case err == nil:
		return !info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}
