// SPDX-License-Identifier: MPL-2.0

package detector

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ppowo/gmw/internal/config"
)

// ErrNotInProject is returned when the directory is outside every configured base path.
var ErrNotInProject = errors.New("not inside a configured project")

type (
	// ResolvedProject is the configured project owning a directory.
	ResolvedProject struct {
		Name   string
		Config config.ProjectConfig
	}

	// NotInProjectError carries the directory and the base paths it was tested against.
	NotInProjectError struct {
		Dir   string
		Bases []string
	}
)

// Error implements error.
func (e *NotInProjectError) Error() string {
	return fmt.Sprintf("%s is not inside any configured project (base paths: %s)", e.Dir, strings.Join(e.Bases, ", "))
}

// Unwrap returns ErrNotInProject.
func (e *NotInProjectError) Unwrap() error { return ErrNotInProject }

// ResolveProject returns the project whose base path is dir or an ancestor of
// it. When base paths are nested the deepest one wins; identical base paths
// resolve to the lexicographically smallest project name.
func ResolveProject(dir string, cfg *config.Config) (ResolvedProject, error) {
	dir = filepath.Clean(dir)

	var (
		best    ResolvedProject
		bestLen = -1
		bases   []string
	)
	// ProjectNames is sorted, so on equal lengths the first name seen stays.
	for _, name := range cfg.ProjectNames() {
		p := cfg.Projects[name]
		base := filepath.Clean(p.BasePath)
		bases = append(bases, base)
		if !within(base, dir) {
			continue
		}
		if len(base) > bestLen {
			best = ResolvedProject{Name: name, Config: p}
			bestLen = len(base)
		}
	}

	if bestLen < 0 {
		return ResolvedProject{}, &NotInProjectError{Dir: dir, Bases: bases}
	}
	return best, nil
}

// within reports whether path equals base or lies beneath it, comparing whole
// path segments so /foo-bar is not inside /foo.
func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
