// SPDX-License-Identifier: MPL-2.0

package deploy

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrArtifactNotFound is returned when the build output holds no deployable archive.
var ErrArtifactNotFound = errors.New("no deployable artifact found")

// secondaryClassifiers mark attached jars that are never deployed.
var secondaryClassifiers = []string{"-sources.jar", "-javadoc.jar", "-tests.jar"}

// FindArtifact picks the deployable archive in targetDir of fsys: a war if
// there is one, else the jar named after artifactID, else the first jar.
// Source, javadoc and test jars are ignored. The returned path is relative to
// fsys.
func FindArtifact(fsys fs.FS, targetDir, artifactID string) (string, error) {
	matches, err := doublestar.Glob(fsys, path.Join(targetDir, "*.{war,jar}"))
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", targetDir, err)
	}
	slices.Sort(matches)

	var wars, jars []string
	for _, m := range matches {
		name := path.Base(m)
		switch {
		case strings.HasSuffix(name, ".war"):
			wars = append(wars, m)
		case slices.ContainsFunc(secondaryClassifiers, func(s string) bool { return strings.HasSuffix(name, s) }):
		default:
			jars = append(jars, m)
		}
	}

	if len(wars) > 0 {
		return wars[0], nil
	}
	if artifactID != "" {
		for _, j := range jars {
			if strings.HasPrefix(path.Base(j), artifactID) {
				return j, nil
			}
		}
	}
	if len(jars) > 0 {
		return jars[0], nil
	}
	return "", fmt.Errorf("%w in %s", ErrArtifactNotFound, targetDir)
}
