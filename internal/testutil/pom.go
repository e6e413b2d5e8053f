// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// POM renders a minimal descriptor. An empty packaging leaves the element
// out; modules become an aggregator's <modules> list.
func POM(artifactID, packaging string, modules ...string) string {
	var b strings.Builder
	b.WriteString("<project>")
	if artifactID != "" {
		b.WriteString("<artifactId>" + artifactID + "</artifactId>")
	}
	if packaging != "" {
		b.WriteString("<packaging>" + packaging + "</packaging>")
	}
	if len(modules) > 0 {
		b.WriteString("<modules>")
		for _, m := range modules {
			b.WriteString("<module>" + m + "</module>")
		}
		b.WriteString("</modules>")
	}
	b.WriteString("</project>")
	return b.String()
}

// WritePOM writes POM(artifactID, packaging, modules...) to dir/pom.xml,
// creating dir. The test fails immediately on error.
func WritePOM(t testing.TB, fsys billy.Filesystem, dir, artifactID, packaging string, modules ...string) {
	t.Helper()
	WriteFile(t, fsys, path.Join(dir, "pom.xml"), POM(artifactID, packaging, modules...))
}

// WriteFile writes content to name, creating parent directories.
func WriteFile(t testing.TB, fsys billy.Filesystem, name, content string) {
	t.Helper()
	if err := util.WriteFile(fsys, name, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}
