// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalog entry.
type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	NotInProjectId
	DescriptorNotFoundId
	DescriptorInvalidId
	UnconfiguredModuleId
	InvalidProfileId
	BuildFailedId
	DeploymentFailedId
	ArtifactNotFoundId
	UnknownClientId
)

type (
	// MarkdownMsg is the guidance text of an issue.
	MarkdownMsg string

	// Issue is a catalog entry with Markdown guidance for one failure class.
	Issue struct {
		id    Id
		title string
		mdMsg MarkdownMsg
	}
)

// Id returns the catalog id.
func (i *Issue) Id() Id { return i.id }

// Title returns the one-line heading of the issue.
func (i *Issue) Title() string { return i.title }

// MarkdownMsg returns the raw guidance.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// Render renders the guidance with the given glamour style ("dark",
// "light", "notty", "auto" or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	return render("# "+i.title+"\n"+string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	issues = map[Id]*Issue{
		ConfigLoadFailedId: {
			id:    ConfigLoadFailedId,
			title: "Configuration could not be loaded",
			mdMsg: `
gmw reads its project table from the first file found of:

1. the path given with ` + "`--config`" + ` or ` + "`GMW_CONFIG`" + `
2. ` + "`$XDG_CONFIG_HOME/gmw/config.{cue,yaml,yml,toml}`" + `

## Things you can try
- Create a starter file with ` + "`gmw config init`" + `
- Check the file with ` + "`gmw config validate`" + `
`,
		},
		NotInProjectId: {
			id:    NotInProjectId,
			title: "Not inside a configured project",
			mdMsg: `
The current directory is not below any ` + "`base_path`" + ` in the configuration.

## Things you can try
- ` + "`cd`" + ` into one of the directories listed by ` + "`gmw config show`" + `
- Add a project entry whose ` + "`base_path`" + ` contains this directory
`,
		},
		DescriptorNotFoundId: {
			id:    DescriptorNotFoundId,
			title: "No pom.xml found",
			mdMsg: `
No ` + "`pom.xml`" + ` exists in the current directory or any of its parents.

## Things you can try
- Run gmw from inside a Maven module
`,
		},
		DescriptorInvalidId: {
			id:    DescriptorInvalidId,
			title: "pom.xml could not be parsed",
			mdMsg: `
The nearest ` + "`pom.xml`" + ` is not well-formed XML or lacks an ` + "`<artifactId>`" + `.

## Things you can try
- Run ` + "`mvn validate`" + ` in the module to see Maven's own diagnostics
`,
		},
		UnconfiguredModuleId: {
			id:    UnconfiguredModuleId,
			title: "Module is not configured",
			mdMsg: `
Every module must be listed in its project's ` + "`modules`" + ` table, so that gmw
knows whether it is deployed normally or installed as a global module.

~~~yaml
modules:
  my-module: ""                     # normal deployment
  my-extension: "modules/org/x/main" # global module
~~~
`,
		},
		InvalidProfileId: {
			id:    InvalidProfileId,
			title: "Unknown build profile",
			mdMsg: `
The project restricts profiles with ` + "`available_profiles`" + ` and the requested one is
not in that list.

## Things you can try
- Run ` + "`gmw build`" + ` without a profile to use the project default
- Add the profile to ` + "`available_profiles`" + `
`,
		},
		BuildFailedId: {
			id:    BuildFailedId,
			title: "Maven build failed",
			mdMsg: `
Maven exited with a non-zero status. Its output above shows the reason.

## Things you can try
- Re-run with ` + "`--dry-run`" + ` to see the exact command line
- Run with ` + "`--skip-tests`" + ` if a flaky test is in the way
`,
		},
		DeploymentFailedId: {
			id:    DeploymentFailedId,
			title: "Deployment step failed",
			mdMsg: `
A copy, ssh or jboss-cli step failed or timed out.

## Things you can try
- Check that the WildFly instance is running and reachable
- Raise ` + "`timeouts.deploy`" + ` in the configuration
`,
		},
		ArtifactNotFoundId: {
			id:    ArtifactNotFoundId,
			title: "No artifact found",
			mdMsg: `
No ` + "`.war`" + ` or ` + "`.jar`" + ` was found in the module's ` + "`target`" + ` directory.

## Things you can try
- Run ` + "`gmw build`" + ` first
`,
		},
		UnknownClientId: {
			id:    UnknownClientId,
			title: "Unknown deployment client",
			mdMsg: `
Remote targets come from the project's ` + "`clients`" + ` table (or its single ` + "`remote`" + `
entry, known as ` + "`default`" + `).

## Things you can try
- List the targets with ` + "`gmw clients`" + `
- Deploy locally by leaving out ` + "`--client`" + ` or passing ` + "`--client local`" + `
`,
		},
	}
)

// Values returns all catalog entries ordered by id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return int(a.id) - int(b.id)
	})
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// Plain returns the guidance with its heading, unrendered. It is used when
// output is not a terminal.
func (i *Issue) Plain() string {
	return i.title + "\n" + strings.TrimRight(string(i.mdMsg), "\n")
}
