// SPDX-License-Identifier: MPL-2.0

package maven

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ppowo/gmw/internal/config"
	"github.com/ppowo/gmw/internal/detector"
	"github.com/ppowo/gmw/pkg/pom"
)

const skipTestsFlag = "-DskipTests"

type (
	// Request carries the caller's choices for one build.
	Request struct {
		Profile   string
		SkipTests bool
	}

	// Invocation is one external command with its working directory.
	Invocation struct {
		Program string
		Args    []string
		Dir     string
	}

	// Plan is the ordered set of invocations for one build. Install, when
	// set, runs only after Primary succeeds.
	Plan struct {
		Primary  Invocation
		Install  *Invocation
		Profiles []string
	}
)

// Argv returns the program followed by its arguments.
func (i Invocation) Argv() []string {
	return append([]string{i.Program}, i.Args...)
}

// String renders the command line for display.
func (i Invocation) String() string {
	return strings.Join(i.Argv(), " ")
}

// Invocations returns the plan's commands in execution order.
func (p Plan) Invocations() []Invocation {
	if p.Install == nil {
		return []Invocation{p.Primary}
	}
	return []Invocation{p.Primary, *p.Install}
}

// Synthesize builds the Maven plan for a classified module.
//
// A module built from a parent root is packaged with -pl/-am from that root,
// and a jar module additionally gets an install step so sibling modules can
// resolve it. A standalone module is installed when it is a jar and packaged
// otherwise.
func Synthesize(c detector.Classification, proj config.ProjectConfig, req Request, settings config.MavenSettings) (Plan, error) {
	profiles, err := ResolveProfiles(c.ProjectName(), proj, req.Profile)
	if err != nil {
		return Plan{}, err
	}

	program := settings.ExecutableOrDefault()
	args := []string{"clean"}
	var install *Invocation

	if c.IsMultiModuleBuild() {
		rel, err := c.RelativeModulePath()
		if err != nil {
			return Plan{}, fmt.Errorf("module %s is not below build root %s: %w", c.ModulePath(), c.RepoRoot(), err)
		}
		args = append(args, "package", "-pl", rel, "-am")

		if c.Packaging() == pom.DefaultPackaging {
			installArgs := append([]string{"install", "-pl", rel, skipTestsFlag}, settings.ExtraArgs...)
			install = &Invocation{Program: program, Args: installArgs, Dir: c.RepoRoot()}
		}
	} else if c.Packaging() == pom.DefaultPackaging {
		args = append(args, "install")
	} else {
		args = append(args, "package")
	}

	for _, p := range profiles {
		args = append(args, "-P"+p)
	}
	if proj.SkipTests || req.SkipTests {
		args = append(args, skipTestsFlag)
	}
	args = append(args, settings.ExtraArgs...)

	dir := c.ModulePath()
	if c.IsMultiModuleBuild() {
		dir = c.RepoRoot()
	}

	return Plan{
		Primary:  Invocation{Program: program, Args: args, Dir: dir},
		Install:  install,
		Profiles: slices.Clip(profiles),
	}, nil
}
