// SPDX-License-Identifier: MPL-2.0

package detector

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"github.com/ppowo/gmw/pkg/pom"
)

// ErrUnconfiguredModule is returned when a module is missing from its
// project's module table.
var ErrUnconfiguredModule = errors.New("module is not configured")

type (
	// Classification is the immutable result of classifying a module.
	Classification struct {
		projectName    string
		moduleName     string
		modulePath     string
		repoRoot       string
		packaging      string
		isGlobal       bool
		deploymentPath string
		isAggregator   bool
	}

	// Fields seeds NewClassification.
	Fields struct {
		ProjectName    string
		ModuleName     string
		ModulePath     string
		RepoRoot       string
		Packaging      string
		IsGlobal       bool
		DeploymentPath string
		IsAggregator   bool
	}

	// UnconfiguredModuleError names the module and project that need a
	// module table entry.
	UnconfiguredModuleError struct {
		Project string
		Module  string
	}
)

// Error implements error.
func (e *UnconfiguredModuleError) Error() string {
	return fmt.Sprintf("module %q is not configured for project %q", e.Module, e.Project)
}

// Unwrap returns ErrUnconfiguredModule.
func (e *UnconfiguredModuleError) Unwrap() error { return ErrUnconfiguredModule }

// Remediation returns the configuration snippet that resolves the error.
func (e *UnconfiguredModuleError) Remediation() string {
	return fmt.Sprintf(`Add it to the modules table of project %q:

  projects:
    %s:
      modules:
        %s: ""                    # normal deployment
        # %s: "modules/path/main" # global module
`, e.Project, e.Project, e.Module, e.Module)
}

// Classify decides the module identity and deployment kind of the module
// whose descriptor was found at loc. A nil desc, or one without an
// artifactId, names the module after its directory.
func Classify(project ResolvedProject, loc pom.Location, desc *pom.Descriptor, fsys billy.Filesystem) (Classification, error) {
	c := Classification{
		projectName: project.Name,
		modulePath:  loc.Dir,
		packaging:   pom.DefaultPackaging,
	}

	if desc != nil {
		c.moduleName = desc.ArtifactID
		if desc.Packaging != "" {
			c.packaging = desc.Packaging
		}
		c.isAggregator = desc.IsAggregator() || len(desc.Modules) > 0
	}
	if c.moduleName == "" {
		c.moduleName = filepath.Base(loc.Dir)
	}

	path, global, ok := project.Config.ModuleDeployment(c.moduleName)
	if !ok {
		return Classification{}, &UnconfiguredModuleError{Project: project.Name, Module: c.moduleName}
	}
	c.isGlobal = global
	c.deploymentPath = path

	c.repoRoot = c.modulePath
	if base := project.Config.BasePath; base != "" && pom.Exists(fsys, base) {
		c.repoRoot = filepath.Clean(base)
	}

	return c, nil
}

// NewClassification builds a classification from known facts, for callers
// that already did their own detection. An empty RepoRoot means a
// single-module build; an empty Packaging means "jar".
func NewClassification(f Fields) Classification {
	c := Classification{
		projectName:    f.ProjectName,
		moduleName:     f.ModuleName,
		modulePath:     filepath.Clean(f.ModulePath),
		repoRoot:       f.RepoRoot,
		packaging:      f.Packaging,
		isGlobal:       f.IsGlobal,
		deploymentPath: f.DeploymentPath,
		isAggregator:   f.IsAggregator,
	}
	if c.repoRoot == "" {
		c.repoRoot = c.modulePath
	} else {
		c.repoRoot = filepath.Clean(c.repoRoot)
	}
	if c.packaging == "" {
		c.packaging = pom.DefaultPackaging
	}
	return c
}

// ProjectName returns the owning project.
func (c Classification) ProjectName() string { return c.projectName }

// ModuleName returns the module identity used in the module table.
func (c Classification) ModuleName() string { return c.moduleName }

// ModulePath returns the directory holding the module descriptor.
func (c Classification) ModulePath() string { return c.modulePath }

// RepoRoot returns the directory builds run from.
func (c Classification) RepoRoot() string { return c.repoRoot }

// Packaging returns the Maven packaging, "jar" when undeclared.
func (c Classification) Packaging() string { return c.packaging }

// IsGlobal reports whether the module is installed under the WildFly modules tree.
func (c Classification) IsGlobal() bool { return c.isGlobal }

// DeploymentPath returns the global module path relative to the WildFly root.
func (c Classification) DeploymentPath() string { return c.deploymentPath }

// IsAggregator reports whether the module descriptor aggregates sub-modules.
func (c Classification) IsAggregator() bool { return c.isAggregator }

// IsMultiModuleBuild reports whether the module is built from a parent root.
func (c Classification) IsMultiModuleBuild() bool { return c.repoRoot != c.modulePath }

// RelativeModulePath returns the module directory relative to RepoRoot, or
// "." for single-module builds.
func (c Classification) RelativeModulePath() (string, error) {
	return filepath.Rel(c.repoRoot, c.modulePath)
}
