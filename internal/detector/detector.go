// SPDX-License-Identifier: MPL-2.0

package detector

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"

	"github.com/ppowo/gmw/internal/config"
	"github.com/ppowo/gmw/pkg/pom"
)

type (
	// Detector chains project resolution, descriptor lookup and module
	// classification for a working directory.
	Detector struct {
		fs     billy.Filesystem
		cfg    *config.Config
		logger *log.Logger
	}

	// Result is everything learned about a working directory.
	Result struct {
		Project        ResolvedProject
		Location       pom.Location
		Descriptor     *pom.Descriptor
		Classification Classification
	}
)

// New creates a Detector. A nil logger discards output.
func New(fsys billy.Filesystem, cfg *config.Config, logger *log.Logger) *Detector {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Detector{fs: fsys, cfg: cfg, logger: logger}
}

// Detect classifies the module that owns dir.
func (d *Detector) Detect(ctx context.Context, dir string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	project, err := ResolveProject(abs, d.cfg)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("resolved project", "project", project.Name, "base", project.Config.BasePath)

	loc, err := pom.Locate(d.fs, abs)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("found descriptor", "path", loc.Path, "steps", loc.Steps)
	// The walk does not stop at the base path, so a descriptor above it is
	// still classified against this project's module table.
	if !within(project.Config.BasePath, loc.Dir) {
		d.logger.Warn("descriptor lies above the project base path", "path", loc.Path, "base", project.Config.BasePath)
	}

	desc, err := pom.ReadFile(d.fs, loc.Path)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("parsed descriptor", "artifactId", desc.ArtifactID, "packaging", desc.Packaging, "modules", len(desc.Modules))

	c, err := Classify(project, loc, desc, d.fs)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("classified module",
		"module", c.ModuleName(),
		"global", c.IsGlobal(),
		"repoRoot", c.RepoRoot(),
		"multiModule", c.IsMultiModuleBuild())

	return &Result{Project: project, Location: loc, Descriptor: desc, Classification: c}, nil
}
