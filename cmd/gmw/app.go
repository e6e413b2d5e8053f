// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/ppowo/gmw/internal/config"
	"github.com/ppowo/gmw/internal/confirm"
	"github.com/ppowo/gmw/internal/runner"
	"github.com/ppowo/gmw/internal/vcs"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every command handler receives an App and
	// delegates through its fields.
	App struct {
		Config config.Provider
		// FS is where descriptors are located and read.
		FS billy.Filesystem
		// ArtifactFS opens a module directory for artifact discovery.
		ArtifactFS func(dir string) fs.FS
		// Runner executes builds and deployment steps. Nil means child
		// processes logging to the session logger.
		Runner runner.Runner
		// Confirmer answers prompts. Nil means an interactive prompt, or
		// always yes with --yes.
		Confirmer confirm.Confirmer
		Getwd     func() (string, error)
		Revision  func(dir string) (*vcs.Revision, error)
		stdout    io.Writer
		stderr    io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config     config.Provider
		FS         billy.Filesystem
		ArtifactFS func(dir string) fs.FS
		Runner     runner.Runner
		Confirmer  confirm.Confirmer
		Getwd      func() (string, error)
		Revision   func(dir string) (*vcs.Revision, error)
		Stdout     io.Writer
		Stderr     io.Writer
	}
)

// NewApp creates an App with production defaults for unset dependencies.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:     deps.Config,
		FS:         deps.FS,
		ArtifactFS: deps.ArtifactFS,
		Runner:     deps.Runner,
		Confirmer:  deps.Confirmer,
		Getwd:      deps.Getwd,
		Revision:   deps.Revision,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.FS == nil {
		app.FS = osfs.New("/")
	}
	if app.ArtifactFS == nil {
		app.ArtifactFS = os.DirFS
	}
	if app.Getwd == nil {
		app.Getwd = os.Getwd
	}
	if app.Revision == nil {
		app.Revision = vcs.Describe
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// loadConfig loads the configuration named by the session settings.
func (a *App) loadConfig(ctx context.Context, s config.Settings) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: s.ConfigPath})
	if err != nil {
		return nil, &configError{err: err}
	}
	return cfg, nil
}

func (a *App) runner(logger *log.Logger) runner.Runner {
	if a.Runner != nil {
		return a.Runner
	}
	return runner.NewExecRunner(logger)
}

func (a *App) confirmer(s config.Settings) confirm.Confirmer {
	switch {
	case s.Yes:
		return confirm.Always(true)
	case a.Confirmer != nil:
		return a.Confirmer
	default:
		return confirm.NewPrompt()
	}
}

// configError marks failures that happened while loading configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }

func (e *configError) Unwrap() error { return e.err }
