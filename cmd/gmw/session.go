// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ppowo/gmw/internal/config"
	"github.com/ppowo/gmw/internal/confirm"
	"github.com/ppowo/gmw/internal/detector"
	"github.com/ppowo/gmw/internal/logging"
	"github.com/ppowo/gmw/internal/restart"
	"github.com/ppowo/gmw/internal/runner"
)

// session is the state of one command invocation.
type session struct {
	app      *App
	settings config.Settings
	logger   *log.Logger
	cfg      *config.Config
	engine   *restart.Engine
	runner   runner.Runner
	confirm  confirm.Confirmer
	out      io.Writer
	errOut   io.Writer
	style    palette
}

// run executes fn with a fresh session. Configuration is loaded first when
// withConfig is set. Any error is rendered to stderr and returned as an
// *ExitError.
func (a *App) run(cmd *cobra.Command, withConfig bool, fn func(ctx context.Context, s *session) error) error {
	settings, err := config.LoadSettings(cmd.Flags())
	if err != nil {
		return a.fail(&configError{err: err}, settings)
	}

	logger := logging.New(a.stderr, logging.Options{Verbose: settings.Verbose, NoColor: settings.NoColor})
	s := &session{
		app:      a,
		settings: settings,
		logger:   logger,
		runner:   a.runner(logger),
		confirm:  a.confirmer(settings),
		out:      a.stdout,
		errOut:   a.stderr,
		style:    newPalette(settings.NoColor),
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if withConfig {
		if err := s.loadConfig(ctx); err != nil {
			return a.fail(err, settings)
		}
	}
	if err := fn(ctx, s); err != nil {
		return a.fail(err, settings)
	}
	return nil
}

func (s *session) loadConfig(ctx context.Context) error {
	cfg, err := s.app.loadConfig(ctx, s.settings)
	if err != nil {
		return err
	}
	s.logger.Debug("loaded configuration", "path", cfg.Source(), "projects", len(cfg.Projects))

	for _, key := range cfg.Deprecated() {
		s.logger.Warn("ignoring legacy configuration key", "key", key)
	}
	engine, warnings := restart.Compile(cfg.RestartRules)
	for _, w := range warnings {
		s.logger.Warn("ignoring restart pattern", "index", w.Index, "pattern", w.Pattern, "err", w.Err)
	}
	s.cfg = cfg
	s.engine = engine
	return nil
}

// detect classifies the module that owns the working directory.
func (s *session) detect(ctx context.Context) (*detector.Result, error) {
	wd, err := s.app.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return detector.New(s.app.FS, s.cfg, s.logger).Detect(ctx, wd)
}

// ask asks the session's confirmer, which App.confirmer built from --yes.
func (s *session) ask(ctx context.Context, prompt string) (bool, error) {
	return s.confirm.Confirm(ctx, prompt)
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *session) println(args ...any) {
	fmt.Fprintln(s.out, args...)
}

// field prints "→ label: value".
func (s *session) field(label, value string) {
	s.printf("%s %s %s\n", s.style.muted.Render("→"), s.style.label.Render(label+":"), value)
}

// heading prints a title followed by a rule of the same width.
func (s *session) heading(title string) {
	s.println()
	s.println(s.style.title.Render(title))
	s.println(s.style.rule.Render(strings.Repeat("─", max(len(title), 40))))
}

func (s *session) commandLine(line string) {
	s.printf("  %s\n", s.style.command.Render(line))
}
