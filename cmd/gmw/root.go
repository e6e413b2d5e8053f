// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/ppowo/gmw/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand creates the gmw command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "gmw",
		Short: "Build and deploy Maven modules to WildFly",
		Long: TitleStyle.Render("gmw") + SubtitleStyle.Render(" - build and deploy Maven modules to WildFly") + `

gmw works out which configured project and module the current directory
belongs to, runs the right Maven command for it and tells you how to get the
artifact onto a WildFly server and whether the server needs a restart.

` + SubtitleStyle.Render("Examples:") + `
  gmw build              Build with the project's default profile
  gmw build PROD         Build with the PROD profile
  gmw build --watch      Rebuild whenever sources change
  gmw deploy             Deploy the built artifact to the local server
  gmw deploy --client qa Deploy to the remote client "qa"
  gmw info               Show what gmw detected, without building`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	flags := root.PersistentFlags()
	flags.BoolP(config.KeyVerbose, "v", false, "enable verbose output")
	flags.BoolP(config.KeyYes, "y", false, "answer yes to every confirmation")
	flags.Duration(config.KeyTimeout, 0, "override the build timeout (e.g. 45m)")
	flags.String(config.KeyConfig, "", "config file (default is $XDG_CONFIG_HOME/gmw/config.{cue,yaml,yml,toml})")
	flags.Bool(config.KeyNoColor, false, "disable styled output")

	root.AddCommand(
		newBuildCommand(app),
		newDeployCommand(app),
		newClientsCommand(app),
		newInfoCommand(app),
		newConfigCommand(app),
		newVersionCommand(app),
	)
	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)
	// fang prints errors of a non-terminal *os.File stderr verbatim,
	// bypassing the handler. Hiding the file keeps rendered errors from
	// being printed twice.
	root.SetErr(struct{ io.Writer }{app.stderr})

	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			var exitErr *ExitError
			if errors.As(err, &exitErr) && exitErr.rendered {
				return
			}
			fang.DefaultErrorHandler(w, styles, err)
		}),
	)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Main is the entry point used by main.main.
func Main() int {
	return Execute(context.Background(), NewApp(Dependencies{}), os.Args[1:])
}
