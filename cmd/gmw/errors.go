// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/ppowo/gmw/internal/config"
	"github.com/ppowo/gmw/internal/deploy"
	"github.com/ppowo/gmw/internal/detector"
	"github.com/ppowo/gmw/internal/issue"
	"github.com/ppowo/gmw/internal/maven"
	"github.com/ppowo/gmw/internal/runner"
	"github.com/ppowo/gmw/pkg/pom"
)

// classifyError maps an error to its catalog entry and process exit code.
// Errors without a catalog entry yield id 0 and ExitFailure.
func classifyError(err error) (issue.Id, int) {
	var (
		cfgErr  *configError
		execErr *runner.ExecError
	)

	switch {
	case errors.Is(err, config.ErrUnknownClient):
		return issue.UnknownClientId, ExitConfig
	case errors.As(err, &cfgErr), errors.Is(err, deploy.ErrMissingServerGroup):
		return issue.ConfigLoadFailedId, ExitConfig
	case errors.Is(err, detector.ErrNotInProject):
		return issue.NotInProjectId, ExitDetection
	case errors.Is(err, pom.ErrDescriptorNotFound):
		return issue.DescriptorNotFoundId, ExitDetection
	case errors.Is(err, pom.ErrParse):
		return issue.DescriptorInvalidId, ExitDetection
	case errors.Is(err, detector.ErrUnconfiguredModule):
		return issue.UnconfiguredModuleId, ExitDetection
	case errors.Is(err, maven.ErrInvalidProfile):
		return issue.InvalidProfileId, ExitDetection
	case errors.Is(err, deploy.ErrArtifactNotFound):
		return issue.ArtifactNotFoundId, ExitDeploy
	case errors.Is(err, runner.ErrBuildExecution):
		if errors.As(err, &execErr) && execErr.ExitCode > 0 {
			return issue.BuildFailedId, execErr.ExitCode
		}
		return issue.BuildFailedId, ExitBuild
	case errors.Is(err, runner.ErrDeploymentIO):
		return issue.DeploymentFailedId, ExitDeploy
	default:
		return 0, ExitFailure
	}
}

// fail renders err and converts it into an *ExitError.
func (a *App) fail(err error, s config.Settings) error {
	id, code := classifyError(err)
	renderError(a.stderr, err, id, s)
	return &ExitError{Code: code, Err: err, rendered: true}
}

// renderError writes the error, any remediation it carries and, in verbose
// mode, the catalog guidance for id.
func renderError(w io.Writer, err error, id issue.Id, s config.Settings) {
	p := newPalette(s.NoColor)

	msg := err.Error()
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		msg = ae.Format(s.Verbose)
	}
	fmt.Fprintln(w, p.err.Render("Error:")+" "+msg)

	var unconfigured *detector.UnconfiguredModuleError
	if errors.As(err, &unconfigured) {
		fmt.Fprintln(w)
		fmt.Fprint(w, unconfigured.Remediation())
	}

	entry := issue.Get(id)
	if entry == nil {
		return
	}
	if !s.Verbose {
		fmt.Fprintln(w, p.muted.Render("Run with --verbose for troubleshooting steps."))
		return
	}
	if s.NoColor {
		fmt.Fprintln(w)
		fmt.Fprintln(w, entry.Plain())
		return
	}
	rendered, rerr := entry.Render("auto")
	if rerr != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, entry.Plain())
		return
	}
	fmt.Fprint(w, rendered)
}
