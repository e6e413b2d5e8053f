// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"

	"github.com/ppowo/gmw/internal/config"
	"github.com/ppowo/gmw/internal/deploy"
	"github.com/ppowo/gmw/internal/detector"
	"github.com/ppowo/gmw/internal/maven"
	"github.com/ppowo/gmw/internal/restart"
)

func (s *session) printDetection(res *detector.Result, plan maven.Plan, requested string) {
	c := res.Classification
	s.field("Detected", c.ProjectName()+" / "+c.ModuleName())
	s.field("Packaging", c.Packaging())
	if c.IsMultiModuleBuild() {
		s.field("Build root", c.RepoRoot()+" (multi-module)")
	}
	if c.IsGlobal() {
		s.field("Deployment", "global module at "+c.DeploymentPath())
	} else {
		s.field("Deployment", "standard")
	}
	if len(plan.Profiles) > 0 {
		profiles := strings.Join(plan.Profiles, ", ")
		if requested == "" {
			profiles += " (default)"
		}
		s.field("Profiles", profiles)
	}
}

func (s *session) printRevision(dir string) {
	rev, err := s.app.Revision(dir)
	if err != nil {
		s.logger.Debug("revision unavailable", "dir", dir, "err", err)
		return
	}
	if rev != nil {
		s.field("Revision", rev.String())
	}
}

// printRestartDecision shows the severity and, when a restart is advised,
// the command that performs it on the selected target.
func (s *session) printRestartDecision(proj config.ProjectConfig, d restart.Decision, remote *config.RemoteConfig) {
	var sev string
	switch d.Severity {
	case restart.Required:
		sev = s.style.err.Render("required")
	case restart.Recommended:
		sev = s.style.warning.Render("recommended")
	default:
		sev = s.style.success.Render("not needed")
	}
	s.field("Restart", sev+" ("+d.Reason+")")

	if d.Severity == restart.None {
		return
	}
	step, err := deploy.RestartPlan(proj, remote)
	if err != nil {
		s.logger.Debug("no restart command", "err", err)
		return
	}
	s.commandLine(step.String())
}

// printSteps lists a deployment plan as numbered shell commands.
func (s *session) printSteps(plan deploy.Plan) {
	if plan.Host != "" {
		s.field("Host", plan.Host)
	}
	for i, step := range plan.Steps {
		title := step.Title
		if step.Optional {
			title += s.style.muted.Render(" (failure is ignored)")
		}
		s.printf("%d. %s\n", i+1, title)
		s.commandLine(step.String())
	}
	if plan.Verify != nil {
		s.println(plan.Verify.Title + ":")
		s.commandLine(plan.Verify.String())
	}
}

func (s *session) printGuide(plan deploy.Plan) {
	s.heading("Remote deployment guide (" + plan.Target + ")")
	s.printSteps(plan)
}
