// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppowo/gmw/internal/config"
	"github.com/ppowo/gmw/internal/deploy"
	"github.com/ppowo/gmw/internal/restart"
	"github.com/ppowo/gmw/internal/runner"
)

type deployOptions struct {
	artifact string
	client   string
	restart  bool
	dryRun   bool
}

func newDeployCommand(app *App) *cobra.Command {
	var opts deployOptions
	cmd := &cobra.Command{
		Use:   "deploy [ARTIFACT]",
		Short: "Deploy the module's artifact to WildFly",
		Long: `Deploy the current module's artifact to the local WildFly installation or
to a remote client.

Without ARTIFACT the war or jar in the module's target directory is used.
Global modules are copied into their module directory; other artifacts are
hot-deployed (standalone) or deployed to the server group (domain). When the
change requires a restart gmw offers to perform it.`,
		Example: `  gmw deploy                       # local WildFly
  gmw deploy --client qa           # remote client "qa" over scp/ssh
  gmw deploy target/app.war --restart`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.artifact = args[0]
			}
			return app.run(cmd, true, func(ctx context.Context, s *session) error {
				return s.deploy(ctx, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.client, "client", "c", "", `target client ("local" for the local server)`)
	cmd.Flags().BoolVarP(&opts.restart, "restart", "r", false, "restart WildFly after deploying")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "print the deployment steps without running them")
	return cmd
}

func (s *session) deploy(ctx context.Context, opts deployOptions) error {
	res, err := s.detect(ctx)
	if err != nil {
		return err
	}
	c := res.Classification
	proj := res.Project.Config

	art := deploy.Artifact{Global: c.IsGlobal(), DeploymentPath: c.DeploymentPath()}
	if opts.artifact != "" {
		wd, err := s.app.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		art.Path = opts.artifact
		if !filepath.IsAbs(art.Path) {
			art.Path = filepath.Join(wd, art.Path)
		}
	} else {
		found, err := s.findArtifact(res)
		if err != nil {
			return err
		}
		art.Path = found.Path
	}

	target, remote, err := resolveDeployTarget(proj, opts.client)
	if err != nil {
		return err
	}

	var plan deploy.Plan
	if remote == nil {
		plan, err = deploy.LocalPlan(proj, art)
	} else {
		plan, err = deploy.RemotePlan(proj, target, *remote, art)
	}
	if err != nil {
		return err
	}

	decision := s.engine.Evaluate(art.Name(), art.Global)
	// A remote global module is restarted by the plan itself.
	restartInPlan := remote != nil && art.Global && remote.RestartCmd != ""

	s.field("Detected", c.ProjectName()+" / "+c.ModuleName())
	s.field("Artifact", art.Path)
	s.field("Target", target)
	s.heading("Deployment steps")
	s.printSteps(plan)
	s.println()
	s.printRestartDecision(proj, decision, remote)

	if opts.dryRun {
		return nil
	}

	ok, err := s.ask(ctx, fmt.Sprintf("Deploy %s to %s?", art.Name(), target))
	if err != nil {
		return err
	}
	if !ok {
		s.println("Deployment cancelled.")
		return nil
	}

	exec := &deploy.Executor{
		Runner:  s.runner,
		Logger:  s.logger,
		Options: s.deployOptions(),
		Progress: func(i, total int, step deploy.Step) {
			s.printf("%s %s\n", s.style.muted.Render(fmt.Sprintf("[%d/%d]", i, total)), step.Title)
		},
	}
	if err := exec.Execute(ctx, plan); err != nil {
		return err
	}
	s.println(s.style.success.Render("✓ Deployed " + art.Name() + " to " + target))

	if !restartInPlan {
		if err := s.maybeRestart(ctx, exec, proj, remote, decision, opts.restart); err != nil {
			return err
		}
	}
	return nil
}

// maybeRestart restarts when forced, asks when a restart is required and
// only reports otherwise.
func (s *session) maybeRestart(ctx context.Context, exec *deploy.Executor, proj config.ProjectConfig, remote *config.RemoteConfig, d restart.Decision, force bool) error {
	if !force && d.Severity != restart.Required {
		return nil
	}
	step, err := deploy.RestartPlan(proj, remote)
	if err != nil {
		return err
	}
	if !force {
		ok, err := s.ask(ctx, "A restart is required ("+d.Reason+"). Restart now?")
		if err != nil {
			return err
		}
		if !ok {
			s.println("Restart skipped. Run it later with:")
			s.commandLine(step.String())
			return nil
		}
	}
	s.printf("%s\n", step.Title)
	if err := exec.Run(ctx, step); err != nil {
		return err
	}
	s.println(s.style.success.Render("✓ Restart triggered"))
	return nil
}

func (s *session) deployOptions() runner.Options {
	return runner.Options{
		Kind:    runner.KindDeploy,
		Timeout: s.cfg.Timeouts.DeployTimeout(),
		Stdout:  s.out,
		Stderr:  s.errOut,
	}
}
