// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppowo/gmw/internal/config"
	"github.com/ppowo/gmw/internal/deploy"
	"github.com/ppowo/gmw/internal/detector"
	"github.com/ppowo/gmw/internal/maven"
	"github.com/ppowo/gmw/internal/runner"
	"github.com/ppowo/gmw/internal/watch"
)

type buildOptions struct {
	profile   string
	client    string
	skipTests bool
	dryRun    bool
	watch     bool
}

func newBuildCommand(app *App) *cobra.Command {
	var opts buildOptions
	cmd := &cobra.Command{
		Use:   "build [PROFILE]",
		Short: "Build the Maven module in the current directory",
		Long: `Build the current Maven module with the configuration of its project.

The command will:
  1. Detect which project and module you are in
  2. Show the Maven command(s) it will run
  3. Ask for confirmation
  4. Run the build and report the artifact, whether WildFly needs a
     restart and how to deploy it to the selected client`,
		Example: `  gmw build             # default profile of the project
  gmw build PROD        # PROD profile, or its profile_overrides entry
  gmw build --dry-run   # print the commands only`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.profile = args[0]
			}
			return app.run(cmd, true, func(ctx context.Context, s *session) error {
				return s.build(ctx, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.client, "client", "c", "", "remote client for the deployment guide")
	cmd.Flags().BoolVar(&opts.skipTests, "skip-tests", false, "skip tests regardless of the project setting")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "print the build commands without running them")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "rebuild whenever sources change")
	cmd.MarkFlagsMutuallyExclusive("watch", "dry-run")
	return cmd
}

func (s *session) build(ctx context.Context, opts buildOptions) error {
	res, err := s.detect(ctx)
	if err != nil {
		return err
	}
	proj := res.Project.Config

	plan, err := maven.Synthesize(res.Classification, proj, maven.Request{Profile: opts.profile, SkipTests: opts.skipTests}, s.cfg.Maven)
	if err != nil {
		return err
	}

	// Resolve the client up front so a typo fails before a long build.
	client, remote, err := resolveTarget(proj, opts.client)
	if err != nil {
		return err
	}

	s.printDetection(res, plan, opts.profile)
	s.println()
	if opts.dryRun {
		s.println("Would execute:")
	} else {
		s.println("Will execute:")
	}
	for _, inv := range plan.Invocations() {
		s.commandLine(inv.String())
	}
	if opts.dryRun {
		return nil
	}

	ok, err := s.ask(ctx, "Proceed with the build?")
	if err != nil {
		return err
	}
	if !ok {
		s.println("Build cancelled.")
		return nil
	}

	if err := s.runBuild(ctx, plan); err != nil {
		return err
	}
	s.afterBuild(res, client, remote)

	if !opts.watch {
		return nil
	}
	return s.watch(ctx, res, plan, client, remote)
}

// runBuild runs the plan's invocations in order, streaming their output.
func (s *session) runBuild(ctx context.Context, plan maven.Plan) error {
	opts := runner.Options{
		Kind:    runner.KindBuild,
		Timeout: s.settings.BuildTimeout(s.cfg),
		Stdout:  s.out,
		Stderr:  s.errOut,
	}
	for i, inv := range plan.Invocations() {
		if i == 0 {
			s.printf("\n%s\n", s.style.title.Render("Building..."))
		} else {
			s.printf("\n%s\n", s.style.title.Render("Installing jar into the local repository..."))
		}
		if _, err := s.runner.Run(ctx, toCommand(inv), opts); err != nil {
			return err
		}
	}
	return nil
}

// afterBuild reports the artifact, the restart decision and the remote
// deployment guide. Nothing here fails the build.
func (s *session) afterBuild(res *detector.Result, client string, remote *config.RemoteConfig) {
	c := res.Classification
	s.printf("\n%s\n", s.style.success.Render("✓ Build completed successfully"))
	s.printRevision(c.ModulePath())

	art, err := s.findArtifact(res)
	if err != nil {
		if errors.Is(err, deploy.ErrArtifactNotFound) {
			if !c.IsAggregator() {
				s.logger.Warn("no artifact found", "dir", filepath.Join(c.ModulePath(), "target"))
			}
		} else {
			s.logger.Warn("artifact lookup failed", "err", err)
		}
		return
	}

	s.field("Artifact", art.Path)
	decision := s.engine.Evaluate(art.Name(), art.Global)
	s.printRestartDecision(res.Project.Config, decision, remote)

	if remote == nil {
		return
	}
	plan, err := deploy.RemotePlan(res.Project.Config, client, *remote, art)
	if err != nil {
		s.logger.Warn("cannot build the remote deployment guide", "err", err)
		return
	}
	s.printGuide(plan)
}

func (s *session) findArtifact(res *detector.Result) (deploy.Artifact, error) {
	c := res.Classification
	rel, err := deploy.FindArtifact(s.app.ArtifactFS(c.ModulePath()), "target", c.ModuleName())
	if err != nil {
		return deploy.Artifact{}, err
	}
	return deploy.Artifact{
		Path:           filepath.Join(c.ModulePath(), filepath.FromSlash(rel)),
		Global:         c.IsGlobal(),
		DeploymentPath: c.DeploymentPath(),
	}, nil
}

func (s *session) watch(ctx context.Context, res *detector.Result, plan maven.Plan, client string, remote *config.RemoteConfig) error {
	w, err := watch.New(watch.Config{
		ModuleDir: res.Classification.ModulePath(),
		Logger:    s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			s.printf("\n%s %s\n", s.style.muted.Render("changed:"), strings.Join(changed, ", "))
			if err := s.runBuild(ctx, plan); err != nil {
				return err
			}
			s.afterBuild(res, client, remote)
			return nil
		},
	})
	if err != nil {
		return err
	}
	s.printf("\n%s\n", s.style.muted.Render("Watching for changes. Press Ctrl-C to stop."))
	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// resolveTarget picks the target of the deployment guide: the named client,
// else the project's default client, else the local server (remote is nil).
func resolveTarget(proj config.ProjectConfig, client string) (string, *config.RemoteConfig, error) {
	if client == deploy.LocalTarget {
		return deploy.LocalTarget, nil, nil
	}
	if client == "" && proj.DefaultTarget() == "" {
		return deploy.LocalTarget, nil, nil
	}
	name, remote, err := proj.Target(client)
	if err != nil {
		return "", nil, err
	}
	return name, &remote, nil
}

// resolveDeployTarget is resolveTarget for actual deployments, which only go
// to a remote client when it is named or set as default_client.
func resolveDeployTarget(proj config.ProjectConfig, client string) (string, *config.RemoteConfig, error) {
	if client == "" {
		client = proj.DefaultClient
	}
	if client == "" {
		return deploy.LocalTarget, nil, nil
	}
	return resolveTarget(proj, client)
}

func toCommand(inv maven.Invocation) runner.Command {
	return runner.Command{Program: inv.Program, Args: inv.Args, Dir: inv.Dir}
}
