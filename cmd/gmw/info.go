// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ppowo/gmw/internal/deploy"
	"github.com/ppowo/gmw/internal/maven"
)

func newInfoCommand(app *App) *cobra.Command {
	var client string
	cmd := &cobra.Command{
		Use:   "info [PROFILE]",
		Short: "Show what gmw detects for the current directory",
		Long: `Show the detected project and module, the build commands gmw would run,
the current revision and, when an artifact has been built, the restart
decision for it. Nothing is executed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var profile string
			if len(args) == 1 {
				profile = args[0]
			}
			return app.run(cmd, true, func(ctx context.Context, s *session) error {
				return s.info(ctx, profile, client)
			})
		},
	}
	cmd.Flags().StringVarP(&client, "client", "c", "", "client used for the restart command")
	return cmd
}

func (s *session) info(ctx context.Context, profile, client string) error {
	res, err := s.detect(ctx)
	if err != nil {
		return err
	}
	c := res.Classification
	proj := res.Project.Config

	plan, err := maven.Synthesize(c, proj, maven.Request{Profile: profile}, s.cfg.Maven)
	if err != nil {
		return err
	}
	target, remote, err := resolveDeployTarget(proj, client)
	if err != nil {
		return err
	}

	s.printDetection(res, plan, profile)
	s.field("Module path", c.ModulePath())
	s.field("Descriptor", res.Location.Path)
	s.field("WildFly", proj.WildFlyRoot+" ("+string(proj.WildFlyMode)+")")
	s.field("Target", target)
	s.printRevision(c.ModulePath())

	s.println()
	s.println("Build commands:")
	for _, inv := range plan.Invocations() {
		s.commandLine(inv.String())
	}

	art, err := s.findArtifact(res)
	switch {
	case errors.Is(err, deploy.ErrArtifactNotFound):
		s.println()
		s.println(s.style.muted.Render("No artifact in target/ yet."))
		return nil
	case err != nil:
		return err
	}
	s.println()
	s.field("Artifact", art.Path)
	s.printRestartDecision(proj, s.engine.Evaluate(art.Name(), art.Global), remote)
	return nil
}
