// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppowo/gmw/internal/deploy"
	"github.com/ppowo/gmw/internal/detector"
)

func newClientsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List the deployment clients of the current project",
		Long: `List the remote deployment clients of the project that contains the
current directory, or of every project when run elsewhere. The default
client is marked with '*'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, true, func(ctx context.Context, s *session) error {
				return s.clients()
			})
		},
	}
}

func (s *session) clients() error {
	wd, err := s.app.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	abs, err := filepath.Abs(wd)
	if err != nil {
		return err
	}

	names := s.cfg.ProjectNames()
	if rp, err := detector.ResolveProject(abs, s.cfg); err == nil {
		names = []string{rp.Name}
	} else if !errors.Is(err, detector.ErrNotInProject) {
		return err
	}

	for i, name := range names {
		if i > 0 {
			s.println()
		}
		proj, _ := s.cfg.Project(name)
		s.println(s.style.title.Render(name))

		targets := proj.Targets()
		if len(targets) == 0 {
			s.println(s.style.muted.Render("  no remote clients; deployments go to the " + deploy.LocalTarget + " server"))
			continue
		}
		def := proj.DefaultTarget()
		w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  \tCLIENT\tADDRESS\tWILDFLY\tRESTART")
		for _, client := range slices.Sorted(maps.Keys(targets)) {
			t := targets[client]
			mark := ""
			if client == def {
				mark = "*"
			}
			restartCmd := t.RestartCmd
			if restartCmd == "" {
				restartCmd = "-"
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", mark, client, t.Address(), t.WildFlyPath, restartCmd)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
