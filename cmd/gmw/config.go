// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppowo/gmw/internal/config"
	"github.com/ppowo/gmw/internal/restart"
)

func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the gmw configuration",
		Long: `Manage the gmw configuration.

The configuration is read from --config, GMW_CONFIG, or the first of
config.cue, config.yaml, config.yml and config.toml in $XDG_CONFIG_HOME/gmw
(~/.config/gmw).`,
	}
	cmd.AddCommand(
		newConfigShowCommand(app),
		newConfigPathCommand(app),
		newConfigInitCommand(app),
		newConfigValidateCommand(app),
	)
	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, true, func(ctx context.Context, s *session) error {
				data, err := config.MarshalYAML(s.cfg)
				if err != nil {
					return err
				}
				s.printf("# %s\n%s", s.cfg.Source(), data)
				return nil
			})
		},
	}
}

func newConfigPathCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file gmw would load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, false, func(ctx context.Context, s *session) error {
				opts := config.LoadOptions{ConfigFilePath: s.settings.ConfigPath}
				path, err := config.Resolve(opts)
				if errors.Is(err, config.ErrConfigNotFound) {
					if path, err = config.DefaultPath(opts); err != nil {
						return err
					}
					s.println(path + s.style.muted.Render(" (does not exist)"))
					return nil
				}
				if err != nil {
					return err
				}
				s.println(path)
				return nil
			})
		},
	}
}

func newConfigInitCommand(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, false, func(ctx context.Context, s *session) error {
				path, err := config.DefaultPath(config.LoadOptions{ConfigFilePath: s.settings.ConfigPath})
				if err != nil {
					return err
				}
				if err := config.WriteStarter(path, force); err != nil {
					if errors.Is(err, config.ErrConfigExists) {
						return fmt.Errorf("%w (use --force to overwrite)", err)
					}
					return err
				}
				s.println(s.style.success.Render("✓ Wrote starter configuration to " + path))
				s.println("Edit base_path, wildfly_root and the modules table, then run 'gmw config validate'.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func newConfigValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and report every problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, false, func(ctx context.Context, s *session) error {
				cfg, err := s.app.loadConfig(ctx, s.settings)
				if err != nil {
					return err
				}
				for _, key := range cfg.Deprecated() {
					s.println(s.style.warning.Render("warning: ") + key + " is no longer read")
				}
				_, warnings := restart.Compile(cfg.RestartRules)
				for _, w := range warnings {
					s.println(s.style.warning.Render("warning: ") + w.Error())
				}
				s.println(s.style.success.Render(fmt.Sprintf("✓ %s is valid (%d projects, %d restart warnings)",
					cfg.Source(), len(cfg.Projects), len(warnings))))
				return nil
			})
		},
	}
}
