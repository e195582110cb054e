package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ordinex/ordinex/internal/config"
	"github.com/ordinex/ordinex/internal/ux"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit Ordinex configuration",
		Long: `Manage the configuration stored at ~/.ordinex/config.yaml (or --config).

Values shown by view and get include .env and ORDINEX_* overrides; set
writes only to the file.

Examples:
  ordinex config view
  ordinex config get store.path
  ordinex config set server.port 9090
  ordinex config path`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "view",
			Short: "Display the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if a.format == ux.FormatText || a.format == "" {
					data, err := yaml.Marshal(a.cfg)
					if err != nil {
						return fmt.Errorf("marshal config: %w", err)
					}
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				return a.output(cmd, a.cfg)
			},
		},
		&cobra.Command{
			Use:       "get <key>",
			Short:     "Print one configuration value",
			Args:      cobra.ExactArgs(1),
			ValidArgs: config.Keys(),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := a.cfg.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:       "set <key> <value>",
			Short:     "Set one configuration value in the config file",
			Args:      cobra.ExactArgs(2),
			ValidArgs: config.Keys(),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := a.resolvedConfigPath()
				if err != nil {
					return err
				}

				cfg, err := config.LoadFile(path)
				if err != nil {
					return err
				}
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := cfg.Validate(); err != nil {
					return err
				}
				if err := config.Save(cfg, path); err != nil {
					return err
				}

				a.logger.Debug("config updated", "key", args[0], "path", path)
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := a.resolvedConfigPath()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
	)

	return cmd
}

func (a *app) resolvedConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.DefaultPath()
}
