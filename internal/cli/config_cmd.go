// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/pnuchat/internal/config"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(a.configInitCommand(), a.configShowCommand(), a.configPathCommand())
	return cmd
}

func (a *app) configInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				p, err := config.ConfigPathTOML()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Errorf("%s already exists (use --force to overwrite)", path)
			}
			save := func(cfg *config.Config) error { return config.SaveTOML(cfg, path) }
			if a.configPath == "" {
				save = config.Save
			}
			if err := save(config.Default()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (a *app) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), config.Global().String())
			return nil
		},
	}
}

func (a *app) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the files pnuchat reads and writes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, p := range []struct {
				label  string
				locate func() (string, error)
			}{
				{"config", config.ConfigPathTOML},
				{"config (yaml)", config.ConfigPathYAML},
				{"history", config.HistoryPath},
			} {
				path, err := p.locate()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-14s %s\n", p.label, path)
			}
			if a.configPath != "" {
				fmt.Fprintf(out, "%-14s %s\n", "config (flag)", a.configPath)
			}
			if err := a.loadConfig(); err == nil {
				if path, err := a.cfg.LogPath(); err == nil {
					fmt.Fprintf(out, "%-14s %s\n", "log", path)
				}
			}
			return nil
		},
	}
}
