// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"parley/internal/config"
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change configuration",
	}
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print a config value, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			values := map[string]string{
				"server.url":           cfg.Server.URL,
				"ui.theme":             cfg.UI.Theme,
				"ui.narrow_breakpoint": strconv.Itoa(cfg.UI.NarrowBreakpoint),
				"ui.markdown":          strconv.FormatBool(cfg.UI.Markdown),
				"history.cache":        strconv.FormatBool(cfg.History.Cache),
			}

			if len(args) == 1 {
				v, ok := values[args[0]]
				if !ok {
					return fmt.Errorf("unknown config key %q", args[0])
				}
				fmt.Println(v)
				return nil
			}
			for _, key := range []string{"server.url", "ui.theme", "ui.narrow_breakpoint", "ui.markdown", "history.cache"} {
				fmt.Printf("%s = %s\n", key, values[key])
			}
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a config value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			switch key {
			case "server.url":
				cfg.Server.URL = value
			case "ui.theme":
				cfg.UI.Theme = value
			case "ui.narrow_breakpoint":
				n, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("ui.narrow_breakpoint needs a number: %w", err)
				}
				cfg.UI.NarrowBreakpoint = n
			case "ui.markdown":
				b, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("ui.markdown needs true or false: %w", err)
				}
				cfg.UI.Markdown = b
			case "history.cache":
				b, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("history.cache needs true or false: %w", err)
				}
				cfg.History.Cache = b
			default:
				return fmt.Errorf("unknown config key %q", key)
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Printf("%s = %s\n", key, value)
			return nil
		},
	}
}
