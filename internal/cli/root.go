// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli wires the parley commands: the TUI by default, plus account,
// session, REPL, and config subcommands.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"parley/internal/api"
	"parley/internal/chat"
	"parley/internal/config"
	"parley/internal/history"
	"parley/internal/localstore"
	"parley/internal/nav"
	"parley/internal/ui"
	"parley/internal/ui/styles"
)

// App carries flags and lazily opened shared state across commands.
type App struct {
	ServerURL string
	Guest     bool

	cfg   *config.Config
	store *localstore.Store
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "parley",
		Short:        "Terminal client for the parley chat assistant",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(app)
		},
	}

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", "", "Backend base URL (overrides config)")
	cmd.PersistentFlags().BoolVar(&app.Guest, "guest", false, "Run without an account; nothing is saved server-side")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newSessionsCmd(app))
	cmd.AddCommand(newReplCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// Config loads the configuration once, applying the --server override.
func (a *App) Config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	path, err := config.Path()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if a.ServerURL != "" {
		cfg.Server.URL = a.ServerURL
	}
	a.cfg = cfg
	return cfg, nil
}

// Store opens the local store once.
func (a *App) Store() (*localstore.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := localstore.OpenDefault()
	if err != nil {
		return nil, err
	}
	if a.Guest {
		if err := store.SetGuestMode(true); err != nil {
			return nil, err
		}
	}
	a.store = store
	return store, nil
}

// Client builds the API client from config.
func (a *App) Client() (*api.Client, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.Server.URL), nil
}

// requireUser returns the signed-in user or an instructive error.
func (a *App) requireUser() (*localstore.UserRecord, error) {
	store, err := a.Store()
	if err != nil {
		return nil, err
	}
	u := store.User()
	if u == nil || store.GuestMode() {
		return nil, fmt.Errorf("not signed in: run 'parley login' (or use --guest)")
	}
	return u, nil
}

// initialTheme resolves the startup theme: config forces, then the stored
// preference, then the terminal background.
func initialTheme(cfg *config.Config, store *localstore.Store) nav.ThemeMode {
	if cfg.UI.Theme != "" {
		return nav.ParseThemeMode(cfg.UI.Theme, nav.ThemeDark)
	}
	if stored := store.Theme(); stored != "" {
		return nav.ParseThemeMode(stored, nav.ThemeDark)
	}
	return styles.DetectMode()
}

func runTUI(app *App) error {
	cfg, err := app.Config()
	if err != nil {
		return err
	}
	store, err := app.Store()
	if err != nil {
		return err
	}
	if store.User() == nil && !store.GuestMode() {
		return fmt.Errorf("not signed in: run 'parley login', or 'parley --guest' to try it out")
	}

	client := api.NewClient(cfg.Server.URL)
	navStore := nav.NewStore(initialTheme(cfg, store), nil)

	var cache *history.Cache
	if cfg.History.Cache {
		c, err := history.OpenCache(filepath.Join(store.Dir(), "chats.db"))
		if err == nil {
			cache = c
			defer c.Close()
		}
	}
	loader := history.NewLoader(client, cache)

	m := ui.New(cfg, store, navStore, loader, func(emit func(chat.Event)) *chat.Controller {
		return chat.NewController(client, store, navStore, emit)
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Live-reload the config so theme edits land without a restart.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if path, pathErr := config.Path(); pathErr == nil {
		go func() {
			_ = config.Watch(watchCtx, path, func(updated *config.Config) {
				p.Send(ui.ConfigReloadedMsg{Cfg: updated})
			})
		}()
	}

	_, err = p.Run()
	return err
}
