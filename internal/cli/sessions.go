// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"parley/internal/history"
	"parley/internal/util"
)

// =============================================================================
// SESSIONS
// =============================================================================

func newSessionsCmd(app *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List saved conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.requireUser()
			if err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			store, err := app.Store()
			if err != nil {
				return err
			}

			var cache *history.Cache
			if cfg.History.Cache {
				if c, cacheErr := history.OpenCache(filepath.Join(store.Dir(), "chats.db")); cacheErr == nil {
					cache = c
					defer c.Close()
				}
			}
			loader := history.NewLoader(client, cache)

			metas, err := loader.Search(cmd.Context(), user.UserID, search)
			if err != nil {
				return err
			}
			if len(metas) == 0 {
				fmt.Println("No conversations.")
				return nil
			}

			for _, m := range metas {
				title := m.Title
				if title == "" {
					title = "New Chat"
				}
				line := fmt.Sprintf("%-14s %s", m.ID, util.TruncateWidth(title, 50))
				if !m.UpdatedAt.IsZero() {
					line += "  " + m.UpdatedAt.Format("2006-01-02 15:04")
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter conversations by a search query")
	cmd.AddCommand(newSessionsDeleteCmd(app))
	return cmd
}

func newSessionsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <chat-id>",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireUser(); err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			if err := client.DeleteChat(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}
