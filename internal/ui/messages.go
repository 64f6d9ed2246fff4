// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/chat"
	"parley/internal/config"
	"parley/internal/history"
	"parley/internal/model"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// ctrlEventMsg wraps a controller event for the update loop.
type ctrlEventMsg struct {
	event chat.Event
}

// chatListMsg carries a (re)loaded sidebar chat list.
type chatListMsg struct {
	metas []model.SessionMeta
	query string
	err   error
}

// deleteDoneMsg reports the outcome of a sidebar deletion.
type deleteDoneMsg struct {
	chatID string
	err    error
}

// ConfigReloadedMsg is sent from outside the program when the config file
// changes on disk (see config.Watch).
type ConfigReloadedMsg struct {
	Cfg *config.Config
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForEvent blocks on the controller event channel. The update loop
// re-issues it after every event so the stream never stalls.
func waitForEvent(events <-chan chat.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return ctrlEventMsg{event: ev}
	}
}

// loadChatList fetches the sidebar list, optionally filtered by query.
func loadChatList(loader *history.Loader, userID, query string) tea.Cmd {
	return func() tea.Msg {
		metas, err := loader.Search(context.Background(), userID, query)
		return chatListMsg{metas: metas, query: query, err: err}
	}
}

// deleteChat removes a conversation through the controller.
func deleteChat(ctrl *chat.Controller, chatID string) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.DeleteChat(context.Background(), chatID)
		return deleteDoneMsg{chatID: chatID, err: err}
	}
}
