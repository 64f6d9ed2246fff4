// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"testing"

	"parley/internal/api"
	"parley/internal/chat"
	"parley/internal/config"
	"parley/internal/history"
	"parley/internal/localstore"
	"parley/internal/model"
	"parley/internal/nav"
)

func newTestModel(t *testing.T, guest bool) Model {
	t.Helper()

	store, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if guest {
		if err := store.SetGuestMode(true); err != nil {
			t.Fatal(err)
		}
	} else {
		if err := store.SetUser(localstore.UserRecord{UserID: "alice"}); err != nil {
			t.Fatal(err)
		}
	}

	client := api.NewClient("http://127.0.0.1:1")
	navStore := nav.NewStore(nav.ThemeDark, nil)
	loader := history.NewLoader(client, nil)

	return New(config.DefaultConfig(), store, navStore, loader, func(emit func(chat.Event)) *chat.Controller {
		return chat.NewController(client, store, navStore, emit)
	})
}

func TestNarrowBreakpoint(t *testing.T) {
	m := newTestModel(t, false)

	m.width = 120
	if m.narrow() {
		t.Error("120 columns should be wide")
	}
	m.width = 79
	if !m.narrow() {
		t.Error("79 columns should be narrow with the default breakpoint of 80")
	}
	m.width = 0
	if m.narrow() {
		t.Error("unknown width should not count as narrow")
	}
}

func TestVisibleChatsAppliesLocalFilter(t *testing.T) {
	m := newTestModel(t, false)
	m.chats = []model.SessionMeta{
		{ID: "c1", Title: "Japan trip"},
		{ID: "c2", Title: "Groceries"},
	}

	if got := m.visibleChats(); len(got) != 2 {
		t.Fatalf("unfiltered = %d entries", len(got))
	}

	m.searching = true
	m.searchQuery = "japan"
	got := m.visibleChats()
	if len(got) != 1 || got[0].ID != "c1" {
		t.Errorf("filtered = %+v", got)
	}

	// Empty query shows everything while search mode is active.
	m.searchQuery = ""
	if got := m.visibleChats(); len(got) != 2 {
		t.Errorf("empty query = %d entries", len(got))
	}
}

func TestEscapePrecedence(t *testing.T) {
	m := newTestModel(t, false)

	// Armed delete is dismissed first.
	m.deleteArmed = "c1"
	m.searching = true
	m = m.handleEscape()
	if m.deleteArmed != "" {
		t.Error("escape should disarm delete first")
	}
	if !m.searching {
		t.Error("search should survive the first escape")
	}

	// Then search mode.
	m = m.handleEscape()
	if m.searching {
		t.Error("second escape should leave search mode")
	}

	// Then focus returns to the composer.
	m.focus = focusSidebar
	m = m.handleEscape()
	if m.focus != focusComposer {
		t.Errorf("focus = %v, want composer", m.focus)
	}
}

func TestSidebarHidden(t *testing.T) {
	m := newTestModel(t, false)

	if m.sidebarHidden() {
		t.Error("sidebar visible by default in wide layout")
	}
	m.nav.SetSidebarCollapsed(true)
	if !m.sidebarHidden() {
		t.Error("collapsed sidebar should be hidden when wide")
	}

	m.nav.SetNarrow(true)
	if !m.sidebarHidden() {
		t.Error("overlay closed: hidden when narrow")
	}
	m.nav.ToggleSidebar()
	if m.sidebarHidden() {
		t.Error("open overlay should count as visible")
	}
}

func TestGuestHasNoSidebarFocus(t *testing.T) {
	m := newTestModel(t, true)
	m.focus = focusComposer
	m = m.cycleFocus()
	if m.focus == focusSidebar {
		t.Error("guests have no chat list to focus")
	}
}
