// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/chat"
	"parley/internal/config"
	"parley/internal/history"
	"parley/internal/localstore"
	"parley/internal/model"
	"parley/internal/nav"
	"parley/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

type focusArea int

const (
	focusComposer focusArea = iota
	focusSidebar
	focusOptions
)

// sidebarWidth is the sidebar's fixed width in the wide layout.
const sidebarWidth = 32

// =============================================================================
// MODEL
// =============================================================================

// Model is the root Bubble Tea model.
type Model struct {
	cfg   *config.Config
	ctrl  *chat.Controller
	nav   *nav.Store
	store *localstore.Store
	hist  *history.Loader

	theme *styles.Theme

	// events carries controller notifications into the update loop.
	events chan chat.Event

	// Components
	composer textarea.Model
	view     viewport.Model
	spin     spinner.Model

	// Sidebar state
	chats        []model.SessionMeta
	cursor       int
	searching    bool
	searchQuery  string
	deleteArmed  string // chat id awaiting confirmation, "" when disarmed
	listErr      error
	lastRefresh  uint64
	optionCursor int

	focus focusArea

	width  int
	height int
	ready  bool

	guest  bool
	userID string
}

// New assembles the TUI. The returned model owns the event channel wired
// into ctrl's sink; run it with tea.NewProgram(model).
func New(cfg *config.Config, store *localstore.Store, navStore *nav.Store, hist *history.Loader, newController func(emit func(chat.Event)) *chat.Controller) Model {
	events := make(chan chat.Event, 64)
	ctrl := newController(func(ev chat.Event) {
		// Never block a controller goroutine on a slow UI.
		select {
		case events <- ev:
		default:
		}
	})

	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	guest := store.GuestMode() || store.User() == nil
	userID := "guest"
	if u := store.User(); u != nil {
		userID = u.UserID
	}

	theme := styles.New(navStore.Snapshot().Theme)
	sp.Style = theme.Spinner

	return Model{
		cfg:      cfg,
		ctrl:     ctrl,
		nav:      navStore,
		store:    store,
		hist:     hist,
		theme:    theme,
		events:   events,
		composer: ta,
		spin:     sp,
		guest:    guest,
		userID:   userID,
	}
}

// Controller exposes the controller, mainly for tests.
func (m Model) Controller() *chat.Controller {
	return m.ctrl
}

// Init starts the event pump and the initial chat list load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForEvent(m.events),
		m.spin.Tick,
		textarea.Blink,
	}
	if !m.guest {
		cmds = append(cmds, loadChatList(m.hist, m.userID, ""))
	}
	return tea.Batch(cmds...)
}

// narrow reports whether the current width is below the breakpoint.
func (m Model) narrow() bool {
	return m.width > 0 && m.width < m.cfg.UI.NarrowBreakpoint
}

// visibleChats returns the sidebar entries after the local type-ahead
// filter. The backend search result replaces them when it lands.
func (m Model) visibleChats() []model.SessionMeta {
	if m.searching && m.searchQuery != "" {
		return history.FilterLocal(m.chats, m.searchQuery)
	}
	return m.chats
}
