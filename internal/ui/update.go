// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/chat"
	"parley/internal/nav"
	"parley/internal/ui/styles"
)

// Update is the Bubble Tea update loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.nav.SetNarrow(m.narrow())
		m.layout()
		m.ready = true
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ctrlEventMsg:
		cmds = append(cmds, m.handleEvent(msg.event)...)
		cmds = append(cmds, waitForEvent(m.events))
		return m, tea.Batch(cmds...)

	case chatListMsg:
		if msg.err != nil {
			m.listErr = msg.err
			return m, nil
		}
		// Drop results for a query the user has already left behind.
		current := ""
		if m.searching {
			current = m.searchQuery
		}
		if msg.query != current {
			return m, nil
		}
		m.listErr = nil
		m.chats = msg.metas
		if m.cursor >= len(m.chats) {
			m.cursor = len(m.chats) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case deleteDoneMsg:
		m.deleteArmed = ""
		if msg.err != nil {
			return m, nil
		}
		if !m.guest {
			return m, loadChatList(m.hist, m.userID, "")
		}
		return m, nil

	case ConfigReloadedMsg:
		m.cfg = msg.Cfg
		if msg.Cfg.UI.Theme != "" {
			snap := m.nav.SetTheme(nav.ParseThemeMode(msg.Cfg.UI.Theme, m.nav.Snapshot().Theme))
			m.theme = styles.New(snap.Theme)
			m.spin.Style = m.theme.Spinner
		}
		m.nav.SetNarrow(m.narrow())
		m.layout()
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	cmds = append(cmds, cmd)
	m.view, cmd = m.view.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// layout sizes the viewport and composer for the current window.
func (m *Model) layout() {
	contentWidth := m.width
	if !m.narrow() && !m.nav.Snapshot().SidebarCollapsed && !m.guest {
		contentWidth -= sidebarWidth
	}
	if contentWidth < 20 {
		contentWidth = 20
	}

	headerHeight := 1
	composerHeight := 5
	statusHeight := 1
	viewHeight := m.height - headerHeight - composerHeight - statusHeight
	if viewHeight < 3 {
		viewHeight = 3
	}

	m.view.Width = contentWidth
	m.view.Height = viewHeight
	m.composer.SetWidth(contentWidth - 4)
}

// =============================================================================
// CONTROLLER EVENTS
// =============================================================================

func (m *Model) handleEvent(ev chat.Event) []tea.Cmd {
	var cmds []tea.Cmd

	switch ev.Kind {
	case chat.EventMessages, chat.EventSession, chat.EventOptions:
		m.optionCursor = 0
		if m.focus == focusOptions && len(m.ctrl.Options()) == 0 {
			m.focus = focusComposer
			m.composer.Focus()
		}
		m.refreshTranscript()

	case chat.EventReset:
		m.composer.Reset()
		m.optionCursor = 0
		m.focus = focusComposer
		m.composer.Focus()
		m.refreshTranscript()

	case chat.EventLoading, chat.EventError:
		// View reads these straight from the controller.
	}

	// Sends and deletions bump the refresh counter; reload the sidebar when
	// it moved.
	if snap := m.nav.Snapshot(); snap.RefreshSeq != m.lastRefresh {
		m.lastRefresh = snap.RefreshSeq
		if !m.guest {
			cmds = append(cmds, loadChatList(m.hist, m.userID, ""))
		}
	}
	return cmds
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global bindings first.
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+n":
		m.ctrl.NewChat()
		return m, nil

	case "ctrl+b":
		if !m.guest {
			m.nav.ToggleSidebar()
			m.layout()
			if m.focus == focusSidebar && m.sidebarHidden() {
				m.focus = focusComposer
				m.composer.Focus()
			}
		}
		return m, nil

	case "ctrl+t":
		snap := m.nav.ToggleTheme()
		m.theme = styles.New(snap.Theme)
		m.spin.Style = m.theme.Spinner
		_ = m.store.SetTheme(string(snap.Theme))
		m.refreshTranscript()
		return m, nil

	case "tab":
		return m.cycleFocus(), nil

	case "esc":
		return m.handleEscape(), nil
	}

	switch m.focus {
	case focusSidebar:
		return m.handleSidebarKey(msg)
	case focusOptions:
		return m.handleOptionsKey(msg)
	default:
		return m.handleComposerKey(msg)
	}
}

func (m Model) sidebarHidden() bool {
	snap := m.nav.Snapshot()
	if snap.Narrow {
		return !snap.SidebarOverlayOpen
	}
	return snap.SidebarCollapsed
}

func (m Model) cycleFocus() Model {
	switch m.focus {
	case focusComposer:
		if !m.guest && !m.sidebarHidden() {
			m.focus = focusSidebar
			m.composer.Blur()
		} else if len(m.ctrl.Options()) > 0 {
			m.focus = focusOptions
			m.composer.Blur()
		}
	case focusSidebar:
		if len(m.ctrl.Options()) > 0 {
			m.focus = focusOptions
		} else {
			m.focus = focusComposer
			m.composer.Focus()
		}
	case focusOptions:
		m.focus = focusComposer
		m.composer.Focus()
	}
	return m
}

func (m Model) handleEscape() Model {
	switch {
	case m.deleteArmed != "":
		m.deleteArmed = ""
	case m.searching:
		m.searching = false
		m.searchQuery = ""
	case m.focus != focusComposer:
		m.focus = focusComposer
		m.composer.Focus()
	case m.nav.Snapshot().SidebarOverlayOpen:
		m.nav.CloseSidebarOverlay()
	}
	return m
}

func (m Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if msg.Alt {
			break // alt+enter inserts a newline below
		}
		text := m.composer.Value()
		m.ctrl.Send(text, nil)
		m.composer.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	chats := m.visibleChats()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		m.deleteArmed = ""

	case "down", "j":
		if m.cursor < len(chats)-1 {
			m.cursor++
		}
		m.deleteArmed = ""

	case "enter":
		if m.cursor < len(chats) {
			m.ctrl.LoadSession(chats[m.cursor].ID)
			m.focus = focusComposer
			m.composer.Focus()
		}

	case "/":
		m.searching = true
		m.searchQuery = ""
		m.deleteArmed = ""

	case "d":
		if m.cursor < len(chats) {
			m.deleteArmed = chats[m.cursor].ID
		}

	case "y":
		if m.deleteArmed != "" {
			id := m.deleteArmed
			m.deleteArmed = ""
			return m, deleteChat(m.ctrl, id)
		}

	case "n":
		m.deleteArmed = ""
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		// The local filter already narrowed the list; enter asks the
		// backend for a full-text match over message bodies too.
		return m, loadChatList(m.hist, m.userID, m.searchQuery)

	case tea.KeyBackspace:
		if len(m.searchQuery) > 0 {
			runes := []rune(m.searchQuery)
			m.searchQuery = string(runes[:len(runes)-1])
		}
		return m, nil

	case tea.KeyRunes, tea.KeySpace:
		m.searchQuery += string(msg.Runes)
		if msg.Type == tea.KeySpace {
			m.searchQuery += " "
		}
		m.cursor = 0
		return m, nil
	}
	return m, nil
}

func (m Model) handleOptionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := m.ctrl.Options()
	if len(options) == 0 {
		m.focus = focusComposer
		m.composer.Focus()
		return m, nil
	}

	switch msg.String() {
	case "left", "h":
		if m.optionCursor > 0 {
			m.optionCursor--
		}
	case "right", "l":
		if m.optionCursor < len(options)-1 {
			m.optionCursor++
		}
	case "enter":
		m.ctrl.SelectOption(options[m.optionCursor])
		m.focus = focusComposer
		m.composer.Focus()
	}
	return m, nil
}
