// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"parley/internal/util"
)

// View renders the full screen.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	header := m.renderHeader()
	status := m.renderStatus()

	body := m.view.View()
	if !m.narrow() && !m.guest && !m.nav.Snapshot().SidebarCollapsed {
		sidebar := m.renderSidebar(sidebarWidth, m.view.Height)
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, body)
	}

	composer := m.renderComposer()

	screen := lipgloss.JoinVertical(lipgloss.Left, header, body, composer, status)

	// Narrow layout: the sidebar floats over the transcript.
	if m.narrow() && m.nav.Snapshot().SidebarOverlayOpen && !m.guest {
		overlay := m.theme.SidebarOverlay.Render(m.renderSidebar(m.width-4, m.height-6))
		return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, overlay)
	}
	return screen
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("parley")

	var who string
	if m.guest {
		who = m.theme.HeaderGuest.Render("guest mode · history off")
	} else if u := m.store.User(); u != nil {
		who = m.theme.HeaderUser.Render(u.DisplayName())
	}

	title := ""
	if sess := m.ctrl.Session(); sess != nil {
		title = util.TruncateWidth(sess.GetTitle(), 40)
	}

	gap := m.width - lipgloss.Width(brand) - lipgloss.Width(who) - lipgloss.Width(title) - 4
	if gap < 1 {
		gap = 1
	}
	line := brand + " " + title + strings.Repeat(" ", gap) + who
	return m.theme.Header.Width(m.width).Render(line)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar(width, height int) string {
	var b strings.Builder

	if m.searching {
		b.WriteString(m.theme.SidebarSearchPrompt.Render("/" + m.searchQuery + "▌"))
	} else {
		b.WriteString(m.theme.SidebarTitle.Render("Chats"))
	}
	b.WriteString("\n\n")

	chats := m.visibleChats()
	if m.listErr != nil {
		b.WriteString(m.theme.SidebarEmpty.Render("couldn't load chats"))
	} else if len(chats) == 0 {
		if m.searching {
			b.WriteString(m.theme.SidebarEmpty.Render("no matches"))
		} else {
			b.WriteString(m.theme.SidebarEmpty.Render("no conversations yet"))
		}
	}

	active := m.nav.ActiveChatID()
	for i, c := range chats {
		title := c.Title
		if title == "" {
			title = "New Chat"
		}
		title = util.TruncateWidth(title, width-4)

		style := m.theme.SidebarItem
		if c.ID == active {
			style = m.theme.SidebarItemActive
		}
		prefix := "  "
		if m.focus == focusSidebar && i == m.cursor {
			prefix = "> "
		}
		b.WriteString(prefix + style.Render(title) + "\n")

		if m.deleteArmed != "" && m.deleteArmed == c.ID {
			b.WriteString(m.theme.DeleteConfirm.Render("delete? y/n") + "\n")
		} else if c.Preview != "" && m.focus == focusSidebar && i == m.cursor {
			b.WriteString(m.theme.SidebarItemPreview.Render(util.TruncateWidth(c.Preview, width-4)) + "\n")
		}
	}

	return m.theme.Sidebar.Width(width).Height(height).Render(b.String())
}

// =============================================================================
// COMPOSER
// =============================================================================

func (m Model) renderComposer() string {
	if m.ctrl.InputCentered() {
		welcome := lipgloss.JoinVertical(lipgloss.Center,
			m.theme.WelcomeTitle.Render("What can I help with?"),
			"",
			m.theme.ComposerCentered.Render(m.composer.View()),
			"",
			m.theme.WelcomeHint.Render("enter to send · alt+enter for a new line"),
		)
		return lipgloss.Place(m.view.Width, 7, lipgloss.Center, lipgloss.Center, welcome)
	}

	var parts []string
	if options := m.ctrl.Options(); len(options) > 0 {
		parts = append(parts, m.renderOptions(options))
	}
	parts = append(parts, m.theme.Composer.Width(m.view.Width).Render(m.composer.View()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderOptions(options []string) string {
	chips := make([]string, 0, len(options))
	for i, opt := range options {
		style := m.theme.OptionChip
		if m.focus == focusOptions && i == m.optionCursor {
			style = m.theme.OptionChipFocus
		}
		chips = append(chips, style.Render(util.TruncateWidth(opt, 30)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatus() string {
	var left string
	switch {
	case m.ctrl.Err() != nil:
		left = m.theme.ErrorBanner.Render(util.TruncateWidth(m.ctrl.Err().Error(), m.width-30))
	case m.ctrl.LoadingActive():
		left = m.spin.View() + m.theme.ThinkingText.Render(" thinking...")
	default:
		left = m.theme.ShortcutKey.Render("^N") + m.theme.ShortcutDesc.Render(" new  ") +
			m.theme.ShortcutKey.Render("^B") + m.theme.ShortcutDesc.Render(" chats  ") +
			m.theme.ShortcutKey.Render("^T") + m.theme.ShortcutDesc.Render(" theme  ") +
			m.theme.ShortcutKey.Render("^C") + m.theme.ShortcutDesc.Render(" quit")
	}
	return m.theme.StatusBar.Width(m.width).Render(left)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript re-renders the conversation into the viewport and
// follows the newest message.
func (m *Model) refreshTranscript() {
	if m.view.Width == 0 {
		return
	}
	m.view.SetContent(m.renderTranscript())
	m.view.GotoBottom()
}

func (m *Model) renderTranscript() string {
	messages := m.ctrl.Messages()
	if len(messages) == 0 {
		return ""
	}

	width := m.view.Width - 2
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString("\n")
		switch {
		case msg.Role.String() == "user":
			bubble := m.theme.UserBubble.MaxWidth(width).Render(msg.Content)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble))
		default:
			b.WriteString(m.theme.AssistantText.MaxWidth(width).Render(m.renderBody(msg.Content)))
		}
		for _, att := range msg.Attachments {
			b.WriteString("\n" + m.theme.AttachmentChip.Render(fmt.Sprintf("⎘ %s (%d bytes)", att.Name, att.Size)))
		}
		if msg.Attachment != nil {
			b.WriteString("\n" + m.theme.AttachmentChip.Render("⎘ "+msg.Attachment.Name))
		}
		b.WriteString("\n")
	}
	return b.String()
}
