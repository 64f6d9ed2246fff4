// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"parley/internal/nav"
)

// Theme holds all the styled components for the application, built from one
// palette.
type Theme struct {
	Mode         nav.ThemeMode
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderUser  lipgloss.Style
	HeaderGuest lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar             lipgloss.Style
	SidebarOverlay      lipgloss.Style
	SidebarTitle        lipgloss.Style
	SidebarItem         lipgloss.Style
	SidebarItemActive   lipgloss.Style
	SidebarItemPreview  lipgloss.Style
	SidebarSearchPrompt lipgloss.Style
	SidebarEmpty        lipgloss.Style
	DeleteConfirm       lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantText   lipgloss.Style
	AttachmentChip  lipgloss.Style
	OptionChip      lipgloss.Style
	OptionChipFocus lipgloss.Style
	Timestamp       lipgloss.Style

	// ==========================================================================
	// COMPOSER STYLES
	// ==========================================================================

	Composer         lipgloss.Style
	ComposerCentered lipgloss.Style
	WelcomeTitle     lipgloss.Style
	WelcomeHint      lipgloss.Style

	// ==========================================================================
	// STATUS STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
	ErrorBanner  lipgloss.Style
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// New builds the theme for a mode.
func New(mode nav.ThemeMode) *Theme {
	t := &Theme{
		Mode:         mode,
		ColorProfile: termenv.ColorProfile(),
	}
	if mode == nav.ThemeLight {
		t.initStyles(LightPalette())
	} else {
		t.initStyles(DarkPalette())
	}
	return t
}

// DetectMode returns the theme mode matching the terminal background. Used
// when neither config nor the stored preference decide.
func DetectMode() nav.ThemeMode {
	if termenv.HasDarkBackground() {
		return nav.ThemeDark
	}
	return nav.ThemeLight
}

func (t *Theme) initStyles(p Palette) {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(p.SurfaceDim).
		Foreground(p.TextSecondary).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent)

	t.HeaderUser = lipgloss.NewStyle().
		Foreground(p.AccentAlt)

	t.HeaderGuest = lipgloss.NewStyle().
		Foreground(p.Warn).
		Italic(true)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(p.Overlay).
		Padding(0, 1)

	t.SidebarOverlay = lipgloss.NewStyle().
		Background(p.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(0, 1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.TextSecondary)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(p.TextPrimary).
		Padding(0, 1)

	t.SidebarItemActive = lipgloss.NewStyle().
		Background(p.Accent).
		Foreground(p.TextInverse).
		Bold(true).
		Padding(0, 1)

	t.SidebarItemPreview = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		PaddingLeft(2)

	t.SidebarSearchPrompt = lipgloss.NewStyle().
		Foreground(p.AccentAlt).
		Bold(true)

	t.SidebarEmpty = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Italic(true).
		Padding(1, 1)

	t.DeleteConfirm = lipgloss.NewStyle().
		Foreground(p.Danger).
		Bold(true).
		Padding(0, 1)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(p.UserBubbleFg).
		Background(p.UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantText = lipgloss.NewStyle().
		Foreground(p.TextPrimary).
		MarginRight(4)

	t.AttachmentChip = lipgloss.NewStyle().
		Foreground(p.AccentAlt).
		Background(p.Surface).
		Padding(0, 1)

	t.OptionChip = lipgloss.NewStyle().
		Foreground(p.AccentAlt).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Overlay).
		Padding(0, 1).
		MarginRight(1)

	t.OptionChipFocus = lipgloss.NewStyle().
		Foreground(p.TextInverse).
		Background(p.AccentAlt).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.AccentAlt).
		Padding(0, 1).
		MarginRight(1)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(p.TextMuted)

	// Composer
	t.Composer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(p.Overlay).
		Padding(0, 1)

	t.ComposerCentered = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(0, 2)

	t.WelcomeTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent).
		Align(lipgloss.Center)

	t.WelcomeHint = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Italic(true).
		Align(lipgloss.Center)

	// Status
	t.Spinner = lipgloss.NewStyle().
		Foreground(p.Accent)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(p.TextSecondary).
		Italic(true)

	t.ErrorBanner = lipgloss.NewStyle().
		Foreground(p.Danger).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(p.Danger).
		PaddingLeft(1)

	t.StatusBar = lipgloss.NewStyle().
		Background(p.SurfaceDim).
		Foreground(p.TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(p.AccentAlt).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(p.TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
