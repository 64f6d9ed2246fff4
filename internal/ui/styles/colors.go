// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the parley TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette holds the raw colors for one theme mode. Styles are built from a
// palette so switching themes at runtime is a matter of rebuilding the
// Theme, never of touching individual views.
type Palette struct {
	Accent    lipgloss.Color
	AccentAlt lipgloss.Color

	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color
	TextInverse   lipgloss.Color

	Surface    lipgloss.Color
	SurfaceDim lipgloss.Color
	Overlay    lipgloss.Color

	UserBubbleBg lipgloss.Color
	UserBubbleFg lipgloss.Color

	Danger lipgloss.Color
	Warn   lipgloss.Color
	Good   lipgloss.Color
}

// DarkPalette is the default palette.
func DarkPalette() Palette {
	return Palette{
		Accent:    lipgloss.Color("#7C3AED"),
		AccentAlt: lipgloss.Color("#22D3EE"),

		TextPrimary:   lipgloss.Color("#E5E7EB"),
		TextSecondary: lipgloss.Color("#9CA3AF"),
		TextMuted:     lipgloss.Color("#6B7280"),
		TextInverse:   lipgloss.Color("#111827"),

		Surface:    lipgloss.Color("#1F2937"),
		SurfaceDim: lipgloss.Color("#111827"),
		Overlay:    lipgloss.Color("#374151"),

		UserBubbleBg: lipgloss.Color("#4C1D95"),
		UserBubbleFg: lipgloss.Color("#EDE9FE"),

		Danger: lipgloss.Color("#F43F5E"),
		Warn:   lipgloss.Color("#F59E0B"),
		Good:   lipgloss.Color("#10B981"),
	}
}

// LightPalette mirrors the dark palette for light terminals.
func LightPalette() Palette {
	return Palette{
		Accent:    lipgloss.Color("#6D28D9"),
		AccentAlt: lipgloss.Color("#0E7490"),

		TextPrimary:   lipgloss.Color("#111827"),
		TextSecondary: lipgloss.Color("#4B5563"),
		TextMuted:     lipgloss.Color("#9CA3AF"),
		TextInverse:   lipgloss.Color("#F9FAFB"),

		Surface:    lipgloss.Color("#F3F4F6"),
		SurfaceDim: lipgloss.Color("#E5E7EB"),
		Overlay:    lipgloss.Color("#D1D5DB"),

		UserBubbleBg: lipgloss.Color("#EDE9FE"),
		UserBubbleFg: lipgloss.Color("#4C1D95"),

		Danger: lipgloss.Color("#BE123C"),
		Warn:   lipgloss.Color("#B45309"),
		Good:   lipgloss.Color("#047857"),
	}
}
