// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"parley/internal/nav"
)

// renderBody renders assistant text, through the markdown renderer when
// enabled. Rendering failures fall back to the raw text; a reply must never
// disappear because it confused the renderer.
func (m *Model) renderBody(content string) string {
	if !m.cfg.UI.Markdown {
		return content
	}

	style := glamour.WithStandardStyle("dark")
	if m.theme.Mode == nav.ThemeLight {
		style = glamour.WithStandardStyle("light")
	}
	width := m.view.Width - 6
	if width < 20 {
		width = 20
	}

	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
