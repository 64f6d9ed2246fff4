// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import "sync"

// =============================================================================
// THEME MODE
// =============================================================================

// ThemeMode identifies the active color scheme.
type ThemeMode string

const (
	ThemeDark  ThemeMode = "dark"
	ThemeLight ThemeMode = "light"
)

// ParseThemeMode maps a persisted theme string to a ThemeMode. Unknown or
// empty values fall back to the given default.
func ParseThemeMode(s string, fallback ThemeMode) ThemeMode {
	switch s {
	case string(ThemeDark):
		return ThemeDark
	case string(ThemeLight):
		return ThemeLight
	default:
		return fallback
	}
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a consistent copy of the navigation state at one instant.
type Snapshot struct {
	// ActiveChatID is the id of the open conversation, or "" when the
	// client is on the new-chat screen.
	ActiveChatID string

	// SidebarCollapsed hides the sidebar in the wide layout.
	SidebarCollapsed bool

	// SidebarOverlayOpen shows the sidebar as an overlay in the narrow
	// layout.
	SidebarOverlayOpen bool

	// Narrow reports whether the terminal is below the narrow breakpoint.
	Narrow bool

	// RefreshSeq increments every time the chat list should be reloaded.
	// Consumers compare it against the last value they rendered; they never
	// inspect the number itself.
	RefreshSeq uint64

	Theme ThemeMode
}

// =============================================================================
// STORE
// =============================================================================

// Store is the mutex-guarded navigation state. The zero value is not usable;
// use NewStore.
type Store struct {
	mu       sync.Mutex
	snap     Snapshot
	onChange func(Snapshot)
}

// NewStore creates a navigation store starting from the given theme.
// onChange, if non-nil, is invoked after every transition with the new
// snapshot. It is called with the store's lock released.
func NewStore(theme ThemeMode, onChange func(Snapshot)) *Store {
	return &Store{
		snap:     Snapshot{Theme: theme},
		onChange: onChange,
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *Store) transition(fn func(*Snapshot)) Snapshot {
	s.mu.Lock()
	fn(&s.snap)
	snap := s.snap
	s.mu.Unlock()
	if s.onChange != nil {
		s.onChange(snap)
	}
	return snap
}

// =============================================================================
// ACTIVE CHAT
// =============================================================================

// SetActiveChat selects a conversation. In the narrow layout, picking a chat
// also dismisses the sidebar overlay so the transcript is visible.
func (s *Store) SetActiveChat(id string) Snapshot {
	return s.transition(func(snap *Snapshot) {
		snap.ActiveChatID = id
		if snap.Narrow {
			snap.SidebarOverlayOpen = false
		}
	})
}

// ClearActiveChat returns to the new-chat screen.
func (s *Store) ClearActiveChat() Snapshot {
	return s.transition(func(snap *Snapshot) {
		snap.ActiveChatID = ""
	})
}

// ActiveChatID returns the current active conversation id.
func (s *Store) ActiveChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.ActiveChatID
}

// =============================================================================
// SIDEBAR
// =============================================================================

// ToggleSidebar flips the visibility control appropriate to the current
// layout: the collapse flag when wide, the overlay when narrow.
func (s *Store) ToggleSidebar() Snapshot {
	return s.transition(func(snap *Snapshot) {
		if snap.Narrow {
			snap.SidebarOverlayOpen = !snap.SidebarOverlayOpen
		} else {
			snap.SidebarCollapsed = !snap.SidebarCollapsed
		}
	})
}

// SetSidebarCollapsed sets the wide-layout collapse flag directly.
func (s *Store) SetSidebarCollapsed(collapsed bool) Snapshot {
	return s.transition(func(snap *Snapshot) {
		snap.SidebarCollapsed = collapsed
	})
}

// CloseSidebarOverlay dismisses the narrow-layout overlay.
func (s *Store) CloseSidebarOverlay() Snapshot {
	return s.transition(func(snap *Snapshot) {
		snap.SidebarOverlayOpen = false
	})
}

// =============================================================================
// LAYOUT WIDTH
// =============================================================================

// SetNarrow records which side of the narrow breakpoint the terminal is on.
// Crossing the breakpoint preserves both sidebar flags, so widening and
// narrowing again restores the previous overlay state.
func (s *Store) SetNarrow(narrow bool) Snapshot {
	return s.transition(func(snap *Snapshot) {
		snap.Narrow = narrow
	})
}

// =============================================================================
// CHAT LIST REFRESH
// =============================================================================

// RefreshChatList signals that the chat list is stale and should be
// reloaded. Called after sends that create or update conversations and after
// deletions.
func (s *Store) RefreshChatList() Snapshot {
	return s.transition(func(snap *Snapshot) {
		snap.RefreshSeq++
	})
}

// =============================================================================
// THEME
// =============================================================================

// ToggleTheme switches between dark and light.
func (s *Store) ToggleTheme() Snapshot {
	return s.transition(func(snap *Snapshot) {
		if snap.Theme == ThemeDark {
			snap.Theme = ThemeLight
		} else {
			snap.Theme = ThemeDark
		}
	})
}

// SetTheme sets the theme directly.
func (s *Store) SetTheme(mode ThemeMode) Snapshot {
	return s.transition(func(snap *Snapshot) {
		snap.Theme = mode
	})
}
