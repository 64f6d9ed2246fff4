// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import (
	"sync"
	"testing"
)

func TestParseThemeMode(t *testing.T) {
	tests := []struct {
		in       string
		fallback ThemeMode
		want     ThemeMode
	}{
		{"dark", ThemeLight, ThemeDark},
		{"light", ThemeDark, ThemeLight},
		{"", ThemeDark, ThemeDark},
		{"solarized", ThemeLight, ThemeLight},
	}
	for _, tt := range tests {
		if got := ParseThemeMode(tt.in, tt.fallback); got != tt.want {
			t.Errorf("ParseThemeMode(%q, %q) = %q, want %q", tt.in, tt.fallback, got, tt.want)
		}
	}
}

func TestSetActiveChatClosesOverlayWhenNarrow(t *testing.T) {
	s := NewStore(ThemeDark, nil)
	s.SetNarrow(true)
	s.ToggleSidebar()
	if !s.Snapshot().SidebarOverlayOpen {
		t.Fatal("overlay should be open")
	}

	snap := s.SetActiveChat("c1")
	if snap.ActiveChatID != "c1" {
		t.Errorf("ActiveChatID = %q", snap.ActiveChatID)
	}
	if snap.SidebarOverlayOpen {
		t.Error("selecting a chat in narrow layout should dismiss the overlay")
	}
}

func TestSetActiveChatKeepsSidebarWhenWide(t *testing.T) {
	s := NewStore(ThemeDark, nil)
	s.ToggleSidebar()
	snap := s.SetActiveChat("c1")
	if !snap.SidebarCollapsed {
		t.Error("wide-layout collapse flag should be untouched by selection")
	}
}

func TestToggleSidebarRespectsLayout(t *testing.T) {
	s := NewStore(ThemeDark, nil)

	// Wide: toggles the collapse flag only.
	snap := s.ToggleSidebar()
	if !snap.SidebarCollapsed || snap.SidebarOverlayOpen {
		t.Errorf("wide toggle: collapsed=%v overlay=%v", snap.SidebarCollapsed, snap.SidebarOverlayOpen)
	}

	// Narrow: toggles the overlay only.
	s.SetNarrow(true)
	snap = s.ToggleSidebar()
	if !snap.SidebarOverlayOpen || !snap.SidebarCollapsed {
		t.Errorf("narrow toggle: collapsed=%v overlay=%v", snap.SidebarCollapsed, snap.SidebarOverlayOpen)
	}
}

func TestNarrowCrossingPreservesFlags(t *testing.T) {
	s := NewStore(ThemeDark, nil)
	s.SetNarrow(true)
	s.ToggleSidebar() // overlay open
	s.SetNarrow(false)
	s.SetSidebarCollapsed(true)
	snap := s.SetNarrow(true)

	if !snap.SidebarOverlayOpen {
		t.Error("overlay flag should survive a round trip across the breakpoint")
	}
	if !snap.SidebarCollapsed {
		t.Error("collapse flag should survive a round trip across the breakpoint")
	}
}

func TestRefreshSeqIncrements(t *testing.T) {
	s := NewStore(ThemeDark, nil)
	first := s.Snapshot().RefreshSeq
	s.RefreshChatList()
	s.RefreshChatList()
	if got := s.Snapshot().RefreshSeq; got != first+2 {
		t.Errorf("RefreshSeq = %d, want %d", got, first+2)
	}
}

func TestToggleTheme(t *testing.T) {
	s := NewStore(ThemeDark, nil)
	if snap := s.ToggleTheme(); snap.Theme != ThemeLight {
		t.Errorf("first toggle = %q", snap.Theme)
	}
	if snap := s.ToggleTheme(); snap.Theme != ThemeDark {
		t.Errorf("second toggle = %q", snap.Theme)
	}
}

func TestOnChangeObservesEveryTransition(t *testing.T) {
	var mu sync.Mutex
	var seen []Snapshot
	s := NewStore(ThemeDark, func(snap Snapshot) {
		mu.Lock()
		seen = append(seen, snap)
		mu.Unlock()
	})

	s.SetActiveChat("c1")
	s.RefreshChatList()
	s.ClearActiveChat()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 {
		t.Fatalf("observed %d transitions, want 3", len(seen))
	}
	if seen[0].ActiveChatID != "c1" || seen[2].ActiveChatID != "" {
		t.Errorf("snapshots = %+v", seen)
	}
}

func TestConcurrentTransitions(t *testing.T) {
	s := NewStore(ThemeDark, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RefreshChatList()
		}()
	}
	wg.Wait()
	if got := s.Snapshot().RefreshSeq; got != 50 {
		t.Errorf("RefreshSeq = %d, want 50", got)
	}
}
