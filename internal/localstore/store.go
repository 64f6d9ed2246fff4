// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"parley/internal/util"
)

// =============================================================================
// FILE LAYOUT
// =============================================================================

const (
	stateFile   = "state.json"
	sessionFile = "session.json"
	dirPerm     = 0700
	filePerm    = 0600
)

// DefaultDir returns the default data directory (~/.parley).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".parley"), nil
}

// =============================================================================
// STATE TYPES
// =============================================================================

// UserRecord is the locally cached identity of the signed-in user.
type UserRecord struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// DisplayName returns the best available name for the user.
func (u UserRecord) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.UserID
}

// persistentState is the on-disk shape of state.json.
type persistentState struct {
	User      *UserRecord `json:"user,omitempty"`
	GuestMode bool        `json:"guest_mode"`
	Theme     string      `json:"theme,omitempty"`
}

// sessionState is the on-disk shape of session.json. It is scoped to one
// invocation and reset on startup.
type sessionState struct {
	ActiveChatID string `json:"active_chat_id,omitempty"`
}

// =============================================================================
// STORE
// =============================================================================

// Store provides mutex-guarded access to the local state files.
type Store struct {
	mu    sync.Mutex
	dir   string
	state persistentState
	sess  sessionState
}

// Open loads (or initializes) the store rooted at dir. The per-invocation
// session file is reset so each launch starts without an active chat.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{dir: dir}

	data, err := os.ReadFile(filepath.Join(dir, stateFile))
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(data, &s.state); jsonErr != nil {
			// A corrupt state file should not brick the client. Start
			// from defaults; the next save replaces it.
			s.state = persistentState{}
		}
	case errors.Is(err, os.ErrNotExist):
		// First run.
	default:
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if err := s.saveSessionLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenDefault opens the store at the default data directory.
func OpenDefault() (*Store, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return Open(dir)
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) saveStateLocked() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := util.AtomicWriteFile(filepath.Join(s.dir, stateFile), data, filePerm); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (s *Store) saveSessionLocked() error {
	data, err := json.Marshal(s.sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	if err := util.AtomicWriteFile(filepath.Join(s.dir, sessionFile), data, filePerm); err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}
	return nil
}

// =============================================================================
// USER RECORD
// =============================================================================

// User returns the cached user record, or nil if nobody is signed in.
func (s *Store) User() *UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// SetUser stores the signed-in user record and clears guest mode.
func (s *Store) SetUser(u UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = &u
	s.state.GuestMode = false
	return s.saveStateLocked()
}

// ClearUser removes the cached user record. Used on logout.
func (s *Store) ClearUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = nil
	return s.saveStateLocked()
}

// =============================================================================
// GUEST MODE
// =============================================================================

// GuestMode reports whether the client is running as a guest.
func (s *Store) GuestMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GuestMode
}

// SetGuestMode records the guest mode flag.
func (s *Store) SetGuestMode(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.GuestMode = on
	if on {
		s.state.User = nil
	}
	return s.saveStateLocked()
}

// =============================================================================
// THEME PREFERENCE
// =============================================================================

// Theme returns the persisted theme name, or "" if none has been chosen.
// An empty value means the OS preference should decide.
func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Theme
}

// SetTheme persists the theme preference.
func (s *Store) SetTheme(theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Theme = theme
	return s.saveStateLocked()
}

// =============================================================================
// ACTIVE CHAT (PER-INVOCATION)
// =============================================================================

// ActiveChatID returns the active conversation id for this invocation, or ""
// if none is set.
func (s *Store) ActiveChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.ActiveChatID
}

// SetActiveChatID records the active conversation id for this invocation.
// Guest sessions never call this; their conversations have no id.
func (s *Store) SetActiveChatID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.ActiveChatID = id
	return s.saveSessionLocked()
}

// ClearActiveChatID removes the active conversation id.
func (s *Store) ClearActiveChatID() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.ActiveChatID = ""
	return s.saveSessionLocked()
}
