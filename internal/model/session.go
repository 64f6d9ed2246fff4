// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// CHAT SESSION
// =============================================================================

// ChatSession holds a conversation transcript together with its metadata.
// The ID is backend-assigned; a brand-new conversation has no ChatSession
// until its first successful exchange creates one.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetTitle returns the session title or a default.
func (s *ChatSession) GetTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return "New Chat"
}

// LastMessage returns the most recent message, or a zero Message if empty.
func (s *ChatSession) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// SessionFromMessages builds a ChatSession from a loaded transcript.
// CreatedAt/UpdatedAt derive from the first and last message timestamps,
// falling back to now for an empty conversation.
func SessionFromMessages(id, title string, messages []Message) *ChatSession {
	createdAt := time.Now()
	updatedAt := createdAt
	if len(messages) > 0 {
		createdAt = messages[0].Timestamp
		updatedAt = messages[len(messages)-1].Timestamp
	}
	return &ChatSession{
		ID:        id,
		Title:     title,
		Messages:  messages,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// =============================================================================
// SESSION METADATA
// =============================================================================

// SessionMeta holds lightweight conversation metadata for the history panel.
type SessionMeta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetTitle returns the listing title or a default.
func (m SessionMeta) GetTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return "New Chat"
}
