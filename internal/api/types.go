// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"strconv"
	"time"

	"parley/internal/model"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatListEntry is one conversation in the GET /chats/get_chats response.
// The backend is inconsistent about field names, so both id/session_id and
// updated_at/created_at pairs are accepted.
type ChatListEntry struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Preview   string `json:"preview"`
	UpdatedAt string `json:"updated_at"`
	CreatedAt string `json:"created_at"`
}

// Meta normalizes a list entry into a model.SessionMeta.
func (e ChatListEntry) Meta() model.SessionMeta {
	id := e.ID
	if id == "" {
		id = e.SessionID
	}
	ts := e.UpdatedAt
	if ts == "" {
		ts = e.CreatedAt
	}
	return model.SessionMeta{
		ID:        id,
		Title:     e.Title,
		Preview:   e.Preview,
		UpdatedAt: parseTimestamp(ts),
	}
}

// ChatMessage is one message record in the GET /chats/get_chat response.
type ChatMessage struct {
	ID         string                `json:"id"`
	SessionID  string                `json:"session_id"`
	Role       string                `json:"role"`
	Content    string                `json:"content"`
	CreatedAt  string                `json:"created_at"`
	Attachment *model.FileAttachment `json:"attachment,omitempty"`
}

// searchResponse wraps GET /chats/search_chats results.
type searchResponse struct {
	Success bool            `json:"success"`
	Results []ChatListEntry `json:"results"`
}

// createChatRequest is the POST /chats/create_chat body.
type createChatRequest struct {
	UserID string `json:"user_id"`
}

// createChatResponse carries the freshly minted session id.
type createChatResponse struct {
	ID string `json:"id"`
}

// sendRequest is the POST /chats/chat body. SessionID is a pointer so guest
// sends serialize as an explicit null rather than being omitted.
type sendRequest struct {
	UserID    string  `json:"user_id"`
	Message   string  `json:"message"`
	SessionID *string `json:"session_id"`
}

// SendResult is the reply payload of POST /chats/chat.
type SendResult struct {
	Reply      string                `json:"reply"`
	SessionID  string                `json:"session_id,omitempty"`
	Options    []string              `json:"options,omitempty"`
	Attachment *model.FileAttachment `json:"attachment,omitempty"`
}

// UserInfo is the profile record behind GET /chats/userinfo.
type UserInfo struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// userInfoResponse wraps the userinfo payload.
type userInfoResponse struct {
	Success bool     `json:"success"`
	Data    UserInfo `json:"data"`
}

// loginRequest is the POST /auth/login body.
type loginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// LoginResult carries the outcome of a login attempt.
type LoginResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// RegisterRequest is the POST /auth/register body.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// RegisterResult carries the outcome of a registration attempt.
type RegisterResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// =============================================================================
// TIMESTAMP PARSING
// =============================================================================

// timestampLayouts are the formats the backend has been observed to emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp parses a backend timestamp, returning the zero time when
// the value is empty or unrecognized. Callers treat a zero time as "unknown"
// and substitute now where a timestamp is required.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ToMessage converts a wire message into the model representation.
func (m ChatMessage) ToMessage(index int) model.Message {
	id := m.ID
	if id == "" {
		id = m.SessionID + "-" + strconv.Itoa(index)
	}
	role := model.RoleUser
	if m.Role == "assistant" {
		role = model.RoleAssistant
	}
	ts := parseTimestamp(m.CreatedAt)
	if ts.IsZero() {
		ts = time.Now()
	}
	msg := model.Message{
		ID:        id,
		Role:      role,
		Content:   m.Content,
		Timestamp: ts,
		Type:      model.MessageText,
	}
	if m.Attachment != nil {
		msg.Attachment = m.Attachment
		msg.Type = model.MessageFile
	}
	return msg
}
