// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"parley/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// MessageType distinguishes plain text messages from ones carrying files.
type MessageType string

const (
	MessageText MessageType = "text"
	MessageFile MessageType = "file"
)

// Message represents a single message in a conversation. A message is
// immutable once created.
type Message struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Type      MessageType `json:"type"`

	// Attachments sent with a user message.
	Attachments []FileAttachment `json:"attachments,omitempty"`

	// Attachment returned with an assistant reply.
	Attachment *FileAttachment `json:"attachment,omitempty"`
}

// NewUserMessage creates a user message with an optimistic client ID.
// The ID scheme is "user-<unix-ms>"; it is local to this client and is not
// expected to match any backend-assigned identifier.
func NewUserMessage(content string, attachments []FileAttachment) Message {
	now := time.Now()
	typ := MessageText
	if len(attachments) > 0 {
		typ = MessageFile
	}
	return Message{
		ID:          "user-" + strconv.FormatInt(now.UnixMilli(), 10),
		Role:        RoleUser,
		Content:     content,
		Timestamp:   now,
		Type:        typ,
		Attachments: attachments,
	}
}

// NewAssistantMessage creates an assistant message with an optimistic client
// ID of the form "ai-<unix-ms>".
func NewAssistantMessage(content string) Message {
	now := time.Now()
	return Message{
		ID:        "ai-" + strconv.FormatInt(now.UnixMilli(), 10),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: now,
		Type:      MessageText,
	}
}

// Preview returns a truncated single-line preview of the message content.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.CollapseSpace(m.Content), maxLen)
}

// IsEmpty returns true if the message carries neither text nor attachments.
func (m Message) IsEmpty() bool {
	return m.Content == "" && len(m.Attachments) == 0
}

// =============================================================================
// FILE ATTACHMENT
// =============================================================================

// FileAttachment describes a file sent alongside a message.
type FileAttachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	MIME string `json:"mime_type,omitempty"`
	URL  string `json:"url,omitempty"`
}

// NewFileAttachment creates an attachment record with a generated ID.
func NewFileAttachment(name string, size int64, mime string) FileAttachment {
	return FileAttachment{
		ID:   uuid.NewString(),
		Name: name,
		Size: size,
		MIME: mime,
	}
}
