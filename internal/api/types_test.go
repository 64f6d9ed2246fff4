// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"parley/internal/model"
)

// =============================================================================
// TIMESTAMP TESTS
// =============================================================================

func TestParseTimestamp_Layouts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339 nano", "2025-03-14T09:26:53.589793Z", time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC)},
		{"rfc3339", "2025-03-14T09:26:53Z", time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)},
		{"no zone", "2025-03-14T09:26:53", time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)},
		{"space separated", "2025-03-14 09:26:53", time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(tt.input)
			require.True(t, got.Equal(tt.want), "parsed %v, want %v", got, tt.want)
		})
	}
}

func TestParseTimestamp_BadInput(t *testing.T) {
	require.True(t, parseTimestamp("").IsZero())
	require.True(t, parseTimestamp("yesterday").IsZero())
	require.True(t, parseTimestamp("14/03/2025").IsZero())
}

// =============================================================================
// NORMALIZATION TESTS
// =============================================================================

func TestChatListEntry_MetaFallbacks(t *testing.T) {
	// session_id and created_at stand in when id and updated_at are absent.
	entry := ChatListEntry{
		SessionID: "sess-42",
		Title:     "Build a kite",
		Preview:   "First pick the fabric",
		CreatedAt: "2025-03-14T09:26:53Z",
	}
	meta := entry.Meta()
	require.Equal(t, "sess-42", meta.ID)
	require.Equal(t, "Build a kite", meta.Title)
	require.Equal(t, "First pick the fabric", meta.Preview)
	require.Equal(t, 2025, meta.UpdatedAt.Year())

	// When both pairs are present the primary field wins.
	entry.ID = "chat-7"
	entry.UpdatedAt = "2026-01-01T00:00:00Z"
	meta = entry.Meta()
	require.Equal(t, "chat-7", meta.ID)
	require.Equal(t, 2026, meta.UpdatedAt.Year())
}

func TestChatMessage_ToMessage(t *testing.T) {
	wire := ChatMessage{
		ID:        "m-1",
		Role:      "assistant",
		Content:   "hello",
		CreatedAt: "2025-03-14T09:26:53Z",
	}
	msg := wire.ToMessage(0)
	require.Equal(t, "m-1", msg.ID)
	require.Equal(t, model.RoleAssistant, msg.Role)
	require.Equal(t, "hello", msg.Content)
	require.Equal(t, model.MessageText, msg.Type)
	require.False(t, msg.Timestamp.IsZero())
}

func TestChatMessage_ToMessage_MissingID(t *testing.T) {
	wire := ChatMessage{SessionID: "sess-42", Role: "user", Content: "hi"}
	msg := wire.ToMessage(3)
	require.Equal(t, "sess-42-3", msg.ID)
	require.Equal(t, model.RoleUser, msg.Role)
}

func TestChatMessage_ToMessage_UnknownRoleIsUser(t *testing.T) {
	wire := ChatMessage{ID: "m-2", Role: "system", Content: "note"}
	require.Equal(t, model.RoleUser, wire.ToMessage(0).Role)
}

func TestChatMessage_ToMessage_ZeroTimeSubstituted(t *testing.T) {
	before := time.Now()
	msg := ChatMessage{ID: "m-3", Role: "user", Content: "hi"}.ToMessage(0)
	require.False(t, msg.Timestamp.Before(before))
}

func TestChatMessage_ToMessage_Attachment(t *testing.T) {
	att := &model.FileAttachment{Name: "report.pdf", URL: "https://files/report.pdf"}
	wire := ChatMessage{ID: "m-4", Role: "assistant", Content: "here you go", Attachment: att}
	msg := wire.ToMessage(0)
	require.Equal(t, model.MessageFile, msg.Type)
	require.NotNil(t, msg.Attachment)
	require.Equal(t, "report.pdf", msg.Attachment.Name)
}
