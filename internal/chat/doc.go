// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the per-conversation request lifecycle: optimistic
// sends, transcript loading, cancellation, and the rules for deciding whether
// a completed request still belongs to the conversation on screen.
//
// Every network operation captures the active conversation id at dispatch
// time. When the response arrives, that captured id is compared against the
// live one; a mismatch means the user moved on, and the result is discarded.
// Loading indicators are keyed by conversation so a send in one chat never
// shows a spinner in another.
//
// The controller owns no UI. It reports state changes through an event sink,
// which the TUI adapts into Bubble Tea messages.
package chat
