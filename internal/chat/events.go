// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// =============================================================================
// CONTROLLER EVENTS
// =============================================================================

// EventKind identifies what part of the controller state changed.
type EventKind int

const (
	// EventMessages: the transcript changed (optimistic append, assistant
	// reply, or a loaded session replacing the view).
	EventMessages EventKind = iota
	// EventLoading: the loading flag for ChatKey changed.
	EventLoading
	// EventSession: the session record (id, title, timestamps) changed.
	EventSession
	// EventOptions: the suggested replies changed.
	EventOptions
	// EventError: a request failed and the error banner should update.
	EventError
	// EventReset: the controller returned to the new-chat screen.
	EventReset
)

// Event is one state-change notification from the controller. The sink is
// called outside the controller's lock, so handlers may call back into it.
type Event struct {
	Kind    EventKind
	ChatKey string // set for EventLoading
}
