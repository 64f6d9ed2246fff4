// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// Messages are immutable once created. Session transcripts are append-only
// while a session is displayed and replaced wholesale when the user switches
// conversations; the chat controller (internal/chat) owns those transitions.
package model
