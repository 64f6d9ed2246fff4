// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the parley chat backend.
//
// All durable state (accounts, sessions, messages) lives behind this API;
// the client is a thin, context-aware wrapper with a typed error model so
// callers can distinguish cancellation, connectivity problems, and malformed
// payloads without string matching.
//
// Requests carry no client-side timeout: a send may legitimately take as
// long as the assistant needs, and cancellation is driven entirely by the
// caller's context (chat switches, new-chat resets, shutdown).
package api
