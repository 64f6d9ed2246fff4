// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history loads and searches the sidebar chat list.
//
// The backend is the source of truth. Every successful listing is mirrored
// into a local SQLite cache, which serves two purposes: the sidebar still
// renders when the backend is unreachable, and type-ahead search can filter
// instantly against cached titles while the backend query runs behind a rate
// limiter.
package history
