// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package nav holds the client's navigation and appearance state: the active
// conversation, sidebar visibility, layout width class, the chat list refresh
// counter, and the theme.
//
// The store does no I/O. Persistence of the active chat and the theme
// preference is the caller's responsibility (see internal/localstore); this
// keeps every transition synchronous and safe to call from any goroutine.
package nav
