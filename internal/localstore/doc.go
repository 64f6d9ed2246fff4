// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package localstore persists client-side state under ~/.parley.
//
// Three kinds of state live here, with different lifetimes:
//
//   - state.json: the signed-in user record, guest mode flag, and theme
//     preference. Survives restarts.
//   - session.json: the active conversation id for the current invocation.
//     Reset every time the program starts, so a fresh launch always begins
//     on the new-chat screen.
//   - token.enc: the auth token, encrypted at rest with XChaCha20-Poly1305
//     under a machine-local key file.
//
// All writes are atomic (temp file, fsync, rename) with 0600 permissions.
package localstore
