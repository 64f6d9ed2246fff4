// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the parley client:
// rune- and width-aware string truncation and atomic file writes.
package util
