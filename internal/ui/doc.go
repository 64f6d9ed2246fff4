// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the Bubble Tea interface: header, sidebar with the
// chat list, transcript viewport, and the message composer.
//
// The ui layer holds no conversation logic. It renders controller state and
// translates key presses into controller calls; controller events arrive as
// Bubble Tea messages through a channel command.
package ui
