// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// LIVE RELOAD
// =============================================================================

// watchDebounce coalesces the write/rename bursts editors produce into one
// reload.
const watchDebounce = 250 * time.Millisecond

// Watch reloads the config whenever the file at path changes and passes the
// result to onReload. Invalid intermediate states (mid-save) are skipped.
// Watch blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file itself, because
// atomic saves replace the file and break a direct watch.
func Watch(ctx context.Context, path string, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			cfg, err := Load(path)
			if err != nil {
				continue
			}
			Set(cfg)
			onReload(cfg)

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}
