// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"parley/internal/model"
)

// =============================================================================
// CHAT LIST CACHE
// =============================================================================

// Cache mirrors the backend chat list into SQLite so the sidebar survives
// backend outages and local search has something to filter.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (or creates) the cache database at path.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS chats (
		user_id    TEXT NOT NULL,
		chat_id    TEXT NOT NULL,
		title      TEXT NOT NULL DEFAULT '',
		preview    TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL DEFAULT 0,
		position   INTEGER NOT NULL,
		PRIMARY KEY (user_id, chat_id)
	);
	CREATE INDEX IF NOT EXISTS idx_chats_user ON chats(user_id, position);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Replace swaps the cached list for userID with metas, preserving the
// backend's ordering.
func (c *Cache) Replace(userID string, metas []model.SessionMeta) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin cache transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM chats WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO chats (user_id, chat_id, title, preview, updated_at, position) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare cache insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range metas {
		if _, err := stmt.Exec(userID, m.ID, m.Title, m.Preview, m.UpdatedAt.UnixMilli(), i); err != nil {
			return fmt.Errorf("failed to cache chat %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

// List returns the cached chat list for userID in backend order.
func (c *Cache) List(userID string) ([]model.SessionMeta, error) {
	rows, err := c.db.Query(`SELECT chat_id, title, preview, updated_at FROM chats WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}
	defer rows.Close()

	var metas []model.SessionMeta
	for rows.Next() {
		var m model.SessionMeta
		var updated int64
		if err := rows.Scan(&m.ID, &m.Title, &m.Preview, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan cached chat: %w", err)
		}
		if updated > 0 {
			m.UpdatedAt = time.UnixMilli(updated)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Delete removes one chat from the cached list.
func (c *Cache) Delete(userID, chatID string) error {
	_, err := c.db.Exec(`DELETE FROM chats WHERE user_id = ? AND chat_id = ?`, userID, chatID)
	return err
}
