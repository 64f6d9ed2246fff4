// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and persists client configuration from
// ~/.parley/config.toml, with environment variable overrides.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml"

	"parley/internal/util"
)

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	UI      UIConfig      `toml:"ui"`
	History HistoryConfig `toml:"history"`
}

// ServerConfig locates the chat backend.
type ServerConfig struct {
	// URL is the backend base URL.
	URL string `toml:"url"`
}

// UIConfig controls appearance and layout.
type UIConfig struct {
	// Theme forces "dark" or "light". Empty defers to the persisted user
	// preference, then the OS.
	Theme string `toml:"theme"`

	// NarrowBreakpoint is the terminal width (columns) below which the
	// sidebar becomes an overlay.
	NarrowBreakpoint int `toml:"narrow_breakpoint"`

	// Markdown renders assistant replies through the markdown renderer.
	Markdown bool `toml:"markdown"`
}

// HistoryConfig controls the local chat list cache.
type HistoryConfig struct {
	// Cache mirrors the chat list into SQLite for offline use.
	Cache bool `toml:"cache"`
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL: "http://127.0.0.1:8000",
		},
		UI: UIConfig{
			Theme:            "",
			NarrowBreakpoint: 80,
			Markdown:         true,
		},
		History: HistoryConfig{
			Cache: true,
		},
	}
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	def := DefaultConfig()
	if c.Server.URL == "" {
		c.Server.URL = def.Server.URL
	}
	if c.UI.NarrowBreakpoint == 0 {
		c.UI.NarrowBreakpoint = def.UI.NarrowBreakpoint
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url must not be empty")
	}
	if c.UI.NarrowBreakpoint < 20 {
		return fmt.Errorf("ui.narrow_breakpoint %d is too small (minimum 20)", c.UI.NarrowBreakpoint)
	}
	switch c.UI.Theme {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.theme %q is not one of \"\", \"dark\", \"light\"", c.UI.Theme)
	}
	return nil
}

// =============================================================================
// LOADING
// =============================================================================

// Path returns the config file path (~/.parley/config.toml).
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".parley", "config.toml"), nil
}

// Load reads the config file at path, applies defaults and environment
// overrides, and validates. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if _, tomlErr := toml.Decode(string(data), cfg); tomlErr != nil {
			return nil, fmt.Errorf("failed to parse config: %w", tomlErr)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.SetDefaults()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies PARLEY_* environment variables on top of the
// file. Environment always wins.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PARLEY_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("PARLEY_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("PARLEY_NARROW_BREAKPOINT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.UI.NarrowBreakpoint = n
		}
	}
	if v := os.Getenv("PARLEY_MARKDOWN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UI.Markdown = b
		}
	}
}

// Save writes the config to path atomically with 0600 permissions.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	global     *Config
	globalOnce sync.Once
	globalMu   sync.RWMutex
)

// Get returns the global config, loading it on first use. Load failures
// fall back to defaults; callers that need the error should use Load.
func Get() *Config {
	globalOnce.Do(func() {
		path, err := Path()
		if err != nil {
			global = DefaultConfig()
			return
		}
		cfg, err := Load(path)
		if err != nil {
			cfg = DefaultConfig()
		}
		global = cfg
	})
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// Set replaces the global config. Used after a live reload.
func Set(cfg *Config) {
	Get() // ensure the Once has fired so Set is not overwritten later
	globalMu.Lock()
	global = cfg
	globalMu.Unlock()
}
