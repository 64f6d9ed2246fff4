// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package localstore

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"parley/internal/util"
)

// =============================================================================
// TOKEN STORAGE
// =============================================================================

// The auth token is encrypted at rest with XChaCha20-Poly1305. The key lives
// in a separate 0600 key file in the same directory; this protects the token
// from casual disclosure (backups, file sync) without requiring a password.

const (
	tokenFile = "token.enc"
	keyFile   = "store.key"

	// encPrefix marks an encrypted value (format: ENC:base64(nonce|ciphertext|tag)).
	encPrefix = "ENC:"
)

var (
	// ErrNoToken indicates no auth token has been stored.
	ErrNoToken = errors.New("no auth token stored")
	// ErrTokenCorrupt indicates the stored token failed authentication.
	ErrTokenCorrupt = errors.New("stored auth token is corrupt")
)

// loadOrCreateKey returns the machine-local encryption key, generating and
// persisting one on first use.
func (s *Store) loadOrCreateKey() ([]byte, error) {
	path := filepath.Join(s.dir, keyFile)

	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("key file has wrong size: %d", len(data))
		}
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	if err := util.AtomicWriteFile(path, key, filePerm); err != nil {
		return nil, fmt.Errorf("failed to save key file: %w", err)
	}
	return key, nil
}

// SaveToken encrypts and stores the auth token.
func (s *Store) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.loadOrCreateKey()
	if err != nil {
		return err
	}
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("failed to initialize cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(token), nil)
	out := encPrefix + base64.StdEncoding.EncodeToString(sealed)
	if err := util.AtomicWriteFile(filepath.Join(s.dir, tokenFile), []byte(out), filePerm); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadToken decrypts and returns the stored auth token.
func (s *Store) LoadToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	content := string(data)
	if !strings.HasPrefix(content, encPrefix) {
		return "", ErrTokenCorrupt
	}
	sealed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(content, encPrefix))
	if err != nil {
		return "", ErrTokenCorrupt
	}

	key, err := s.loadOrCreateKey()
	if err != nil {
		return "", err
	}
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("failed to initialize cipher: %w", err)
	}
	if len(sealed) < aead.NonceSize() {
		return "", ErrTokenCorrupt
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrTokenCorrupt
	}
	return string(plaintext), nil
}

// DeleteToken removes the stored auth token. Missing tokens are not an error.
func (s *Store) DeleteToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(filepath.Join(s.dir, tokenFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// zeroBytes zeros key material to limit disclosure via crash dumps.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
