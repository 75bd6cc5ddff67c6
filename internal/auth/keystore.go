// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeranaias/docchat-tui/internal/util"
	"golang.org/x/crypto/chacha20poly1305"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// SealedPrefix marks a stored token as sealed (format: SEALED:base64(nonce|ciphertext|tag)).
const SealedPrefix = "SEALED:"

// KeySize is the size of the XChaCha20-Poly1305 key (32 bytes / 256 bits).
const KeySize = chacha20poly1305.KeySize

const (
	keyFileName   = "token.key"
	tokenFileName = "token"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoCredential indicates no token is stored.
	ErrNoCredential = errors.New("no stored credential")
	// ErrSealedFormat indicates the stored token file is malformed.
	ErrSealedFormat = errors.New("invalid sealed token format")
	// ErrUnsealFailed indicates the token could not be decrypted (wrong key or tampered file).
	ErrUnsealFailed = errors.New("token unseal failed: authentication tag mismatch")
)

// zeroBytes zeros sensitive byte slices.
// SECURITY: Zero key material to prevent memory disclosure via crash dumps.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// =============================================================================
// FILE CREDENTIAL STORE
// =============================================================================

// FileCredentialStore persists a single bearer token on disk, sealed
// with XChaCha20-Poly1305 under a random per-install key.
//
// It implements api.CredentialSource.
type FileCredentialStore struct {
	mu        sync.RWMutex
	dir       string
	keyPath   string
	tokenPath string

	// token caches the unsealed value after the first successful load.
	token  string
	loaded bool
}

// DefaultCredentialDir returns the directory credentials live in (~/.docchat).
func DefaultCredentialDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".docchat"), nil
}

// NewFileCredentialStore creates a credential store rooted at dir.
// Pass "" to use DefaultCredentialDir.
func NewFileCredentialStore(dir string) (*FileCredentialStore, error) {
	if dir == "" {
		d, err := DefaultCredentialDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return &FileCredentialStore{
		dir:       dir,
		keyPath:   filepath.Join(dir, keyFileName),
		tokenPath: filepath.Join(dir, tokenFileName),
	}, nil
}

// Token returns the stored bearer token. The second return is false
// when no credential is stored or the stored file cannot be unsealed.
func (s *FileCredentialStore) Token() (string, bool) {
	s.mu.RLock()
	if s.loaded {
		tok := s.token
		s.mu.RUnlock()
		return tok, tok != ""
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.token, s.token != ""
	}

	tok, err := s.load()
	if err != nil {
		if !errors.Is(err, ErrNoCredential) {
			util.DebugLog("auth: token load failed: %v", err)
		}
		s.token = ""
		s.loaded = true
		return "", false
	}
	s.token = tok
	s.loaded = true
	return tok, tok != ""
}

// Save seals and persists the token, replacing any previous credential.
func (s *FileCredentialStore) Save(token string) error {
	if token == "" {
		return errors.New("refusing to store empty token")
	}

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
	out := []byte(SealedPrefix + base64.StdEncoding.EncodeToString(sealed))

	if err := util.AtomicWriteFileWithDir(s.tokenPath, out, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}

	s.token = token
	s.loaded = true
	return nil
}

// Clear removes the persisted credential. Removing an already-absent
// credential is not an error.
func (s *FileCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.loaded = true

	if err := os.Remove(s.tokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// load reads and unseals the token file. Caller holds the write lock.
func (s *FileCredentialStore) load() (string, error) {
	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCredential
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	content := string(data)
	if !strings.HasPrefix(content, SealedPrefix) {
		return "", ErrSealedFormat
	}
	sealed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(content, SealedPrefix))
	if err != nil {
		return "", ErrSealedFormat
	}

	key, err := s.loadKey()
	if err != nil {
		return "", err
	}
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("failed to initialize cipher: %w", err)
	}
	if len(sealed) < aead.NonceSize() {
		return "", ErrSealedFormat
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrUnsealFailed
	}
	return string(plaintext), nil
}

// loadKey reads the sealing key from disk.
func (s *FileCredentialStore) loadKey() ([]byte, error) {
	encoded, err := os.ReadFile(s.keyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCredential
		}
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(encoded)))
	if err != nil || len(key) != KeySize {
		return nil, fmt.Errorf("corrupt key file at %s", s.keyPath)
	}
	return key, nil
}

// loadOrCreateKey returns the sealing key, generating and persisting a
// fresh one on first use.
func (s *FileCredentialStore) loadOrCreateKey() ([]byte, error) {
	key, err := s.loadKey()
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, ErrNoCredential) {
		return nil, err
	}

	key = make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	encoded := []byte(base64.StdEncoding.EncodeToString(key))
	// RELIABILITY: Atomic write with fsync prevents a half-written key file.
	if err := util.AtomicWriteFileWithDir(s.keyPath, encoded, 0600, 0700); err != nil {
		zeroBytes(key)
		return nil, fmt.Errorf("failed to store key: %w", err)
	}
	return key, nil
}
