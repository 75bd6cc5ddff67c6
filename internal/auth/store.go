// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotAuthenticated indicates an operation requires a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// =============================================================================
// CREDENTIAL STORE INTERFACE
// =============================================================================

// CredentialStore is the persistence surface the Store writes through.
// FileCredentialStore is the production implementation.
type CredentialStore interface {
	api.CredentialSource
	Save(token string) error
}

// =============================================================================
// AUTH STORE
// =============================================================================

// Store tracks the authenticated identity for the lifetime of the
// process. State changes flow through exactly three paths: Initialize
// (startup restore), Login/Signup (explicit sign-in), and Logout
// (explicit or forced by a rejected token).
type Store struct {
	mu     sync.RWMutex
	client *api.Client
	creds  CredentialStore

	identity      *api.User
	authenticated bool
	loading       bool

	initOnce sync.Once
	onChange []func()
}

// NewStore creates an auth store. The store registers itself as the
// client's unauthorized handler so a 401 anywhere forces a local logout.
func NewStore(client *api.Client, creds CredentialStore) *Store {
	s := &Store{
		client:  client,
		creds:   creds,
		loading: true,
	}
	client.OnUnauthorized(s.forceLogout)
	return s
}

// OnChange registers a callback fired after every identity change,
// including the startup transition out of the loading state. Callbacks
// run outside the store lock.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// Initialize restores the session from a persisted token. It runs at
// most once; later calls return immediately. The loading flag flips
// from true to false exactly once, after the restore attempt settles.
func (s *Store) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		defer s.settle()

		if _, ok := s.creds.Token(); !ok {
			return
		}

		user, err := s.client.Me(ctx)
		if err != nil {
			// Stale or rejected token. The client has already cleared
			// the credential on 401; clear locally for other failures.
			util.DebugLog("auth: session restore failed: %v", err)
			if !errors.Is(err, api.ErrUnauthorized) {
				_ = s.creds.Clear()
			}
			return
		}

		s.mu.Lock()
		s.identity = user
		s.authenticated = true
		s.mu.Unlock()
	})
}

// settle ends the loading phase and notifies listeners.
func (s *Store) settle() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.notify()
}

// Login signs in with an email and password. On success the token is
// persisted and the identity populated, from the login response when
// the server embeds it, otherwise via a follow-up profile fetch. On
// failure the store is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return errors.New("login response missing access token")
	}

	if err := s.creds.Save(resp.AccessToken); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}

	user := resp.User
	if user == nil {
		user, err = s.client.Me(ctx)
		if err != nil {
			_ = s.creds.Clear()
			return fmt.Errorf("failed to load profile after login: %w", err)
		}
	}

	s.mu.Lock()
	s.identity = user
	s.authenticated = true
	s.mu.Unlock()
	s.notify()
	return nil
}

// Signup registers a new account. It does not sign the user in; the
// caller follows up with Login.
func (s *Store) Signup(ctx context.Context, req api.SignupRequest) (*api.User, error) {
	return s.client.Signup(ctx, req)
}

// Logout clears the persisted credential and the in-memory identity.
// It is purely local; no server call is made.
func (s *Store) Logout() {
	_ = s.creds.Clear()
	s.clearIdentity()
}

// forceLogout is invoked by the API client after it observes a 401 and
// clears the credential. Only the in-memory state remains to reset.
func (s *Store) forceLogout() {
	util.DebugLog("auth: server rejected token, signing out")
	s.clearIdentity()
}

func (s *Store) clearIdentity() {
	s.mu.Lock()
	changed := s.authenticated || s.identity != nil
	s.identity = nil
	s.authenticated = false
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	callbacks := make([]func(), len(s.onChange))
	copy(callbacks, s.onChange)
	s.mu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Client returns the API client the store authenticates with.
func (s *Store) Client() *api.Client {
	return s.client
}

// Identity returns the signed-in user, or nil.
func (s *Store) Identity() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// IsLoading reports whether the startup session restore is still in
// flight. It starts true and becomes false permanently once Initialize
// settles.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}
