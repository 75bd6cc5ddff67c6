// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth owns the client-side authentication state.
//
// FileCredentialStore persists the bearer token under ~/.docchat/,
// sealed with XChaCha20-Poly1305 under a random key generated on first
// use. Store layers session state on top: it restores identity from a
// persisted token on startup, performs login/signup/logout, and
// notifies listeners when the authenticated identity changes.
//
// The Store is the single writer of authentication state. The API
// client's unauthorized hook feeds back into it so that a rejected
// token observed anywhere in the program results in exactly one local
// logout.
package auth
