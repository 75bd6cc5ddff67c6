// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the authentication view for the TUI.
//
// The view cycles between three forms: sign in, sign up, and forgot
// password. On successful authentication it emits AuthenticatedMsg so
// the app model can route to the chat view.
package login
