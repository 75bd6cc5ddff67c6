// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the docchat REST API.
//
// The client attaches the persisted bearer credential to every request,
// retries transient server errors with exponential backoff, and owns the
// single reactive credential-clearing path: the first unauthorized
// response observed by a call clears the stored credential and notifies
// the registered callback so the UI can fall back to the login view. No
// other component may clear the credential as a side effect of a
// response; direct logout goes through the auth store.
package api
