// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file defines the Bubble Tea message types used by the chat view:
//   - Upload: document upload results
//   - Chat: question/answer round trips
//   - Session: reset results
//   - UI state: toast expiry ticks and sign-out requests
package chat

import (
	"time"

	"github.com/jeranaias/docchat-tui/internal/api"
)

// =============================================================================
// UPLOAD MESSAGES
// =============================================================================

// uploadResultMsg reports the outcome of a document upload.
type uploadResultMsg struct {
	Filename string
	Resp     *api.UploadResponse
	Err      error
}

// =============================================================================
// CHAT MESSAGES
// =============================================================================

// chatResultMsg reports the outcome of a chat round trip.
type chatResultMsg struct {
	Resp *api.ChatResponse
	Err  error
}

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// resetResultMsg reports the outcome of a session reset.
type resetResultMsg struct {
	Err error
}

// =============================================================================
// UI STATE MESSAGES
// =============================================================================

// toastTickMsg drives toast expiry while any toast is visible.
type toastTickMsg time.Time

// SignOutMsg asks the app model to sign the user out and return to the
// login view.
type SignOutMsg struct{}
