// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import "github.com/jeranaias/docchat-tui/internal/api"

// AuthenticatedMsg signals that the user signed in and the session is live.
// The app model listens for this to switch to the chat view.
type AuthenticatedMsg struct {
	User *api.User
}

// loginResultMsg reports the outcome of a sign-in attempt.
type loginResultMsg struct {
	Err error
}

// signupResultMsg reports the outcome of a sign-up attempt.
type signupResultMsg struct {
	User *api.User
	Err  error
}

// forgotResultMsg reports the outcome of a password reset request.
type forgotResultMsg struct {
	Message string
	Err     error
}
