// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "encoding/json"

// =============================================================================
// AUTH TYPES
// =============================================================================

// User is the service's account record, fetched via /api/auth/me or
// embedded in a login response.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsSuperuser bool   `json:"is_superuser"`
}

// DisplayName returns a human-readable name, falling back to the email.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the login response. User is optional; when the backend
// omits it the caller follows up with Me using the fresh token.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// SignupRequest is the body for POST /api/auth/signup.
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ResetPasswordRequest is the body for POST /api/auth/reset-password.
// The token arrives out of band (reset email).
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Acknowledgement is the generic {status/message} reply used by the
// password endpoints.
type Acknowledgement struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// =============================================================================
// DOCUMENT / CHAT TYPES
// =============================================================================

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	SessionID  string `json:"session_id"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	UploadedAt string `json:"uploaded_at"`
}

// ChatRequest is the body for POST /api/chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is returned by POST /api/chat. Logs is optional: nil means
// the exchange produced no diagnostic output and the reserved log slot
// stays unfilled.
type ChatResponse struct {
	Response  string  `json:"response"`
	SessionID string  `json:"session_id"`
	Logs      *string `json:"logs,omitempty"`
}

// HasLogs reports whether the response carries non-empty log content.
func (r *ChatResponse) HasLogs() bool {
	return r.Logs != nil && *r.Logs != ""
}

// SessionInfo describes one server-side document session.
type SessionInfo struct {
	SessionID  string `json:"session_id"`
	Filename   string `json:"filename"`
	UploadedAt string `json:"uploaded_at"`
	FileSize   int64  `json:"file_size,omitempty"`
}

// SessionList is returned by GET /api/sessions.
type SessionList struct {
	Sessions []SessionInfo `json:"sessions"`
	Count    int           `json:"count"`
}

// DeleteSessionResponse is returned by DELETE /api/sessions/{id}.
type DeleteSessionResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

// =============================================================================
// PAYMENT TYPES
// =============================================================================

// CreateOrderRequest is the body for POST /api/payments/create-order.
type CreateOrderRequest struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency,omitempty"`
	Description string  `json:"description,omitempty"`
}

// CaptureOrderRequest is the body for POST /api/payments/capture-order.
type CaptureOrderRequest struct {
	OrderID string `json:"order_id"`
}

// PaymentOrder is the provider order wrapper. Order and Payment are
// provider-shaped and opaque to this client; they are kept as raw JSON
// so callers can surface the approval link without this package chasing
// the gateway's schema.
type PaymentOrder struct {
	OrderID string          `json:"order_id"`
	Order   json.RawMessage `json:"order,omitempty"`
	Payment json.RawMessage `json:"payment,omitempty"`
}

// =============================================================================
// NEWSLETTER TYPES
// =============================================================================

// NewsletterResponse is returned by POST /api/newsletter/subscribe.
type NewsletterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
