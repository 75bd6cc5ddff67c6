// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// MaxUploadSize is the client-enforced limit on document uploads.
// The backend enforces the same limit; checking here saves the round trip.
const MaxUploadSize = 10 * 1024 * 1024 // 10MB

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================

// Login authenticates with email and password. The returned credential
// is not persisted here; the auth store owns persistence.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup registers a new account. The backend does not log the account
// in; callers direct the user to Login afterward.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me fetches the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ForgotPassword requests a password reset email. The response is a
// generic acknowledgement regardless of whether the address exists.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*Acknowledgement, error) {
	var ack Acknowledgement
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/api/auth/forgot-password", body, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// ResetPassword redeems a reset token for a new password.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*Acknowledgement, error) {
	var ack Acknowledgement
	if err := c.do(ctx, http.MethodPost, "/api/auth/reset-password", req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// =============================================================================
// DOCUMENT ENDPOINTS
// =============================================================================

// UploadFile validates and uploads the PDF at path, creating a new
// document session. Validation failures (extension, size) are reported
// before any network traffic.
func (c *Client) UploadFile(ctx context.Context, path string) (*UploadResponse, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, ErrNotPDF
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return c.Upload(ctx, filepath.Base(path), f)
}

// Upload sends a document as a multipart form with a single "file"
// field. Callers that do not come through UploadFile are responsible for
// validating the content first.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (*UploadResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	// LimitReader as a second line of defense: enforce the size cap even
	// for callers bypassing UploadFile.
	n, err := io.Copy(part, io.LimitReader(content, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if n > MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	var resp UploadResponse
	if err := c.doBytes(ctx, http.MethodPost, "/api/upload", buf.Bytes(), w.FormDataContentType(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Chat sends one message scoped to a document session.
func (c *Client) Chat(ctx context.Context, sessionID, message string) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", ChatRequest{SessionID: sessionID, Message: message}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSession fetches metadata for one document session.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	var info SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(sessionID), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// DeleteSession asks the server to delete a document session and its
// derived state.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) (*DeleteSessionResponse, error) {
	var resp DeleteSessionResponse
	if err := c.do(ctx, http.MethodDelete, "/api/sessions/"+url.PathEscape(sessionID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListSessions lists the user's document sessions.
func (c *Client) ListSessions(ctx context.Context) (*SessionList, error) {
	var list SessionList
	if err := c.do(ctx, http.MethodGet, "/api/sessions", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// =============================================================================
// PAYMENT ENDPOINTS
// =============================================================================

// CreateOrder starts a payment-provider order. The provider approval URL
// is embedded in the opaque Order payload.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*PaymentOrder, error) {
	var order PaymentOrder
	if err := c.do(ctx, http.MethodPost, "/api/payments/create-order", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CaptureOrder captures an approved order.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*PaymentOrder, error) {
	var order PaymentOrder
	if err := c.do(ctx, http.MethodPost, "/api/payments/capture-order", CaptureOrderRequest{OrderID: orderID}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder fetches the current state of an order.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*PaymentOrder, error) {
	var order PaymentOrder
	if err := c.do(ctx, http.MethodGet, "/api/payments/order/"+url.PathEscape(orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// =============================================================================
// NEWSLETTER ENDPOINT
// =============================================================================

// SubscribeNewsletter subscribes an email address to the product
// newsletter. Works without a credential.
func (c *Client) SubscribeNewsletter(ctx context.Context, email string) (*NewsletterResponse, error) {
	var resp NewsletterResponse
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/api/newsletter/subscribe", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
