// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/docchat-tui/internal/util"
)

// Configuration constants for the docchat API.
const (
	// DefaultBaseURL is the development default; production deployments
	// set server.base_url in the config file.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the number of attempts for transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize caps response bodies to prevent memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// sharedHTTPClient is the pooled transport used by all clients.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: DefaultTimeout,
}

// Error variables for common API failures.
var (
	// ErrUnauthorized indicates the bearer credential was missing,
	// invalid, or expired. Receiving it means the stored credential has
	// already been cleared and the unauthorized callback has fired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the service rejected the call with 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotPDF indicates an upload candidate without a .pdf extension.
	ErrNotPDF = errors.New("only PDF files are supported")

	// ErrFileTooLarge indicates an upload candidate over the size limit.
	ErrFileTooLarge = errors.New("file size must be less than 10MB")
)

// APIError is a non-2xx response from the service. Detail carries the
// backend's human-readable message when one was present.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error (HTTP %d)", e.Status)
}

// ErrorDetail extracts a display message from any error returned by this
// package: the server's detail text when present, otherwise a generic
// fallback. Chat error turns are built from this.
func ErrorDetail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out"
	}
	return "Failed to process request"
}

// errorBody is the backend's error envelope (FastAPI-style).
type errorBody struct {
	Detail string `json:"detail"`
}

// CredentialSource supplies the persisted bearer credential and is the
// only handle through which this package may clear it.
type CredentialSource interface {
	// Token returns the stored credential, if any.
	Token() (string, bool)
	// Clear removes the stored credential.
	Clear() error
}

// Client is the docchat API client.
type Client struct {
	baseURL    string
	creds      CredentialSource
	httpClient *http.Client
	maxRetries int
	retryBase  time.Duration
	limiter    *rate.Limiter
	userAgent  string

	// onUnauthorized is invoked at most once per call after the stored
	// credential has been cleared in reaction to a 401.
	onUnauthorized func()
}

// NewClient creates a client for the service at baseURL. creds may be
// nil for a credential-less client (newsletter signup from scripts).
func NewClient(baseURL string, creds CredentialSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		creds:      creds,
		httpClient: sharedHTTPClient,
		maxRetries: DefaultMaxRetries,
		retryBase:  retryBaseDelay,
		// One request per 200ms with a small burst: polite pacing that a
		// scripted caller cannot bypass.
		limiter:   rate.NewLimiter(rate.Every(200*time.Millisecond), 3),
		userAgent: "docchat/" + Version,
	}
}

// Version is the client version reported in the User-Agent header.
// Overwritten at build time via -ldflags.
var Version = "0.1.0"

// WithHTTPClient sets a custom HTTP client (tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithMaxRetries sets the maximum number of attempts for transient errors.
func (c *Client) WithMaxRetries(n int) *Client {
	if n > 0 {
		c.maxRetries = n
	}
	return c
}

// WithRetryBaseDelay sets the base backoff delay (tests shorten it).
func (c *Client) WithRetryBaseDelay(d time.Duration) *Client {
	if d > 0 {
		c.retryBase = d
	}
	return c
}

// OnUnauthorized registers the callback invoked after a 401 clears the
// stored credential. The callback runs on the calling goroutine before
// the error is returned; it should only flip state and post messages,
// never block.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST CORE
// =============================================================================

// do performs one logical API call: marshal body, attach credential,
// send with retries for transient failures, decode into out (unless out
// is nil). The unauthorized handling is per-call: authAttempt is a local
// counter, never a flag on a shared request object, so a reused client
// cannot leak retry state between calls.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}
	return c.doBytes(ctx, method, path, bodyBytes, "", out)
}

// doBytes is the retry loop shared by JSON calls and the multipart
// upload, which builds its own body and content type.
func (c *Client) doBytes(ctx context.Context, method, path string, bodyBytes []byte, contentType string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	authAttempt := 0
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.calculateBackoff(attempt)):
			}
		}

		status, respBody, err := c.send(ctx, method, path, bodyBytes, contentType)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			lastErr = err
			continue
		}

		if status >= 200 && status < 300 {
			if out == nil || len(respBody) == 0 {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			return nil
		}

		callErr := c.handleErrorStatus(status, respBody, &authAttempt)
		if isRetryable(status) {
			lastErr = callErr
			continue
		}
		return callErr
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// send performs a single HTTP round trip and returns status and body.
// contentType overrides the default application/json (multipart upload).
func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType == "" {
		contentType = "application/json"
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", c.userAgent)

	if c.creds != nil {
		if token, ok := c.creds.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)

	// Drop the header immediately so a stray request dump never carries
	// the credential.
	req.Header.Del("Authorization")

	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	util.DebugLog("api: %s %s -> %d (%v)", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	respBody, err := readResponse(resp)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// handleErrorStatus converts a non-2xx status into an error. For the
// first 401 seen by this call it clears the stored credential and fires
// the unauthorized callback; the error still propagates so the caller
// can surface it while the UI is already mid-redirect.
func (c *Client) handleErrorStatus(status int, body []byte, authAttempt *int) error {
	detail := parseDetail(body)

	switch status {
	case http.StatusUnauthorized:
		if *authAttempt == 0 {
			*authAttempt++
			if c.creds != nil {
				if err := c.creds.Clear(); err != nil {
					util.DebugLog("api: failed to clear credential after 401: %v", err)
				}
			}
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
		}
		if detail != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
		}
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		if detail != "" {
			return fmt.Errorf("%w: %s", ErrRateLimited, detail)
		}
		return ErrRateLimited
	default:
		return &APIError{Status: status, Detail: detail}
	}
}

// parseDetail extracts the backend's detail message, if any.
func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		return eb.Detail
	}
	return ""
}

// isRetryable reports whether a status is worth another attempt.
// 401 is never retried: the credential is gone and the UI is redirecting.
func isRetryable(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

// calculateBackoff returns the delay before the given retry attempt.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := c.retryBase * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// readResponse reads a response body through a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", int64(MaxResponseSize))
	}
	return body, nil
}
