// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeCreds is an in-memory CredentialSource for tests.
type fakeCreds struct {
	token   string
	cleared int
}

func (f *fakeCreds) Token() (string, bool) {
	if f.token == "" {
		return "", false
	}
	return f.token, true
}

func (f *fakeCreds) Clear() error {
	f.token = ""
	f.cleared++
	return nil
}

func testClient(serverURL string, creds CredentialSource) *Client {
	return NewClient(serverURL, creds).WithRetryBaseDelay(time.Millisecond)
}

// =============================================================================
// CREDENTIAL ATTACH TESTS
// =============================================================================

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","email":"a@b.com"}`))
	}))
	defer server.Close()

	client := testClient(server.URL, &fakeCreds{token: "tok1"})

	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if gotAuth != "Bearer tok1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok1")
	}
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var sawAuthHeader bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuthHeader = r.Header["Authorization"]
		w.Write([]byte(`{"success":true,"message":"ok"}`))
	}))
	defer server.Close()

	client := testClient(server.URL, &fakeCreds{})

	if _, err := client.SubscribeNewsletter(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("SubscribeNewsletter: %v", err)
	}
	if sawAuthHeader {
		t.Error("request without a stored credential must not carry an Authorization header")
	}
}

// =============================================================================
// UNAUTHORIZED HANDLING TESTS
// =============================================================================

func TestClient_UnauthorizedClearsCredentialOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"token expired"}`))
	}))
	defer server.Close()

	creds := &fakeCreds{token: "stale"}
	client := testClient(server.URL, creds)

	var callbacks int
	client.OnUnauthorized(func() { callbacks++ })

	_, err := client.Me(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if !strings.Contains(err.Error(), "token expired") {
		t.Errorf("err = %v, want server detail included", err)
	}
	if creds.cleared != 1 {
		t.Errorf("credential cleared %d times, want exactly 1", creds.cleared)
	}
	if callbacks != 1 {
		t.Errorf("unauthorized callback fired %d times, want exactly 1", callbacks)
	}
	if _, ok := creds.Token(); ok {
		t.Error("credential should be gone after 401")
	}
}

func TestClient_SubsequentCallsCarryNoBearer(t *testing.T) {
	var authHeaders []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"nope"}`))
	}))
	defer server.Close()

	creds := &fakeCreds{token: "tok1"}
	client := testClient(server.URL, creds)

	client.Me(context.Background())
	client.Me(context.Background())

	if len(authHeaders) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(authHeaders))
	}
	if authHeaders[0] != "Bearer tok1" {
		t.Errorf("first request Authorization = %q, want bearer", authHeaders[0])
	}
	if authHeaders[1] != "" {
		t.Errorf("second request Authorization = %q, want empty after credential clear", authHeaders[1])
	}
}

// =============================================================================
// ERROR PROPAGATION TESTS
// =============================================================================

func TestClient_ServerDetailPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"email already registered"}`))
	}))
	defer server.Close()

	client := testClient(server.URL, &fakeCreds{})

	_, err := client.Signup(context.Background(), SignupRequest{Email: "a@b.com"})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", apiErr.Status)
	}
	if apiErr.Detail != "email already registered" {
		t.Errorf("Detail = %q", apiErr.Detail)
	}
	if ErrorDetail(err) != "email already registered" {
		t.Errorf("ErrorDetail = %q", ErrorDetail(err))
	}
}

func TestErrorDetail_GenericFallback(t *testing.T) {
	if got := ErrorDetail(errors.New("dial tcp: connection refused")); got != "Failed to process request" {
		t.Errorf("ErrorDetail fallback = %q", got)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"sessions":[],"count":0}`))
	}))
	defer server.Close()

	client := testClient(server.URL, &fakeCreds{token: "tok"})

	list, err := client.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions after retries: %v", err)
	}
	if hits != 3 {
		t.Errorf("hits = %d, want 3 (two retries)", hits)
	}
	if list.Count != 0 {
		t.Errorf("Count = %d", list.Count)
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"session not found"}`))
	}))
	defer server.Close()

	client := testClient(server.URL, &fakeCreds{token: "tok"})

	_, err := client.GetSession(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if hits != 1 {
		t.Errorf("hits = %d, want 1 (4xx is not retryable)", hits)
	}
}

func TestClient_RateLimitedSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"detail":"slow down"}`))
	}))
	defer server.Close()

	client := testClient(server.URL, &fakeCreds{token: "tok"})

	_, err := client.ListSessions(context.Background())
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

// =============================================================================
// UPLOAD TESTS
// =============================================================================

func TestClient_UploadFileRejectsNonPDF(t *testing.T) {
	client := testClient("http://example.invalid", &fakeCreds{token: "tok"})

	_, err := client.UploadFile(context.Background(), "notes.txt")
	if !errors.Is(err, ErrNotPDF) {
		t.Errorf("err = %v, want ErrNotPDF", err)
	}
}

func TestClient_UploadRejectsOversizeContent(t *testing.T) {
	client := testClient("http://example.invalid", &fakeCreds{token: "tok"})

	big := bytes.NewReader(make([]byte, MaxUploadSize+1))
	_, err := client.Upload(context.Background(), "big.pdf", big)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("err = %v, want ErrFileTooLarge", err)
	}
}

func TestClient_UploadSendsMultipartFileField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
		} else {
			f.Close()
			if header.Filename != "doc.pdf" {
				t.Errorf("filename = %q", header.Filename)
			}
		}
		w.Write([]byte(`{"session_id":"s1","filename":"doc.pdf","status":"ready","uploaded_at":"2026-01-01T00:00:00Z"}`))
	}))
	defer server.Close()

	client := testClient(server.URL, &fakeCreds{token: "tok"})

	resp, err := client.Upload(context.Background(), "doc.pdf", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if resp.SessionID != "s1" {
		t.Errorf("SessionID = %q", resp.SessionID)
	}
}

// =============================================================================
// CHAT RESPONSE SHAPE TESTS
// =============================================================================

func TestClient_ChatOptionalLogs(t *testing.T) {
	responses := []string{
		`{"response":"X is Y.","session_id":"s1","logs":"step1...step2..."}`,
		`{"response":"No idea.","session_id":"s1"}`,
	}
	var call int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(responses[call]))
		call++
	}))
	defer server.Close()

	client := testClient(server.URL, &fakeCreds{token: "tok"})

	withLogs, err := client.Chat(context.Background(), "s1", "What is X?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !withLogs.HasLogs() || *withLogs.Logs != "step1...step2..." {
		t.Errorf("Logs = %v, want log content", withLogs.Logs)
	}

	withoutLogs, err := client.Chat(context.Background(), "s1", "And?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if withoutLogs.HasLogs() {
		t.Error("absent logs field should report HasLogs() == false")
	}
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestClient_LoginEmbeddedUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"access_token":"tok1","token_type":"bearer","user":{"id":"1","email":"a@b.com","first_name":"Ada","last_name":"B","is_superuser":false}}`))
	}))
	defer server.Close()

	client := testClient(server.URL, &fakeCreds{})

	resp, err := client.Login(context.Background(), "a@b.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken != "tok1" {
		t.Errorf("AccessToken = %q", resp.AccessToken)
	}
	if resp.User == nil || resp.User.Email != "a@b.com" {
		t.Errorf("User = %+v, want embedded user", resp.User)
	}
	if resp.User.DisplayName() != "Ada B" {
		t.Errorf("DisplayName = %q", resp.User.DisplayName())
	}
}
