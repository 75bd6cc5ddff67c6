// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/model"
)

// fakeBackend scripts Chat responses and records DeleteSession calls.
type fakeBackend struct {
	chatResp  *api.ChatResponse
	chatErr   error
	deleted   []string
	deleteErr error
}

func (f *fakeBackend) Chat(_ context.Context, sessionID, message string) (*api.ChatResponse, error) {
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return f.chatResp, nil
}

func (f *fakeBackend) DeleteSession(_ context.Context, sessionID string) (*api.DeleteSessionResponse, error) {
	f.deleted = append(f.deleted, sessionID)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &api.DeleteSessionResponse{SessionID: sessionID}, nil
}

func strPtr(s string) *string { return &s }

func testUpload() *api.UploadResponse {
	return &api.UploadResponse{
		SessionID:  "s1",
		Filename:   "report.pdf",
		Status:     "ready",
		UploadedAt: "2026-02-01T10:00:00Z",
	}
}

func startedMachine(t *testing.T, backend Backend) *Machine {
	t.Helper()
	m := NewMachine(backend)
	if err := m.StartSession(testUpload()); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	return m
}

// =============================================================================
// SESSION LIFECYCLE TESTS
// =============================================================================

func TestMachine_StartSessionAdoptsUpload(t *testing.T) {
	m := startedMachine(t, &fakeBackend{})

	session := m.Session()
	if session == nil {
		t.Fatal("Session() = nil")
	}
	if session.SessionID != "s1" || session.Filename != "report.pdf" {
		t.Errorf("session = %+v", session)
	}
	if !m.HasSession() {
		t.Error("HasSession() = false")
	}
	if len(m.Turns()) != 0 {
		t.Error("new session should start with an empty transcript")
	}
}

func TestMachine_StartSessionDiscardsPreviousState(t *testing.T) {
	backend := &fakeBackend{chatResp: &api.ChatResponse{Response: "A.", SessionID: "s1", Logs: strPtr("trace")}}
	m := startedMachine(t, backend)

	if _, err := m.Submit(context.Background(), "Q?"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(m.Turns()) != 2 {
		t.Fatalf("setup: %d turns", len(m.Turns()))
	}

	second := testUpload()
	second.SessionID = "s2"
	if err := m.StartSession(second); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if len(m.Turns()) != 0 {
		t.Error("transcript should be cleared by a new session")
	}
	if _, ok := m.LogAt(0); ok {
		t.Error("log transcript should be cleared by a new session")
	}
	if m.Session().SessionID != "s2" {
		t.Errorf("SessionID = %q", m.Session().SessionID)
	}
}

func TestMachine_StartSessionBusyRejected(t *testing.T) {
	m := startedMachine(t, &fakeBackend{})

	if _, err := m.Begin("Q?"); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	if err := m.StartSession(testUpload()); !errors.Is(err, ErrBusy) {
		t.Errorf("StartSession during processing = %v, want ErrBusy", err)
	}
}

func TestMachine_ResetSessionClearsLocallyEvenOnServerFailure(t *testing.T) {
	backend := &fakeBackend{deleteErr: errors.New("boom")}
	m := startedMachine(t, backend)

	if err := m.ResetSession(context.Background()); err != nil {
		t.Fatalf("ResetSession: %v", err)
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != "s1" {
		t.Errorf("deleted = %v, want attempt for s1", backend.deleted)
	}
	if m.HasSession() {
		t.Error("session should be cleared despite server failure")
	}
	if len(m.Turns()) != 0 {
		t.Error("transcript should be cleared")
	}
}

func TestMachine_ResetSessionWithoutSessionSkipsServer(t *testing.T) {
	backend := &fakeBackend{}
	m := NewMachine(backend)

	if err := m.ResetSession(context.Background()); err != nil {
		t.Fatalf("ResetSession: %v", err)
	}
	if len(backend.deleted) != 0 {
		t.Error("no delete should be issued without a session")
	}
}

func TestMachine_ClearDropsSessionAndTranscript(t *testing.T) {
	backend := &fakeBackend{
		chatResp: &api.ChatResponse{Response: "ok", SessionID: "s1", Logs: strPtr("scored 3 chunks")},
	}
	m := startedMachine(t, backend)
	if _, err := m.Submit(context.Background(), "hello"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(m.Turns()) != 2 {
		t.Fatalf("transcript has %d turns, want 2", len(m.Turns()))
	}

	m.Clear()

	if m.HasSession() {
		t.Error("session survived Clear")
	}
	if len(m.Turns()) != 0 {
		t.Errorf("transcript has %d turns after Clear", len(m.Turns()))
	}
	if _, ok := m.LogAt(0); ok {
		t.Error("logs survived Clear")
	}
	if len(backend.deleted) != 0 {
		t.Error("Clear must not contact the server")
	}
}

func TestMachine_ClearUnblocksInFlightExchange(t *testing.T) {
	m := startedMachine(t, &fakeBackend{})
	if _, err := m.Begin("still in flight"); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	m.Clear()

	if m.IsProcessing() {
		t.Error("machine still busy after Clear")
	}

	// The orphaned result lands after the teardown; it must not
	// resurrect any state.
	turn := m.Complete(&api.ChatResponse{Response: "too late", SessionID: "s1"}, nil)
	if turn.Content != "" {
		t.Errorf("stale Complete returned %q", turn.Content)
	}
	if len(m.Turns()) != 0 {
		t.Errorf("stale Complete appended %d turns", len(m.Turns()))
	}

	// A fresh session starts clean.
	if err := m.StartSession(testUpload()); err != nil {
		t.Fatalf("StartSession after Clear: %v", err)
	}
	if _, err := m.Begin("next question"); err != nil {
		t.Errorf("Begin after Clear: %v", err)
	}
}

// =============================================================================
// EXCHANGE TESTS
// =============================================================================

func TestMachine_BeginValidation(t *testing.T) {
	m := NewMachine(&fakeBackend{})

	if _, err := m.Begin("   \n\t "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("blank input err = %v, want ErrEmptyInput", err)
	}
	if _, err := m.Begin("Q?"); !errors.Is(err, ErrNoSession) {
		t.Errorf("no-session err = %v, want ErrNoSession", err)
	}
}

func TestMachine_SerializedExchanges(t *testing.T) {
	m := startedMachine(t, &fakeBackend{})

	userTurn, err := m.Begin("first?")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if !m.IsProcessing() {
		t.Error("machine should be busy after Begin")
	}
	if _, err := m.Begin("second?"); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Begin err = %v, want ErrBusy", err)
	}

	m.Complete(&api.ChatResponse{Response: "done", SessionID: "s1"}, nil)
	if m.IsProcessing() {
		t.Error("machine should be idle after Complete")
	}
	if _, err := m.Begin("second?"); err != nil {
		t.Errorf("Begin after Complete: %v", err)
	}

	if userTurn.Role != model.RoleUser || userTurn.Content != "first?" {
		t.Errorf("user turn = %+v", userTurn)
	}
}

func TestMachine_LogSlotReservation(t *testing.T) {
	m := startedMachine(t, &fakeBackend{})

	// First exchange returns logs: both turns share index 0.
	user1, _ := m.Begin("one?")
	reply1 := m.Complete(&api.ChatResponse{Response: "A1", SessionID: "s1", Logs: strPtr("trace one")}, nil)

	if user1.LogIndex != 0 || reply1.LogIndex != 0 {
		t.Errorf("indexes = %d, %d, want both 0", user1.LogIndex, reply1.LogIndex)
	}
	if blob, ok := m.LogAt(0); !ok || blob != "trace one" {
		t.Errorf("LogAt(0) = %q, %v", blob, ok)
	}

	// Second exchange returns no logs: slot 1 is reserved but unfilled.
	user2, _ := m.Begin("two?")
	reply2 := m.Complete(&api.ChatResponse{Response: "A2", SessionID: "s1"}, nil)

	if user2.LogIndex != 1 || reply2.LogIndex != 1 {
		t.Errorf("indexes = %d, %d, want both 1", user2.LogIndex, reply2.LogIndex)
	}
	if _, ok := m.LogAt(1); ok {
		t.Error("unfilled reserved slot must report absent")
	}

	// Third exchange with logs fills slot 1: earlier references stay valid.
	user3, _ := m.Begin("three?")
	m.Complete(&api.ChatResponse{Response: "A3", SessionID: "s1", Logs: strPtr("trace three")}, nil)

	if user3.LogIndex != 1 {
		t.Errorf("third exchange reserved index %d, want 1", user3.LogIndex)
	}
	if blob, _ := m.LogAt(0); blob != "trace one" {
		t.Error("existing log index remapped")
	}
	if blob, ok := m.LogAt(1); !ok || blob != "trace three" {
		t.Errorf("LogAt(1) = %q, %v", blob, ok)
	}
}

func TestMachine_FailedExchangeAppendsErrorTurn(t *testing.T) {
	m := startedMachine(t, &fakeBackend{})

	m.Begin("Q?")
	turn := m.Complete(nil, &api.APIError{Status: 500, Detail: "vector store unavailable"})

	if turn.Role != model.RoleAssistant {
		t.Errorf("Role = %q", turn.Role)
	}
	if turn.Content != "vector store unavailable" {
		t.Errorf("Content = %q, want server detail", turn.Content)
	}
	if turn.HasLogIndex() {
		t.Error("error turn must carry no log association")
	}
	if m.IsProcessing() {
		t.Error("machine should be idle after a failed exchange")
	}
}

func TestMachine_FailedExchangeGenericFallback(t *testing.T) {
	m := startedMachine(t, &fakeBackend{})

	m.Begin("Q?")
	turn := m.Complete(nil, errors.New("dial tcp: connection refused"))

	if turn.Content != "Failed to process request" {
		t.Errorf("Content = %q", turn.Content)
	}
}

func TestMachine_SubmitComposesExchange(t *testing.T) {
	backend := &fakeBackend{chatResp: &api.ChatResponse{Response: "The answer.", SessionID: "s1", Logs: strPtr("trace")}}
	m := startedMachine(t, backend)

	reply, err := m.Submit(context.Background(), "  What is X?  ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if reply.Content != "The answer." {
		t.Errorf("reply = %q", reply.Content)
	}

	turns := m.Turns()
	if len(turns) != 2 {
		t.Fatalf("len(turns) = %d", len(turns))
	}
	if turns[0].Content != "What is X?" {
		t.Errorf("user turn content = %q, want trimmed input", turns[0].Content)
	}
	if turns[1].ID != reply.ID {
		t.Error("returned reply should be the appended turn")
	}
}

func TestMachine_SubmitNetworkFailureResolvesToErrorTurn(t *testing.T) {
	backend := &fakeBackend{chatErr: &api.APIError{Status: 503, Detail: "overloaded"}}
	m := startedMachine(t, backend)

	reply, err := m.Submit(context.Background(), "Q?")
	if err != nil {
		t.Fatalf("Submit should not return the network error, got %v", err)
	}
	if reply.Content != "overloaded" {
		t.Errorf("reply = %q", reply.Content)
	}
	if len(m.Turns()) != 2 {
		t.Errorf("len(turns) = %d, want user turn plus error turn", len(m.Turns()))
	}
}

// =============================================================================
// ARCHIVER TESTS
// =============================================================================

type recordingArchiver struct {
	turns []model.Turn
	err   error
}

func (r *recordingArchiver) SaveTurn(_ model.DocumentSession, turn model.Turn) error {
	r.turns = append(r.turns, turn)
	return r.err
}

func TestMachine_ArchivesBothSidesOfExchange(t *testing.T) {
	backend := &fakeBackend{chatResp: &api.ChatResponse{Response: "A.", SessionID: "s1"}}
	m := startedMachine(t, backend)

	archive := &recordingArchiver{}
	m.SetArchiver(archive)

	if _, err := m.Submit(context.Background(), "Q?"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(archive.turns) != 2 {
		t.Fatalf("archived %d turns, want 2", len(archive.turns))
	}
	if archive.turns[0].Role != model.RoleUser || archive.turns[1].Role != model.RoleAssistant {
		t.Errorf("archived roles = %q, %q", archive.turns[0].Role, archive.turns[1].Role)
	}
}

func TestMachine_ArchiveFailureIsSilent(t *testing.T) {
	backend := &fakeBackend{chatResp: &api.ChatResponse{Response: "A.", SessionID: "s1"}}
	m := startedMachine(t, backend)
	m.SetArchiver(&recordingArchiver{err: errors.New("disk full")})

	if _, err := m.Submit(context.Background(), "Q?"); err != nil {
		t.Errorf("archive failure must not surface: %v", err)
	}
	if len(m.Turns()) != 2 {
		t.Error("exchange should complete despite archive failure")
	}
}
