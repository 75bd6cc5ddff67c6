// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBusy indicates an exchange is still processing.
	ErrBusy = errors.New("a message is already being processed")
	// ErrEmptyInput indicates the submitted message was blank.
	ErrEmptyInput = errors.New("message is empty")
	// ErrNoSession indicates no document has been uploaded yet.
	ErrNoSession = errors.New("no active document session")
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Backend is the slice of the API surface the machine talks to.
// *api.Client satisfies it.
type Backend interface {
	Chat(ctx context.Context, sessionID, message string) (*api.ChatResponse, error)
	DeleteSession(ctx context.Context, sessionID string) (*api.DeleteSessionResponse, error)
}

// Archiver receives completed turns for local persistence. Archiving is
// best-effort; failures are logged and never surface to the user.
type Archiver interface {
	SaveTurn(session model.DocumentSession, turn model.Turn) error
}

// =============================================================================
// MACHINE
// =============================================================================

// Machine is the state machine for one document conversation. All
// methods are safe for concurrent use; exchanges themselves are
// strictly serialized.
type Machine struct {
	mu      sync.RWMutex
	backend Backend

	session    *model.DocumentSession
	transcript *model.Transcript
	logs       *model.LogTranscript

	processing      bool
	pendingLogIndex int

	archiver Archiver
}

// NewMachine creates a machine with empty transcript state.
func NewMachine(backend Backend) *Machine {
	return &Machine{
		backend:         backend,
		transcript:      model.NewTranscript(),
		logs:            model.NewLogTranscript(),
		pendingLogIndex: model.NoLog,
	}
}

// SetArchiver installs a local turn archive. Pass nil to disable.
func (m *Machine) SetArchiver(a Archiver) {
	m.mu.Lock()
	m.archiver = a
	m.mu.Unlock()
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// StartSession adopts a freshly uploaded document as the active session,
// discarding any previous transcript and logs. It fails with ErrBusy
// while an exchange is processing.
func (m *Machine) StartSession(upload *api.UploadResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.processing {
		return ErrBusy
	}

	uploadedAt, err := time.Parse(time.RFC3339, upload.UploadedAt)
	if err != nil {
		uploadedAt = time.Now()
	}

	m.session = &model.DocumentSession{
		SessionID:  upload.SessionID,
		Filename:   upload.Filename,
		UploadedAt: uploadedAt,
	}
	m.transcript.Reset()
	m.logs.Reset()
	m.pendingLogIndex = model.NoLog
	return nil
}

// ResetSession asks the server to delete the active session, then
// clears local state. The server call is best-effort: local state is
// cleared even when the delete fails, so the user is never stuck with
// a dead session. Fails with ErrBusy while an exchange is processing.
func (m *Machine) ResetSession(ctx context.Context) error {
	m.mu.Lock()
	if m.processing {
		m.mu.Unlock()
		return ErrBusy
	}
	session := m.session
	m.mu.Unlock()

	if session != nil {
		if _, err := m.backend.DeleteSession(ctx, session.SessionID); err != nil {
			util.DebugLog("chat: session delete failed for %s: %v", session.SessionID, err)
		}
	}

	m.mu.Lock()
	m.session = nil
	m.transcript.Reset()
	m.logs.Reset()
	m.pendingLogIndex = model.NoLog
	m.mu.Unlock()
	return nil
}

// Clear drops all local state without contacting the server: the
// session, transcript, logs, and the processing flag. Used on logout,
// where the credential is already gone and a server delete could not
// be authenticated anyway. A Complete for an exchange that was in
// flight at clear time is discarded when it arrives.
func (m *Machine) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	m.transcript.Reset()
	m.logs.Reset()
	m.pendingLogIndex = model.NoLog
	m.processing = false
}

// =============================================================================
// EXCHANGES
// =============================================================================

// Begin records the user's turn and marks the machine busy. The turn
// reserves the next log slot: the diagnostic blob for this exchange,
// if the server returns one, lands at the reserved index.
//
// The caller resolves the exchange with Complete, successful or not.
func (m *Machine) Begin(text string) (model.Turn, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.Turn{}, ErrEmptyInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return model.Turn{}, ErrNoSession
	}
	if m.processing {
		return model.Turn{}, ErrBusy
	}

	m.pendingLogIndex = m.logs.Len()
	turn := model.NewUserTurn(trimmed, m.pendingLogIndex)
	m.transcript.Append(turn)
	m.processing = true

	m.archive(turn)
	return turn, nil
}

// Complete resolves the exchange opened by Begin. On success the
// assistant's turn is appended, sharing the reserved log index with the
// user's turn; the diagnostic blob, when present, fills the reserved
// slot. On failure an error turn carrying the server's detail message
// is appended instead, with no log association.
//
// A result with no matching Begin is dropped: Clear may have torn the
// session down while the exchange was in flight.
func (m *Machine) Complete(resp *api.ChatResponse, err error) model.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.processing {
		return model.Turn{}
	}

	var turn model.Turn
	if err != nil {
		turn = model.NewErrorTurn(api.ErrorDetail(err))
	} else {
		if resp.HasLogs() {
			m.logs.Append(*resp.Logs)
		}
		turn = model.NewAssistantTurn(resp.Response, m.pendingLogIndex)
	}
	m.transcript.Append(turn)
	m.pendingLogIndex = model.NoLog
	m.processing = false

	m.archive(turn)
	return turn
}

// Submit runs a full exchange synchronously: Begin, the network call,
// Complete. Failures of the network call are not returned as an error;
// they resolve into the appended error turn, matching interactive use.
func (m *Machine) Submit(ctx context.Context, text string) (model.Turn, error) {
	userTurn, err := m.Begin(text)
	if err != nil {
		return model.Turn{}, err
	}

	m.mu.RLock()
	sessionID := m.session.SessionID
	m.mu.RUnlock()

	resp, chatErr := m.backend.Chat(ctx, sessionID, userTurn.Content)
	return m.Complete(resp, chatErr), nil
}

// archive hands a turn to the local archive. Caller holds the lock.
func (m *Machine) archive(turn model.Turn) {
	if m.archiver == nil || m.session == nil {
		return
	}
	if err := m.archiver.SaveTurn(*m.session, turn); err != nil {
		util.DebugLog("chat: archive failed for %s: %v", turn.ID, err)
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Session returns a copy of the active document session, or nil.
func (m *Machine) Session() *model.DocumentSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil
	}
	s := *m.session
	return &s
}

// HasSession reports whether a document is loaded.
func (m *Machine) HasSession() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil
}

// IsProcessing reports whether an exchange is in flight.
func (m *Machine) IsProcessing() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.processing
}

// Turns returns a copy of the transcript in submission order.
func (m *Machine) Turns() []model.Turn {
	return m.transcript.Turns()
}

// LogAt returns the diagnostic blob at the given index. The boolean is
// false for the NoLog sentinel, out-of-range indexes, and reserved
// slots the server never filled.
func (m *Machine) LogAt(index int) (string, bool) {
	return m.logs.At(index)
}
