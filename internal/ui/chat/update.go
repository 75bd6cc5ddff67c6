// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/api"
	session "github.com/jeranaias/docchat-tui/internal/chat"
)

// Update handles messages for the chat view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case uploadResultMsg:
		return m.handleUploadResult(msg)

	case chatResultMsg:
		return m.handleChatResult(msg)

	case resetResultMsg:
		return m.handleResetResult(msg)

	case toastTickMsg:
		if m.toasts.Prune() {
			return m, toastTickCmd()
		}
		m.ticking = false
		return m, nil
	}

	return m, nil
}

// busy reports whether a request is in flight.
func (m Model) busy() bool {
	return m.uploading || m.machine.IsProcessing()
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	// Header, input box, and status bar each take fixed rows.
	chromeHeight := 6
	vpHeight := msg.Height - chromeHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = msg.Width
	m.viewport.Height = vpHeight
	m.input.Width = msg.Width - 6

	m.rebuildRenderer(msg.Width)
	m.refreshTranscript(false)
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+q":
		return m, func() tea.Msg { return SignOutMsg{} }

	case "ctrl+u":
		if m.busy() {
			return m.notify("Still working on the last request.")
		}
		m.uploadMode = true
		m.input.Reset()
		m.input.Placeholder = "Path to a PDF file"
		return m, nil

	case "esc":
		if m.uploadMode {
			m.uploadMode = false
			m.input.Reset()
			m.input.Placeholder = m.questionPlaceholder()
		}
		return m, nil

	case "ctrl+n":
		if !m.machine.HasSession() {
			return m, nil
		}
		if m.busy() {
			return m.notify("Still working on the last request.")
		}
		return m, resetCmd(m.machine)

	case "ctrl+l":
		m.showLogs = !m.showLogs
		m.refreshTranscript(false)
		return m, nil

	case "enter":
		return m.handleSubmit()

	case "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "up", "down":
		// Single-line input, so arrows scroll the transcript.
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit routes enter to the upload prompt or the question flow.
func (m Model) handleSubmit() (Model, tea.Cmd) {
	if m.uploadMode {
		path := strings.TrimSpace(m.input.Value())
		if path == "" {
			return m, nil
		}
		m.uploadMode = false
		m.uploading = true
		m.input.Reset()
		m.input.Placeholder = m.questionPlaceholder()
		return m, tea.Batch(m.spinner.Tick, uploadCmd(m.client, path))
	}

	turn, err := m.machine.Begin(m.input.Value())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmptyInput):
			return m, nil
		case errors.Is(err, session.ErrNoSession):
			return m.notify("Upload a document first (ctrl+u).")
		case errors.Is(err, session.ErrBusy):
			return m.notify("Still working on the last question.")
		default:
			return m.notifyError(api.ErrorDetail(err))
		}
	}

	m.input.Reset()
	m.refreshTranscript(true)

	doc := m.machine.Session()
	return m, tea.Batch(m.spinner.Tick, chatCmd(m.client, doc.SessionID, turn.Content))
}

// =============================================================================
// RESULT HANDLERS
// =============================================================================

func (m Model) handleUploadResult(msg uploadResultMsg) (Model, tea.Cmd) {
	m.uploading = false

	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, api.ErrNotPDF):
			return m.notifyError("Only PDF files can be uploaded.")
		case errors.Is(msg.Err, api.ErrFileTooLarge):
			return m.notifyError("That file is over the 10MB upload limit.")
		default:
			return m.notifyError(api.ErrorDetail(msg.Err))
		}
	}

	if err := m.machine.StartSession(msg.Resp); err != nil {
		return m.notifyError(api.ErrorDetail(err))
	}

	m.input.Placeholder = m.questionPlaceholder()
	m.refreshTranscript(true)

	return m.notifySuccess(fmt.Sprintf("%s is ready. Ask away.", msg.Resp.Filename))
}

func (m Model) handleChatResult(msg chatResultMsg) (Model, tea.Cmd) {
	m.machine.Complete(msg.Resp, msg.Err)
	m.refreshTranscript(true)
	return m, nil
}

func (m Model) handleResetResult(msg resetResultMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		return m.notifyError(api.ErrorDetail(msg.Err))
	}
	m.input.Reset()
	m.input.Placeholder = m.questionPlaceholder()
	m.refreshTranscript(false)
	return m.notify("Session cleared.")
}

// =============================================================================
// TOAST HELPERS
// =============================================================================

// notify shows a status toast and keeps the expiry tick running.
func (m Model) notify(text string) (Model, tea.Cmd) {
	m.toasts.Status(text)
	return m.ensureTick()
}

func (m Model) notifyError(text string) (Model, tea.Cmd) {
	m.toasts.Error(text)
	return m.ensureTick()
}

func (m Model) notifySuccess(text string) (Model, tea.Cmd) {
	m.toasts.Success(text)
	return m.ensureTick()
}

func (m Model) ensureTick() (Model, tea.Cmd) {
	if m.ticking {
		return m, nil
	}
	m.ticking = true
	return m, toastTickCmd()
}

// questionPlaceholder returns the input hint for the current session state.
func (m Model) questionPlaceholder() string {
	if doc := m.machine.Session(); doc != nil {
		return fmt.Sprintf("Ask a question about %s", doc.Filename)
	}
	return "Upload a document to start chatting (ctrl+u)"
}
