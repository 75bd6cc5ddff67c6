// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/ui/components"
)

// View renders the chat view: header, transcript viewport, input box,
// status bar, and any active toasts.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	if toasts := m.toasts.Visible(); len(toasts) > 0 {
		b.WriteString("\n")
		b.WriteString(components.RenderToasts(m.theme, toasts, m.width))
	}

	return b.String()
}

// =============================================================================
// CHROME
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("docchat")

	doc := ""
	if s := m.machine.Session(); s != nil {
		doc = m.theme.HeaderDocument.Render(s.Filename)
	}

	line := title
	if doc != "" {
		line = lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", doc)
	}
	return m.theme.Header.Render(line)
}

func (m Model) renderInput() string {
	prompt := m.input.View()
	if m.uploadMode {
		prompt = m.theme.InputPrompt.Render("[upload] ") + prompt
	}
	return m.theme.InputContainer.Render(prompt)
}

func (m Model) renderStatusBar() string {
	email := ""
	if user := m.store.Identity(); user != nil {
		email = user.Email
	}
	filename := ""
	if s := m.machine.Session(); s != nil {
		filename = s.Filename
	}

	shortcuts := []components.Shortcut{
		{Key: "ctrl+u", Desc: "upload"},
		{Key: "ctrl+n", Desc: "new session"},
		{Key: "ctrl+l", Desc: "logs"},
		{Key: "ctrl+q", Desc: "sign out"},
	}

	return m.statusBar.Render(components.State{
		Filename:  filename,
		UserEmail: email,
		Busy:      m.busy(),
		Shortcuts: shortcuts,
	}, m.width)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript rebuilds the viewport content from the machine's
// transcript. When follow is true the viewport snaps to the bottom.
func (m *Model) refreshTranscript(follow bool) {
	m.viewport.SetContent(m.renderTranscript())
	if follow {
		m.viewport.GotoBottom()
	}
}

func (m Model) renderTranscript() string {
	turns := m.machine.Turns()

	if len(turns) == 0 {
		return m.renderWelcome()
	}

	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}

		if turn.IsUser() {
			b.WriteString(m.theme.UserBubble.Render(turn.Content))
			b.WriteString("\n")
			continue
		}

		b.WriteString(m.theme.AssistantBubble.Render(m.renderMarkdown(turn.Content)))
		b.WriteString("\n")

		if !turn.HasLogIndex() {
			continue
		}
		if m.showLogs {
			if blob, ok := m.machine.LogAt(turn.LogIndex); ok {
				b.WriteString(m.logPanel.RenderExpanded(blob, m.width))
				b.WriteString("\n")
			}
		} else if i == len(turns)-1 {
			if _, ok := m.machine.LogAt(turn.LogIndex); ok {
				b.WriteString(m.logPanel.RenderCollapsed())
				b.WriteString("\n")
			}
		}
	}

	if m.busy() {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(m.theme.ThinkingText.Render(" thinking..."))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderWelcome() string {
	var b strings.Builder
	b.WriteString(m.theme.WelcomeLogo.Render("docchat"))
	b.WriteString("\n\n")

	if m.machine.HasSession() {
		doc := m.machine.Session()
		b.WriteString(m.theme.WelcomeInfo.Render(doc.Filename + " is ready."))
		b.WriteString("\n")
		b.WriteString(m.theme.WelcomeInfo.Render("Type a question below to get started."))
	} else {
		b.WriteString(m.theme.WelcomeInfo.Render("Chat with your documents."))
		b.WriteString("\n")
		b.WriteString(m.theme.WelcomeInfo.Render("Press ctrl+u to upload a PDF."))
	}

	box := m.theme.WelcomeBox.Render(b.String())
	if m.width > 0 && m.viewport.Height > 0 {
		return lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
