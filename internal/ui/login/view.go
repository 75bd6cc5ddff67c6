// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// labels returns the field labels for the current mode, in input order.
func (m Model) labels() []string {
	switch m.mode {
	case ModeSignup:
		return []string{"First name", "Last name", "Email", "Password"}
	case ModeForgot:
		return []string{"Email"}
	default:
		return []string{"Email", "Password"}
	}
}

// View renders the authentication form centered in the window.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.WelcomeLogo.Render("docchat"))
	b.WriteString("\n")
	b.WriteString(m.theme.FormTitle.Render(m.mode.title()))
	b.WriteString("\n\n")

	labels := m.labels()
	for i, input := range m.inputs {
		b.WriteString(m.theme.FormLabel.Render(labels[i]))
		b.WriteString("\n")
		if i == m.focus {
			b.WriteString(m.theme.FormFocused.Render(input.View()))
		} else {
			b.WriteString(m.theme.FormBlurred.Render(input.View()))
		}
		b.WriteString("\n")
	}

	if m.submitting {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(m.theme.ThinkingText.Render(" working..."))
		b.WriteString("\n")
	}

	if m.errText != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.FormError.Render(m.errText))
		b.WriteString("\n")
	}
	if m.infoText != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.FormHint.Render(m.infoText))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.FormHint.Render(m.hints()))

	form := m.theme.FormBox.Render(b.String())

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
	}
	return form
}

// hints lists the key bindings relevant to the current mode.
func (m Model) hints() string {
	switch m.mode {
	case ModeSignup:
		return "[enter] submit  [ctrl+t] sign in  [esc] back"
	case ModeForgot:
		return "[enter] send reset email  [esc] back"
	default:
		return "[enter] sign in  [ctrl+t] sign up  [ctrl+r] forgot password"
	}
}
