// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/auth"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

type nullCreds struct{}

func (nullCreds) Token() (string, bool) { return "", false }
func (nullCreds) Clear() error          { return nil }
func (nullCreds) Save(string) error     { return nil }

func newTestModel() Model {
	client := api.NewClient("http://localhost:8000", nullCreds{})
	store := auth.NewStore(client, nullCreds{})
	return New(store, styles.NewTheme())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestModeSwitching(t *testing.T) {
	m := newTestModel()
	if m.mode != ModeLogin || len(m.inputs) != 2 {
		t.Fatalf("initial mode = %v with %d inputs", m.mode, len(m.inputs))
	}

	m, _ = m.Update(key("ctrl+t"))
	if m.mode != ModeSignup || len(m.inputs) != 4 {
		t.Errorf("after ctrl+t: mode = %v with %d inputs", m.mode, len(m.inputs))
	}

	m, _ = m.Update(key("esc"))
	if m.mode != ModeLogin {
		t.Errorf("esc should return to sign in, got %v", m.mode)
	}

	m, _ = m.Update(key("ctrl+r"))
	if m.mode != ModeForgot || len(m.inputs) != 1 {
		t.Errorf("after ctrl+r: mode = %v with %d inputs", m.mode, len(m.inputs))
	}
}

func TestFocusCycle(t *testing.T) {
	m := newTestModel()

	m, _ = m.Update(key("tab"))
	if m.focus != 1 {
		t.Errorf("focus = %d after tab", m.focus)
	}
	m, _ = m.Update(key("tab"))
	if m.focus != 0 {
		t.Errorf("focus = %d, tab should wrap", m.focus)
	}
	m, _ = m.Update(key("shift+tab"))
	if m.focus != 1 {
		t.Errorf("focus = %d, shift+tab should wrap backwards", m.focus)
	}
}

func TestSubmitRequiresAllFields(t *testing.T) {
	m := newTestModel()
	m.inputs[0].SetValue("ada@example.com")

	// Enter on the first field just advances focus.
	m, _ = m.Update(key("enter"))
	if m.focus != 1 {
		t.Fatalf("focus = %d after enter on first field", m.focus)
	}

	// Enter on the last field with an empty password is rejected locally.
	m, cmd := m.Update(key("enter"))
	if cmd != nil {
		t.Error("incomplete form should not fire a request")
	}
	if m.errText == "" {
		t.Error("incomplete form should set an error")
	}
	if m.submitting {
		t.Error("incomplete form should not enter submitting state")
	}
}

func TestSubmitFiresCommand(t *testing.T) {
	m := newTestModel()
	m.inputs[0].SetValue("ada@example.com")
	m.inputs[1].SetValue("hunter22")
	m.setFocus(1)

	m, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("complete form should fire a request")
	}
	if !m.submitting {
		t.Error("submit should enter submitting state")
	}
}

func TestLoginFailureShowsDetail(t *testing.T) {
	m := newTestModel()
	m.submitting = true

	m, _ = m.Update(loginResultMsg{Err: &api.APIError{Status: 401, Detail: "Incorrect email or password"}})
	if m.submitting {
		t.Error("result should clear submitting state")
	}
	if m.errText != "Incorrect email or password" {
		t.Errorf("errText = %q", m.errText)
	}
}

func TestSignupSuccessReturnsToLogin(t *testing.T) {
	m := newTestModel()
	m, _ = m.Update(key("ctrl+t"))
	m.inputs[0].SetValue("Ada")
	m.inputs[1].SetValue("B")
	m.inputs[2].SetValue("ada@example.com")
	m.inputs[3].SetValue("hunter22")

	m, _ = m.Update(signupResultMsg{User: &api.User{Email: "ada@example.com"}})
	if m.mode != ModeLogin {
		t.Errorf("mode = %v after signup success", m.mode)
	}
	if m.inputs[0].Value() != "ada@example.com" {
		t.Errorf("email not carried over, got %q", m.inputs[0].Value())
	}
	if m.infoText == "" {
		t.Error("signup success should show a notice")
	}
}

func TestForgotSuccessShowsNotice(t *testing.T) {
	m := newTestModel()
	m, _ = m.Update(key("ctrl+r"))

	m, _ = m.Update(forgotResultMsg{Message: "Reset email sent"})
	if m.mode != ModeLogin {
		t.Errorf("mode = %v after forgot success", m.mode)
	}
	if m.infoText != "Reset email sent" {
		t.Errorf("infoText = %q", m.infoText)
	}
}

func TestViewRendersForm(t *testing.T) {
	m := newTestModel()
	out := m.View()
	for _, want := range []string{"docchat", "Sign in", "Email", "Password"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
