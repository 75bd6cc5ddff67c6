// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/auth"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// submitTimeout bounds a single auth request from the form.
const submitTimeout = 30 * time.Second

// =============================================================================
// FORM MODES
// =============================================================================

// Mode selects which form the view renders.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
	ModeForgot
)

// fieldCount returns how many inputs the mode shows.
func (m Mode) fieldCount() int {
	switch m {
	case ModeSignup:
		return 4
	case ModeForgot:
		return 1
	default:
		return 2
	}
}

// title returns the form heading for the mode.
func (m Mode) title() string {
	switch m {
	case ModeSignup:
		return "Create account"
	case ModeForgot:
		return "Reset password"
	default:
		return "Sign in"
	}
}

// =============================================================================
// LOGIN MODEL
// =============================================================================

// Model is the Bubble Tea model for the authentication view.
type Model struct {
	store *auth.Store
	theme *styles.Theme

	mode   Mode
	inputs []textinput.Model
	focus  int

	submitting bool
	spinner    spinner.Model

	errText  string
	infoText string

	width  int
	height int
}

// New creates the authentication view in sign-in mode.
func New(store *auth.Store, theme *styles.Theme) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	m := Model{
		store:   store,
		theme:   theme,
		mode:    ModeLogin,
		spinner: sp,
	}
	m.buildInputs()
	return m
}

// buildInputs rebuilds the input set for the current mode.
func (m *Model) buildInputs() {
	newInput := func(placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.Prompt = "> "
		ti.CharLimit = 128
		ti.Width = 40
		return ti
	}

	switch m.mode {
	case ModeSignup:
		m.inputs = []textinput.Model{
			newInput("First name"),
			newInput("Last name"),
			newInput("Email"),
			newInput("Password"),
		}
		m.inputs[3].EchoMode = textinput.EchoPassword
		m.inputs[3].EchoCharacter = '*'
	case ModeForgot:
		m.inputs = []textinput.Model{
			newInput("Email"),
		}
	default:
		m.inputs = []textinput.Model{
			newInput("Email"),
			newInput("Password"),
		}
		m.inputs[1].EchoMode = textinput.EchoPassword
		m.inputs[1].EchoCharacter = '*'
	}

	m.focus = 0
	m.inputs[0].Focus()
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the authentication view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loginResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.errText = api.ErrorDetail(msg.Err)
			return m, nil
		}
		return m, func() tea.Msg {
			return AuthenticatedMsg{User: m.store.Identity()}
		}

	case signupResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.errText = api.ErrorDetail(msg.Err)
			return m, nil
		}
		// Accounts are created signed out. Drop back to the sign-in
		// form with the email prefilled.
		email := m.inputs[2].Value()
		m.switchMode(ModeLogin)
		m.inputs[0].SetValue(email)
		m.infoText = "Account created. Sign in to continue."
		return m, nil

	case forgotResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.errText = api.ErrorDetail(msg.Err)
			return m, nil
		}
		m.switchMode(ModeLogin)
		m.infoText = msg.Message
		if m.infoText == "" {
			m.infoText = "If that address exists, a reset email is on the way."
		}
		return m, nil
	}

	return m, m.updateInputs(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.submitting {
		// Only allow bailing out of a hung request.
		if msg.String() == "ctrl+c" {
			return *m, tea.Quit
		}
		return *m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return *m, tea.Quit

	case "tab", "down":
		m.setFocus((m.focus + 1) % len(m.inputs))
		return *m, nil

	case "shift+tab", "up":
		m.setFocus((m.focus - 1 + len(m.inputs)) % len(m.inputs))
		return *m, nil

	case "enter":
		if m.focus < len(m.inputs)-1 {
			m.setFocus(m.focus + 1)
			return *m, nil
		}
		return m.submit()

	case "ctrl+t":
		if m.mode == ModeSignup {
			m.switchMode(ModeLogin)
		} else {
			m.switchMode(ModeSignup)
		}
		return *m, nil

	case "ctrl+r":
		m.switchMode(ModeForgot)
		return *m, nil

	case "esc":
		if m.mode != ModeLogin {
			m.switchMode(ModeLogin)
		}
		return *m, nil
	}

	return *m, m.updateInputs(msg)
}

// setFocus moves keyboard focus to input i.
func (m *Model) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[i].Focus()
}

// switchMode swaps the form and clears transient state.
func (m *Model) switchMode(mode Mode) {
	m.mode = mode
	m.errText = ""
	m.infoText = ""
	m.buildInputs()
}

// updateInputs forwards a message to the focused input.
func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

// =============================================================================
// SUBMISSION
// =============================================================================

// submit validates the form and fires the request for the current mode.
func (m *Model) submit() (Model, tea.Cmd) {
	m.errText = ""
	m.infoText = ""

	for i := range m.inputs {
		if strings.TrimSpace(m.inputs[i].Value()) == "" {
			m.errText = "All fields are required."
			m.setFocus(i)
			return *m, nil
		}
	}

	m.submitting = true

	switch m.mode {
	case ModeSignup:
		req := api.SignupRequest{
			FirstName: strings.TrimSpace(m.inputs[0].Value()),
			LastName:  strings.TrimSpace(m.inputs[1].Value()),
			Email:     strings.TrimSpace(m.inputs[2].Value()),
			Password:  m.inputs[3].Value(),
		}
		return *m, tea.Batch(m.spinner.Tick, signupCmd(m.store, req))

	case ModeForgot:
		email := strings.TrimSpace(m.inputs[0].Value())
		return *m, tea.Batch(m.spinner.Tick, forgotCmd(m.store, email))

	default:
		email := strings.TrimSpace(m.inputs[0].Value())
		password := m.inputs[1].Value()
		return *m, tea.Batch(m.spinner.Tick, loginCmd(m.store, email, password))
	}
}

func loginCmd(store *auth.Store, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		return loginResultMsg{Err: store.Login(ctx, email, password)}
	}
}

func signupCmd(store *auth.Store, req api.SignupRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		user, err := store.Signup(ctx, req)
		return signupResultMsg{User: user, Err: err}
	}
}

func forgotCmd(store *auth.Store, email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		ack, err := store.Client().ForgotPassword(ctx, email)
		msg := ""
		if ack != nil {
			msg = ack.Message
		}
		return forgotResultMsg{Message: msg, Err: err}
	}
}
