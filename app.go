// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/auth"
	session "github.com/jeranaias/docchat-tui/internal/chat"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/ui/chat"
	"github.com/jeranaias/docchat-tui/internal/ui/login"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// =============================================================================
// VIEW ROUTING
// =============================================================================

// route identifies which view the app is showing.
type route int

const (
	routeLoading route = iota // Restoring the persisted session
	routeLogin                // Authentication forms
	routeChat                 // Document chat
)

// authSettledMsg reports the outcome of the startup session restore.
type authSettledMsg struct{}

// authChangedMsg is emitted whenever the auth store's state changes,
// including forced logouts from 401 responses mid-flight.
type authChangedMsg struct{}

// =============================================================================
// APP MODEL
// =============================================================================

// appModel is the root Bubble Tea model. It owns view routing: the
// loading route runs exactly once at startup and exits one way into
// login or chat; after that an authenticated user sees chat and an
// unauthenticated one sees login.
type appModel struct {
	theme   *styles.Theme
	store   *auth.Store
	machine *session.Machine
	cfg     *config.Config

	route route
	login login.Model
	chat  chat.Model

	// Auth change notifications arrive on a channel so callbacks fired
	// from HTTP goroutines surface as Bubble Tea messages.
	authEvents chan struct{}

	width  int
	height int
}

func newAppModel(store *auth.Store, machine *session.Machine, cfg *config.Config) appModel {
	theme := styles.NewTheme()

	app := appModel{
		theme:      theme,
		store:      store,
		machine:    machine,
		cfg:        cfg,
		route:      routeLoading,
		login:      login.New(store, theme),
		chat:       chat.New(machine, store.Client(), store, theme, cfg),
		authEvents: make(chan struct{}, 8),
	}

	store.OnChange(func() {
		select {
		case app.authEvents <- struct{}{}:
		default:
		}
	})

	return app
}

// Init kicks off the session restore and starts listening for auth
// changes.
func (m appModel) Init() tea.Cmd {
	return tea.Batch(
		m.restoreSessionCmd(),
		m.waitForAuthEvent(),
		m.login.Init(),
		m.chat.Init(),
	)
}

// restoreSessionCmd validates any persisted token against the server.
func (m appModel) restoreSessionCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		m.store.Initialize(ctx)
		return authSettledMsg{}
	}
}

// waitForAuthEvent blocks on the next auth change notification.
func (m appModel) waitForAuthEvent() tea.Cmd {
	return func() tea.Msg {
		<-m.authEvents
		return authChangedMsg{}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		var loginCmd, chatCmd tea.Cmd
		m.login, loginCmd = m.login.Update(msg)
		m.chat, chatCmd = m.chat.Update(msg)
		return m, tea.Batch(loginCmd, chatCmd)

	case authSettledMsg:
		// One-way exit from the loading route.
		if m.store.IsAuthenticated() {
			m.route = routeChat
		} else {
			m.route = routeLogin
		}
		return m, nil

	case authChangedMsg:
		cmd := m.waitForAuthEvent()
		if m.route == routeLoading {
			// Initialize has not settled yet. Stay put.
			return m, cmd
		}
		if !m.store.IsAuthenticated() && m.route == routeChat {
			// Forced logout: a 401 cleared the credential mid-flight.
			var loginCmd tea.Cmd
			m, loginCmd = m.resetToLogin()
			return m, tea.Batch(cmd, loginCmd)
		}
		return m, cmd

	case login.AuthenticatedMsg:
		m.route = routeChat
		return m, nil

	case chat.SignOutMsg:
		m.store.Logout()
		return m.resetToLogin()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.route {
	case routeLogin:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	case routeChat:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}
	return m, nil
}

// resetToLogin tears down everything tied to the signed-out user: the
// document session (including any exchange still in flight) and the
// chat view's transcript rendering, then presents a fresh login form.
// The credential itself is cleared by the caller (Logout or the 401
// path) before this runs.
func (m appModel) resetToLogin() (appModel, tea.Cmd) {
	m.machine.Clear()

	m.route = routeLogin
	m.login = login.New(m.store, m.theme)
	m.login.SetSize(m.width, m.height)
	m.chat = chat.New(m.machine, m.store.Client(), m.store, m.theme, m.cfg)

	var chatCmd tea.Cmd
	if m.width > 0 {
		m.chat, chatCmd = m.chat.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	}
	return m, tea.Batch(m.login.Init(), m.chat.Init(), chatCmd)
}

// =============================================================================
// VIEW
// =============================================================================

func (m appModel) View() string {
	switch m.route {
	case routeLogin:
		return m.login.View()
	case routeChat:
		return m.chat.View()
	default:
		return m.theme.WelcomeInfo.Render("Restoring session...")
	}
}
