// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/ui/styles"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the bottom status line: session state on the left,
// key shortcuts on the right.
type StatusBar struct {
	theme *styles.Theme
}

// NewStatusBar creates a status bar renderer.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme}
}

// Shortcut is one key hint shown in the bar.
type Shortcut struct {
	Key  string
	Desc string
}

// State is the status bar's input.
type State struct {
	// Filename of the loaded document ("" = none)
	Filename string
	// UserEmail of the signed-in user
	UserEmail string
	// Busy indicates an exchange is in flight
	Busy bool
	// Shortcuts shown on the right edge
	Shortcuts []Shortcut
}

// Render renders the status bar at the given width.
func (b *StatusBar) Render(state State, width int) string {
	var left strings.Builder

	if state.Busy {
		left.WriteString(b.theme.StatusBusy.Render("thinking"))
	} else if state.Filename != "" {
		left.WriteString(b.theme.StatusReady.Render("ready"))
	} else {
		left.WriteString(b.theme.ShortcutDesc.Render("no document"))
	}

	if state.Filename != "" {
		left.WriteString("  ")
		left.WriteString(util.TruncateWidth(state.Filename, 30))
	}
	if state.UserEmail != "" {
		left.WriteString("  ")
		left.WriteString(b.theme.ShortcutDesc.Render(state.UserEmail))
	}

	var right strings.Builder
	for i, s := range state.Shortcuts {
		if i > 0 {
			right.WriteString("  ")
		}
		right.WriteString(b.theme.ShortcutKey.Render(s.Key))
		right.WriteString(" ")
		right.WriteString(b.theme.ShortcutDesc.Render(s.Desc))
	}

	leftStr := left.String()
	rightStr := right.String()

	gap := width - lipgloss.Width(leftStr) - lipgloss.Width(rightStr) - 2
	if gap < 1 {
		gap = 1
	}

	return b.theme.StatusBar.MaxWidth(width).Render(
		leftStr + strings.Repeat(" ", gap) + rightStr,
	)
}
