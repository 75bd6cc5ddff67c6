// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/api"
	session "github.com/jeranaias/docchat-tui/internal/chat"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// uploadCmd uploads the PDF at path and reports the result.
func uploadCmd(client *api.Client, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := client.UploadFile(ctx, path)
		return uploadResultMsg{
			Filename: filepath.Base(path),
			Resp:     resp,
			Err:      err,
		}
	}
}

// chatCmd sends a question for the current session and reports the
// result. The machine's Begin must have been called first so the user
// turn and log slot are already recorded.
func chatCmd(client *api.Client, sessionID, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := client.Chat(ctx, sessionID, text)
		return chatResultMsg{Resp: resp, Err: err}
	}
}

// resetCmd discards the current session on the server and locally.
func resetCmd(machine *session.Machine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		return resetResultMsg{Err: machine.ResetSession(ctx)}
	}
}

// toastTickCmd schedules the next toast expiry check.
func toastTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}
