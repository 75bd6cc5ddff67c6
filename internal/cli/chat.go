// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive document chat REPL.
//
// The REPL drives the same session state machine as the TUI, so turn
// ordering, log slots, and archiving behave identically in both.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/chat"
	"github.com/jeranaias/docchat-tui/internal/config"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive
// chat. Arrow keys navigate history.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with history stored under the config
// directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// HandleChat runs the interactive REPL. A session comes from --file
// (upload) or --session (resume).
func (a *App) HandleChat(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	parser := NewArgParser(args.Raw)

	machine := chat.NewMachine(a.Client)
	if a.Archive != nil {
		machine.SetArchiver(a.Archive)
	}

	if path := parser.Flag("file"); path != "" {
		ctx, cancel := a.requestContext()
		resp, err := a.Client.UploadFile(ctx, path)
		cancel()
		if err != nil {
			return NewCommandError("chat", "upload", "could not upload the document", err)
		}
		if err := machine.StartSession(resp); err != nil {
			return err
		}
	} else if id := parser.Flag("session"); id != "" {
		ctx, cancel := a.requestContext()
		info, err := a.Client.GetSession(ctx, id)
		cancel()
		if err != nil {
			return NewCommandError("chat", "resume", "could not load the session", err)
		}
		if err := machine.StartSession(sessionUpload(info)); err != nil {
			return err
		}
	} else {
		return NewUsageError("usage: docchat chat [--file doc.pdf | --session ID]")
	}

	doc := machine.Session()
	fmt.Println(TitleStyle.Render("docchat") + " " + ValueStyle.Render(doc.Filename))
	fmt.Println(DimStyle.Render("Commands: /logs last retrieval log, /reset discard session, /quit exit"))
	fmt.Println()

	cli := NewChatCLI()
	defer cli.Close()

	for {
		input, err := cli.ReadInput("> ")
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Println(DimStyle.Render("bye"))
				return nil
			}
			// io.EOF on ctrl+d
			return nil
		}

		input = strings.TrimSpace(input)
		switch {
		case input == "":
			continue
		case input == "/quit" || input == "/exit" || input == "/q":
			fmt.Println(DimStyle.Render("bye"))
			return nil
		case input == "/logs":
			a.printLastLog(machine)
			continue
		case input == "/reset":
			ctx, cancel := a.requestContext()
			err := machine.ResetSession(ctx)
			cancel()
			if err != nil {
				DisplayError(err)
				continue
			}
			fmt.Println(DimStyle.Render("Session cleared."))
			return nil
		}

		turn, err := machine.Submit(context.Background(), input)
		if err != nil {
			if errors.Is(err, chat.ErrEmptyInput) {
				continue
			}
			DisplayError(err)
			continue
		}

		fmt.Print(renderMarkdown(turn.Content))
		fmt.Println()
	}
}

// printLastLog shows the retrieval log of the latest assistant turn.
func (a *App) printLastLog(machine *chat.Machine) {
	turns := machine.Turns()
	for i := len(turns) - 1; i >= 0; i-- {
		turn := turns[i]
		if turn.IsUser() || !turn.HasLogIndex() {
			continue
		}
		if blob, ok := machine.LogAt(turn.LogIndex); ok {
			fmt.Println(TitleStyle.Render("Retrieval log"))
			fmt.Println(DimStyle.Render(blob))
		} else {
			fmt.Println(DimStyle.Render("The last answer produced no retrieval log."))
		}
		return
	}
	fmt.Println(DimStyle.Render("No answers yet."))
}

// sessionUpload adapts server session metadata to the upload shape the
// machine adopts sessions from.
func sessionUpload(info *api.SessionInfo) *api.UploadResponse {
	return &api.UploadResponse{
		SessionID:  info.SessionID,
		Filename:   info.Filename,
		Status:     "ready",
		UploadedAt: info.UploadedAt,
	}
}
