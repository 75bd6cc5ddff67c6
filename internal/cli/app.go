// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/auth"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/storage"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// App bundles the dependencies every command handler needs. main
// builds one and routes commands to its methods.
type App struct {
	Config *config.Config
	Client *api.Client
	Creds  auth.CredentialStore

	// Archive is nil when local archiving is disabled in config.
	Archive *storage.Archive
}

// requestContext returns a context bounded by the configured server
// timeout.
func (a *App) requestContext() (context.Context, context.CancelFunc) {
	timeout := 60 * time.Second
	if a.Config != nil && a.Config.Server.TimeoutSecs > 0 {
		timeout = time.Duration(a.Config.Server.TimeoutSecs) * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// archiveExchange records a question/answer pair in the local archive.
// Failures are logged, never surfaced: archiving is best effort.
func (a *App) archiveExchange(sessionID, filename, question, answer string) {
	if a.Archive == nil || sessionID == "" {
		return
	}
	if filename == "" {
		filename = sessionID
	}
	doc := model.DocumentSession{
		SessionID:  sessionID,
		Filename:   filename,
		UploadedAt: time.Now(),
	}
	for _, turn := range []model.Turn{
		model.NewUserTurn(question, model.NoLog),
		model.NewAssistantTurn(answer, model.NoLog),
	} {
		if err := a.Archive.SaveTurn(doc, turn); err != nil {
			util.DebugLog("archive save failed: %v", err)
			return
		}
	}
}

// promptLine reads one line of input with a visible prompt.
func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// confirmFlag enforces the --confirm convention for destructive
// subcommands.
func confirmFlag(parser *ArgParser, what string) error {
	if parser.BoolFlag("confirm") {
		return nil
	}
	return NewUsageError("refusing to %s without --confirm", what)
}

// printAck prints a server acknowledgement, falling back to a default
// message when the server sent none.
func printAck(ack *api.Acknowledgement, fallback string) {
	msg := fallback
	if ack != nil && ack.Message != "" {
		msg = ack.Message
	}
	fmt.Println(SuccessStyle.Render("[OK]") + " " + msg)
}
