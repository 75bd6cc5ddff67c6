// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question answering against a document session.

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer is the shared glamour renderer for answer output.
var markdownRenderer *glamour.TermRenderer

func initMarkdownRenderer() {
	if markdownRenderer != nil {
		return
	}
	wrap := GetTerminalWidth()
	if wrap > 100 {
		wrap = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return
	}
	markdownRenderer = r
}

// renderMarkdown renders markdown for the terminal, falling back to
// the raw text when glamour is unavailable or output is piped.
func renderMarkdown(content string) string {
	if !IsStdoutTTY() {
		return content
	}
	initMarkdownRenderer()
	if markdownRenderer == nil {
		return content
	}
	out, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

// HandleAsk asks a single question. The session comes from --session,
// or from uploading --file first.
func (a *App) HandleAsk(args Args) error {
	parser := NewArgParser(args.Raw)

	question := strings.Join(collectQuestion(parser), " ")
	if question == "" {
		return NewUsageError("usage: docchat ask \"question\" [--file doc.pdf | --session ID]")
	}

	sessionID := parser.Flag("session")
	filename := ""

	if path := parser.Flag("file"); path != "" {
		ctx, cancel := a.requestContext()
		resp, err := a.Client.UploadFile(ctx, path)
		cancel()
		if err != nil {
			return NewCommandError("ask", "upload", "could not upload the document", err)
		}
		sessionID = resp.SessionID
		filename = resp.Filename
		if !args.Quiet {
			fmt.Println(DimStyle.Render("Uploaded " + resp.Filename + " (session " + resp.SessionID + ")"))
		}
	}

	if sessionID == "" {
		return NewUsageError("no session: pass --session ID or --file doc.pdf")
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	resp, err := a.Client.Chat(ctx, sessionID, question)
	if err != nil {
		return NewCommandError("ask", "chat", "the question failed", err)
	}

	if args.JSON {
		NewJSONResponse("ask", resp).Print()
		return nil
	}

	fmt.Print(renderMarkdown(resp.Response))

	if parser.BoolFlag("logs") {
		fmt.Println()
		if resp.HasLogs() {
			fmt.Println(TitleStyle.Render("Retrieval log"))
			fmt.Println(DimStyle.Render(*resp.Logs))
		} else {
			fmt.Println(DimStyle.Render("No retrieval log for this answer."))
		}
	}

	a.archiveExchange(sessionID, filename, question, resp.Response)
	return nil
}

// collectQuestion gathers the positional words that form the question,
// skipping flag values that ArgParser already consumed.
func collectQuestion(parser *ArgParser) []string {
	return parser.PositionalFrom(0)
}
