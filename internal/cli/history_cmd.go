// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - Local conversation archive management.
//
// History commands never talk to the server; they read the SQLite
// archive that the TUI and REPL write as conversations happen.

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/docchat-tui/internal/storage"
)

// HandleHistory dispatches the history subcommands.
func (a *App) HandleHistory(args Args) error {
	if a.Archive == nil {
		return NewUsageError("local archiving is disabled; enable storage.archive_enabled in the config")
	}

	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "list", "ls", "l":
		return a.historyList(args, parser)
	case "show":
		return a.historyShow(args, parser)
	case "search":
		return a.historySearch(args, parser)
	case "export":
		return a.historyExport(args, parser)
	case "delete", "rm":
		return a.historyDelete(args, parser)
	case "clear":
		return a.historyClear(args, parser)
	default:
		return NewUsageError("unknown history subcommand %q (want list, show, search, export, delete, or clear)", parser.Subcommand())
	}
}

func (a *App) historyList(args Args, parser *ArgParser) error {
	sessions, err := a.Archive.List()
	if err != nil {
		return NewCommandError("history", "list", "could not read the archive", err)
	}
	return a.printArchivedSessions(args, sessions, "No archived conversations yet.")
}

func (a *App) historySearch(args Args, parser *ArgParser) error {
	query := parser.Positional(1)
	if query == "" {
		return NewUsageError("usage: docchat history search QUERY")
	}

	sessions, err := a.Archive.Search(query)
	if err != nil {
		return NewCommandError("history", "search", "search failed", err)
	}
	return a.printArchivedSessions(args, sessions, "No matches.")
}

func (a *App) printArchivedSessions(args Args, sessions []storage.ArchivedSession, emptyMsg string) error {
	if args.JSON {
		NewJSONResponse("history", sessions).Print()
		return nil
	}

	if len(sessions) == 0 {
		fmt.Println(DimStyle.Render(emptyMsg))
		return nil
	}

	for _, s := range sessions {
		fmt.Printf("%s  %s  %s\n",
			ValueStyle.Render(s.SessionID),
			ValueStyle.Render(s.Filename),
			DimStyle.Render(fmt.Sprintf("%d turns, %s", s.TurnCount, s.UpdatedAt.Format(time.DateOnly))))
		if s.Preview != "" {
			fmt.Println("  " + DimStyle.Render(s.Preview))
		}
	}
	return nil
}

func (a *App) historyShow(args Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return NewUsageError("usage: docchat history show ID")
	}

	turns, err := a.Archive.LoadTranscript(id)
	if err != nil {
		return NewCommandError("history", "show", "could not load the conversation", err)
	}

	if args.JSON {
		NewJSONResponse("history.show", turns).Print()
		return nil
	}

	for _, turn := range turns {
		if turn.IsUser() {
			fmt.Println(TitleStyle.Render("You"))
			fmt.Println(ValueStyle.Render(turn.Content))
		} else {
			fmt.Println(TitleStyle.Render("Assistant"))
			fmt.Print(renderMarkdown(turn.Content))
		}
		fmt.Println()
	}
	return nil
}

func (a *App) historyExport(args Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return NewUsageError("usage: docchat history export ID [--output FILE]")
	}

	md, err := a.Archive.ExportMarkdown(id)
	if err != nil {
		return NewCommandError("history", "export", "could not export the conversation", err)
	}

	if out := parser.Flag("output"); out != "" {
		if err := os.WriteFile(out, []byte(md), 0600); err != nil {
			return NewCommandError("history", "export", "could not write "+out, err)
		}
		fmt.Println(SuccessStyle.Render("[OK]") + " Exported to " + out)
		return nil
	}

	fmt.Print(md)
	return nil
}

func (a *App) historyDelete(args Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return NewUsageError("usage: docchat history delete ID --confirm")
	}
	if err := confirmFlag(parser, "delete conversation "+id); err != nil {
		return err
	}

	if err := a.Archive.Delete(id); err != nil {
		return NewCommandError("history", "delete", "could not delete the conversation", err)
	}
	fmt.Println(SuccessStyle.Render("[OK]") + " Deleted " + id)
	return nil
}

func (a *App) historyClear(args Args, parser *ArgParser) error {
	if err := confirmFlag(parser, "clear the whole archive"); err != nil {
		return err
	}

	if err := a.Archive.Clear(); err != nil {
		return NewCommandError("history", "clear", "could not clear the archive", err)
	}
	fmt.Println(SuccessStyle.Render("[OK]") + " Archive cleared")
	return nil
}
