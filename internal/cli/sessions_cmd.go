// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions_cmd.go - Server-side document session management.

package cli

import (
	"fmt"
)

// HandleSessions dispatches the sessions subcommands.
func (a *App) HandleSessions(args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "list", "ls", "l":
		return a.sessionsList(args, parser)
	case "show":
		return a.sessionsShow(args, parser)
	case "delete", "rm":
		return a.sessionsDelete(args, parser)
	default:
		return NewUsageError("unknown sessions subcommand %q (want list, show, or delete)", parser.Subcommand())
	}
}

func (a *App) sessionsList(args Args, parser *ArgParser) error {
	ctx, cancel := a.requestContext()
	defer cancel()

	list, err := a.Client.ListSessions(ctx)
	if err != nil {
		return NewCommandError("sessions", "list", "could not list sessions", err)
	}

	if args.JSON {
		NewJSONResponse("sessions.list", list).Print()
		return nil
	}

	if list.Count == 0 {
		fmt.Println(DimStyle.Render("No sessions on the server."))
		return nil
	}

	fmt.Println(TitleStyle.Render(fmt.Sprintf("Sessions (%d)", list.Count)))
	for _, s := range list.Sessions {
		fmt.Printf("%s  %s  %s\n",
			ValueStyle.Render(s.SessionID),
			ValueStyle.Render(s.Filename),
			DimStyle.Render(s.UploadedAt))
	}
	return nil
}

func (a *App) sessionsShow(args Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return NewUsageError("usage: docchat sessions show ID")
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	info, err := a.Client.GetSession(ctx, id)
	if err != nil {
		return NewCommandError("sessions", "show", "could not load the session", err)
	}

	if args.JSON {
		NewJSONResponse("sessions.show", info).Print()
		return nil
	}

	fmt.Println(TitleStyle.Render("Session"))
	fmt.Println(RenderLabel("ID") + ValueStyle.Render(info.SessionID))
	fmt.Println(RenderLabel("Document") + ValueStyle.Render(info.Filename))
	fmt.Println(RenderLabel("Uploaded") + ValueStyle.Render(info.UploadedAt))
	if info.FileSize > 0 {
		fmt.Println(RenderLabel("Size") + ValueStyle.Render(fmt.Sprintf("%d bytes", info.FileSize)))
	}
	return nil
}

func (a *App) sessionsDelete(args Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return NewUsageError("usage: docchat sessions delete ID --confirm")
	}
	if err := confirmFlag(parser, "delete session "+id); err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	resp, err := a.Client.DeleteSession(ctx, id)
	if err != nil {
		return NewCommandError("sessions", "delete", "could not delete the session", err)
	}

	if args.JSON {
		NewJSONResponse("sessions.delete", resp).Print()
		return nil
	}
	fmt.Println(SuccessStyle.Render("[OK]") + " Deleted session " + id)
	return nil
}
