// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "fmt"

// HandleNewsletter subscribes an email address to the newsletter.
func (a *App) HandleNewsletter(args Args) error {
	parser := NewArgParser(args.Raw)
	email := parser.Positional(0)
	if email == "" {
		return NewUsageError("usage: docchat newsletter EMAIL")
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	resp, err := a.Client.SubscribeNewsletter(ctx, email)
	if err != nil {
		return NewCommandError("newsletter", "subscribe", "subscription failed", err)
	}

	if args.JSON {
		NewJSONResponse("newsletter", resp).Print()
		return nil
	}

	msg := resp.Message
	if msg == "" {
		msg = "Subscribed."
	}
	if resp.Success {
		fmt.Println(SuccessStyle.Render("[OK]") + " " + msg)
	} else {
		fmt.Println(WarningStyle.Render("[!]") + " " + msg)
	}
	return nil
}
