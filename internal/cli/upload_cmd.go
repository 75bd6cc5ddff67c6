// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/docchat-tui/internal/api"
)

// HandleUpload uploads a PDF and prints the session ID.
func (a *App) HandleUpload(args Args) error {
	parser := NewArgParser(args.Raw)
	path := parser.Positional(0)
	if path == "" {
		return NewUsageError("usage: docchat upload FILE")
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	resp, err := a.Client.UploadFile(ctx, path)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrNotPDF):
			return NewUsageError("only PDF files can be uploaded")
		case errors.Is(err, api.ErrFileTooLarge):
			return NewUsageError("%s is over the 10MB upload limit", path)
		}
		return NewCommandError("upload", "send file", "upload rejected", err)
	}

	if args.JSON {
		NewJSONResponse("upload", resp).Print()
		return nil
	}

	fmt.Println(SuccessStyle.Render("[OK]") + " Uploaded " + resp.Filename)
	fmt.Println(RenderLabel("Session") + ValueStyle.Render(resp.SessionID))
	if !args.Quiet {
		fmt.Println(DimStyle.Render(fmt.Sprintf("Ask about it: docchat ask \"...\" --session %s", resp.SessionID)))
	}
	return nil
}
