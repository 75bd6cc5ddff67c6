// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing and usage text for docchat.

package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdSignup
	CmdForgotPassword
	CmdResetPassword
	CmdUpload
	CmdAsk
	CmdChat
	CmdSessions
	CmdHistory
	CmdNewsletter
	CmdUpgrade
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool   // Output in JSON format
	BaseURL string // Override server base URL

	// Raw args remaining after the command name and global flags
	Raw []string
}

const usageText = `docchat - chat with your documents from the terminal

Docchat uploads a PDF to the server, then answers questions about it
with retrieval-augmented responses. Each answer carries the retrieval
log that produced it.

Usage:
  docchat                        Start the TUI (default)
  docchat login                  Sign in and store your token
  docchat logout                 Sign out and clear the stored token
  docchat whoami                 Show the signed-in account
  docchat signup                 Create an account
  docchat forgot-password EMAIL  Request a password reset email
  docchat reset-password TOKEN   Set a new password with a reset token
  docchat upload FILE            Upload a PDF, print the session ID
  docchat ask "question"         Ask a one-shot question
  docchat chat                   Interactive chat (REPL)
  docchat sessions [subcommand]  Server-side session management
  docchat history [subcommand]   Local conversation archive
  docchat newsletter EMAIL       Subscribe to the newsletter
  docchat upgrade [subcommand]   Manage the Pro upgrade
  docchat version                Show version information
  docchat help                   Show this help

Ask Command:
  docchat ask "question" --file doc.pdf   Upload first, then ask
  docchat ask "question" --session ID     Use an existing session
    --logs                                Print the retrieval log too

Chat Command:
  docchat chat --file doc.pdf             Upload first, then chat
  docchat chat --session ID               Resume an existing session
  In the REPL: /logs shows the last retrieval log, /reset discards
  the session, /quit exits.

Sessions Commands:
  docchat sessions list                   List sessions on the server
  docchat sessions show ID                Show one session
  docchat sessions delete ID --confirm    Delete a session
    --json                                Output in JSON format

History Commands (local archive):
  docchat history list                    List archived conversations
  docchat history show ID                 Print one conversation
  docchat history search QUERY            Search archived content
  docchat history export ID               Export as Markdown
    --output FILE                         Write to a file
  docchat history delete ID --confirm     Delete one conversation
  docchat history clear --confirm         Delete the whole archive

Upgrade Commands:
  docchat upgrade start                   Create a payment order
  docchat upgrade capture ORDER_ID        Capture an approved order
  docchat upgrade status ORDER_ID         Show order status

Global Flags:
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --json          Output in JSON format where supported
  --server URL    Override the configured server URL

Examples:
  docchat login
  docchat upload report.pdf
  docchat ask "What is the grand total?" --session sess_abc123
  docchat ask "Summarize this" --file report.pdf --logs
  docchat history search "invoice"

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("docchat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// Parse parses os.Args and returns the command and remaining args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments. Split out from Parse for tests.
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	args.Raw = remaining[1:]

	switch cmd {
	case "tui":
		return CmdTUI, args
	case "login", "signin":
		return CmdLogin, args
	case "logout", "signout":
		return CmdLogout, args
	case "whoami", "me":
		return CmdWhoami, args
	case "signup", "register":
		return CmdSignup, args
	case "forgot-password", "forgot":
		return CmdForgotPassword, args
	case "reset-password":
		return CmdResetPassword, args
	case "upload", "up":
		return CmdUpload, args
	case "ask":
		return CmdAsk, args
	case "chat":
		return CmdChat, args
	case "session", "sessions":
		return CmdSessions, args
	case "history", "archive":
		return CmdHistory, args
	case "newsletter", "subscribe":
		return CmdNewsletter, args
	case "upgrade", "pro":
		return CmdUpgrade, args
	case "version", "-v", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		// Unknown command. Keep it in Raw and fall back to the TUI.
		args.Raw = remaining
		return CmdTUI, args
	}
}

// parseGlobalFlags extracts global flags and returns remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	i := 0
	for i < len(argv) {
		arg := argv[i]

		switch arg {
		case "-q", "--quiet":
			args.Quiet = true
		case "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		case "--server":
			if i+1 < len(argv) {
				i++
				args.BaseURL = argv[i]
			}
		default:
			if strings.HasPrefix(arg, "--server=") {
				args.BaseURL = strings.TrimPrefix(arg, "--server=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, args
}

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		NewJSONResponse("version", data).Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
