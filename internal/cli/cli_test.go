// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/storage"
)

// =============================================================================
// ARG PARSER TESTS
// =============================================================================

func TestArgParser_Subcommand(t *testing.T) {
	p := NewArgParser([]string{"list", "--json"})
	if p.Subcommand() != "list" {
		t.Errorf("Subcommand() = %q", p.Subcommand())
	}

	empty := NewArgParser(nil)
	if empty.Subcommand() != "" {
		t.Errorf("empty Subcommand() = %q", empty.Subcommand())
	}
}

func TestArgParser_FlagFormats(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		flag string
		want string
	}{
		{"space separated", []string{"--output", "out.md"}, "output", "out.md"},
		{"equals sign", []string{"--output=out.md"}, "output", "out.md"},
		{"short flag", []string{"-o", "out.md"}, "o", "out.md"},
		{"missing", []string{"list"}, "output", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.raw)
			if got := p.Flag(tt.flag); got != tt.want {
				t.Errorf("Flag(%q) = %q, want %q", tt.flag, got, tt.want)
			}
		})
	}
}

func TestArgParser_BoolFlags(t *testing.T) {
	p := NewArgParser([]string{"delete", "sess_1", "--confirm", "--json=false"})

	if !p.BoolFlag("confirm") {
		t.Error("BoolFlag(confirm) = false")
	}
	if p.BoolFlag("json") {
		t.Error("BoolFlag(json) should honor explicit =false")
	}
	if p.BoolFlag("missing") {
		t.Error("BoolFlag(missing) = true")
	}
}

func TestArgParser_Positionals(t *testing.T) {
	p := NewArgParser([]string{"search", "grand", "total", "--json"})

	if p.PositionalCount() != 3 {
		t.Fatalf("PositionalCount() = %d", p.PositionalCount())
	}
	if p.Positional(1) != "grand" {
		t.Errorf("Positional(1) = %q", p.Positional(1))
	}
	if p.Positional(9) != "" {
		t.Error("out of bounds Positional should be empty")
	}
	if got := p.PositionalFrom(1); len(got) != 2 || got[0] != "grand" {
		t.Errorf("PositionalFrom(1) = %v", got)
	}
}

func TestArgParser_FlagConsumesValue(t *testing.T) {
	// The value after --session must not leak into positionals.
	p := NewArgParser([]string{"what", "is", "this", "--session", "sess_1"})

	if p.Flag("session") != "sess_1" {
		t.Errorf("Flag(session) = %q", p.Flag("session"))
	}
	if p.PositionalCount() != 3 {
		t.Errorf("PositionalCount() = %d, flag value leaked", p.PositionalCount())
	}
}

// =============================================================================
// COMMAND PARSING TESTS
// =============================================================================

func TestParseArgs_Commands(t *testing.T) {
	tests := []struct {
		argv []string
		want Command
	}{
		{nil, CmdTUI},
		{[]string{"tui"}, CmdTUI},
		{[]string{"login"}, CmdLogin},
		{[]string{"signin"}, CmdLogin},
		{[]string{"logout"}, CmdLogout},
		{[]string{"whoami"}, CmdWhoami},
		{[]string{"signup"}, CmdSignup},
		{[]string{"forgot-password", "a@b.c"}, CmdForgotPassword},
		{[]string{"reset-password", "tok"}, CmdResetPassword},
		{[]string{"upload", "x.pdf"}, CmdUpload},
		{[]string{"ask", "hello"}, CmdAsk},
		{[]string{"chat"}, CmdChat},
		{[]string{"sessions", "list"}, CmdSessions},
		{[]string{"history"}, CmdHistory},
		{[]string{"newsletter", "a@b.c"}, CmdNewsletter},
		{[]string{"upgrade"}, CmdUpgrade},
		{[]string{"version"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{"bogus-command"}, CmdTUI},
	}

	for _, tt := range tests {
		cmd, _ := ParseArgs(tt.argv)
		if cmd != tt.want {
			t.Errorf("ParseArgs(%v) = %v, want %v", tt.argv, cmd, tt.want)
		}
	}
}

func TestParseArgs_GlobalFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{"--json", "sessions", "list", "--server", "http://example.com"})

	if cmd != CmdSessions {
		t.Fatalf("cmd = %v", cmd)
	}
	if !args.JSON {
		t.Error("JSON flag not parsed")
	}
	if args.BaseURL != "http://example.com" {
		t.Errorf("BaseURL = %q", args.BaseURL)
	}
	if len(args.Raw) != 1 || args.Raw[0] != "list" {
		t.Errorf("Raw = %v", args.Raw)
	}
}

func TestParseArgs_ServerEquals(t *testing.T) {
	_, args := ParseArgs([]string{"--server=http://localhost:9000", "whoami"})
	if args.BaseURL != "http://localhost:9000" {
		t.Errorf("BaseURL = %q", args.BaseURL)
	}
}

// =============================================================================
// EXIT CODE TESTS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", errors.New("boom"), ExitGeneralError},
		{"usage", NewUsageError("bad usage"), ExitUsageError},
		{"tty", &TTYRequiredError{}, ExitUsageError},
		{"unauthorized", api.ErrUnauthorized, ExitAuthError},
		{"wrapped unauthorized", NewCommandError("whoami", "fetch", "no", api.ErrUnauthorized), ExitAuthError},
		{"rate limited", api.ErrRateLimited, ExitNetworkError},
		{"not found archive", storage.ErrSessionNotFound, ExitNotFoundError},
		{"timeout", context.DeadlineExceeded, ExitTimeoutError},
		{"api 404", &api.APIError{Status: 404, Detail: "gone"}, ExitNotFoundError},
		{"api 500", &api.APIError{Status: 502, Detail: "bad gateway"}, ExitNetworkError},
		{"api 422", &api.APIError{Status: 422, Detail: "nope"}, ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

// =============================================================================
// PAYMENT PARSING TESTS
// =============================================================================

func TestApprovalURL(t *testing.T) {
	order := &api.PaymentOrder{
		OrderID: "ord_1",
		Order:   []byte(`{"status":"CREATED","links":[{"href":"https://pay.example/self","rel":"self"},{"href":"https://pay.example/approve","rel":"approve"}]}`),
	}

	if got := approvalURL(order); got != "https://pay.example/approve" {
		t.Errorf("approvalURL() = %q", got)
	}
	if got := orderStatus(order); got != "CREATED" {
		t.Errorf("orderStatus() = %q", got)
	}

	if approvalURL(nil) != "" {
		t.Error("nil order should have no approval URL")
	}
	if approvalURL(&api.PaymentOrder{Order: []byte("not json")}) != "" {
		t.Error("malformed order should have no approval URL")
	}
}
