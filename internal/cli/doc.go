// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the docchat command line interface.
//
// Commands fall into three groups: account management (login, logout,
// signup, whoami, password reset), document chat (upload, ask, chat,
// sessions, history), and everything else (newsletter, upgrade,
// version, help). Running docchat with no command starts the TUI.
//
// Handlers always return errors instead of printing and swallowing
// them; main maps the error to an exit code via GetExitCode.
package cli
