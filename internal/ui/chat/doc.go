// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the document chat view for the TUI.
//
// The view wraps the session state machine: it renders the transcript
// in a viewport, accepts input while a document session is live, and
// exposes the per-turn retrieval logs behind a toggle. Uploads and
// chat requests run as Bubble Tea commands so the UI never blocks.
package chat
