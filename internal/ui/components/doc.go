// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides shared UI components for the docchat TUI:
// the status bar, non-blocking toast notifications, and the expandable
// per-answer diagnostic log panel.
package components
