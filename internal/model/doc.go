// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for document-chat
// conversations: turns, the append-only transcript, the diagnostic log
// transcript, and the active document session handle.
//
// The containers here are deliberately dumb. Ordering and lifecycle rules
// (one in-flight exchange, reset semantics) live in internal/chat; this
// package only guarantees the structural invariants: transcripts are
// append-only and log indices are stable once assigned.
package model
