// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the document conversation state machine.
//
// A Machine owns one active document session at a time: the uploaded
// document's identity, the ordered transcript of user and assistant
// turns, and the per-turn diagnostic logs the server returns alongside
// answers. Exchanges are strictly serialized; a submission is rejected
// with ErrBusy while a previous one is still processing.
//
// Submission is split into Begin and Complete so a UI event loop can
// render the user's turn immediately and resolve the network call in
// the background. Submit composes the two for synchronous callers.
package chat
