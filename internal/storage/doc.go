// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local conversation archive for docchat.
//
// The archive is a SQLite database under ~/.docchat/ recording every
// turn of every document session the client completes. It exists purely
// for the user's own history: the server keeps its own session state,
// and nothing here is uploaded.
package storage
