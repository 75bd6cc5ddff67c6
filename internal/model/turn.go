// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/docchat-tui/internal/util"
)

// Role identifies the author of a turn.
type Role string

const (
	// RoleUser is a message typed by the user.
	RoleUser Role = "user"
	// RoleAssistant is a reply from the service, including error replies
	// rendered as assistant bubbles.
	RoleAssistant Role = "assistant"
)

// NoLog marks a turn that has no associated diagnostic log entry.
// A non-negative LogIndex is only a candidate reference: consumers must
// confirm presence via LogTranscript.At before rendering a log panel,
// because the reserved slot is never filled when the server returns no
// log data for the exchange.
const NoLog = -1

// Turn is one message in the visible conversation.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	LogIndex  int       `json:"log_index"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserTurn creates a user turn carrying the reserved log slot for the
// exchange it opens.
func NewUserTurn(content string, logIndex int) Turn {
	return Turn{
		ID:        newTurnID(),
		Role:      RoleUser,
		Content:   content,
		LogIndex:  logIndex,
		CreatedAt: time.Now(),
	}
}

// NewAssistantTurn creates an assistant turn referencing the log slot
// reserved by the user turn that started the exchange.
func NewAssistantTurn(content string, logIndex int) Turn {
	return Turn{
		ID:        newTurnID(),
		Role:      RoleAssistant,
		Content:   content,
		LogIndex:  logIndex,
		CreatedAt: time.Now(),
	}
}

// NewErrorTurn creates an assistant turn for a failed exchange. Error
// turns never reference the log transcript.
func NewErrorTurn(content string) Turn {
	return Turn{
		ID:        newTurnID(),
		Role:      RoleAssistant,
		Content:   content,
		LogIndex:  NoLog,
		CreatedAt: time.Now(),
	}
}

// HasLogIndex reports whether the turn carries a log slot reference.
// True does not imply the slot holds data; check the transcript.
func (t Turn) HasLogIndex() bool {
	return t.LogIndex != NoLog
}

// Preview returns a single-line preview of the turn content.
func (t Turn) Preview(maxRunes int) string {
	return util.TruncateRunes(util.FirstLine(t.Content), maxRunes)
}

// IsUser reports whether the turn was authored by the user.
func (t Turn) IsUser() bool {
	return t.Role == RoleUser
}

func newTurnID() string {
	return "turn_" + uuid.NewString()
}
