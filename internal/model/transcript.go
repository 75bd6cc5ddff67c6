// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// DOCUMENT SESSION
// =============================================================================

// DocumentSession is the server-side handle to an uploaded document.
// Exactly one may be active in the client at a time.
type DocumentSession struct {
	SessionID  string    `json:"session_id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the ordered, append-only conversation history for the
// active document session. Turns are never reordered or removed; the
// container is reset wholesale when a new session starts.
type Transcript struct {
	turns []Turn
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{turns: make([]Turn, 0)}
}

// Append adds a turn to the end of the transcript.
func (t *Transcript) Append(turn Turn) {
	t.turns = append(t.turns, turn)
}

// Turns returns a copy of the turn slice. Mutating the copy does not
// affect the transcript.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// At returns the turn at index i.
func (t *Transcript) At(i int) (Turn, bool) {
	if i < 0 || i >= len(t.turns) {
		return Turn{}, false
	}
	return t.turns[i], true
}

// Last returns the most recent turn.
func (t *Transcript) Last() (Turn, bool) {
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// IsEmpty reports whether the transcript has no turns.
func (t *Transcript) IsEmpty() bool {
	return len(t.turns) == 0
}

// Reset discards all turns.
func (t *Transcript) Reset() {
	t.turns = t.turns[:0]
}

// =============================================================================
// LOG TRANSCRIPT
// =============================================================================

// LogTranscript is the side-channel store of diagnostic text, one blob
// per completed exchange that returned log data. Indices are stable once
// assigned so Turn.LogIndex references stay valid for the life of the
// session: entries are never reordered or removed, only appended.
type LogTranscript struct {
	entries []string
}

// NewLogTranscript creates an empty log transcript.
func NewLogTranscript() *LogTranscript {
	return &LogTranscript{entries: make([]string, 0)}
}

// Append stores a log blob and returns its stable index.
func (l *LogTranscript) Append(blob string) int {
	l.entries = append(l.entries, blob)
	return len(l.entries) - 1
}

// At returns the log blob at index i. The boolean is the presence check
// every consumer must make before rendering: a turn's reserved index may
// point one past the end when the server returned no log data.
func (l *LogTranscript) At(i int) (string, bool) {
	if i < 0 || i >= len(l.entries) {
		return "", false
	}
	return l.entries[i], true
}

// Len returns the number of stored log blobs. It is also the index the
// next accepted exchange reserves.
func (l *LogTranscript) Len() int {
	return len(l.entries)
}

// Entries returns a copy of all log blobs, oldest first.
func (l *LogTranscript) Entries() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Reset discards all entries.
func (l *LogTranscript) Reset() {
	l.entries = l.entries[:0]
}
