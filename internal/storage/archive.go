// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrSessionNotFound is returned when a session is not in the archive.
	ErrSessionNotFound = errors.New("session not found in archive")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id  TEXT PRIMARY KEY,
	filename    TEXT NOT NULL,
	uploaded_at INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	turn_id    TEXT NOT NULL UNIQUE,
	session_id TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	log_index  INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id);
`

// =============================================================================
// ARCHIVED TYPES
// =============================================================================

// ArchivedSession is the listing row for one archived document session.
type ArchivedSession struct {
	SessionID  string    `json:"session_id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	TurnCount  int       `json:"turn_count"`
	Preview    string    `json:"preview"`
}

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive is the SQLite-backed local conversation archive. It satisfies
// the chat machine's archiver hook.
type Archive struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if needed) the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the archive database.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// SaveTurn records one turn against its session, creating the session
// row on first sight. Saving the same turn twice is a no-op.
func (a *Archive) SaveTurn(session model.DocumentSession, turn model.Turn) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	_, err = tx.Exec(`
		INSERT INTO sessions (session_id, filename, uploaded_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET updated_at = excluded.updated_at
	`, session.SessionID, session.Filename, session.UploadedAt.Unix(), now)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO turns (turn_id, session_id, role, content, log_index, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(turn_id) DO NOTHING
	`, turn.ID, session.SessionID, string(turn.Role), turn.Content, turn.LogIndex, turn.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}

	return tx.Commit()
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns all archived sessions, most recently active first.
func (a *Archive) List() ([]ArchivedSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rows, err := a.db.Query(`
		SELECT s.session_id, s.filename, s.uploaded_at, s.updated_at,
		       COUNT(t.seq),
		       COALESCE((
		           SELECT content FROM turns
		           WHERE session_id = s.session_id AND role = 'user'
		           ORDER BY seq LIMIT 1
		       ), '')
		FROM sessions s
		LEFT JOIN turns t ON t.session_id = s.session_id
		GROUP BY s.session_id
		ORDER BY s.updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []ArchivedSession
	for rows.Next() {
		var s ArchivedSession
		var uploaded, updated int64
		var preview string
		if err := rows.Scan(&s.SessionID, &s.Filename, &uploaded, &updated, &s.TurnCount, &preview); err != nil {
			return nil, err
		}
		s.UploadedAt = time.Unix(uploaded, 0)
		s.UpdatedAt = time.Unix(updated, 0)
		s.Preview = util.TruncateRunes(util.FirstLine(preview), 80)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Search returns archived sessions whose filename or any turn content
// matches the query, case-insensitive.
func (a *Archive) Search(query string) ([]ArchivedSession, error) {
	all, err := a.List()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}

	query = strings.ToLower(query)
	var results []ArchivedSession
	for _, s := range all {
		if strings.Contains(strings.ToLower(s.Filename), query) {
			results = append(results, s)
			continue
		}
		matched, err := a.sessionContains(s.SessionID, query)
		if err != nil {
			return nil, err
		}
		if matched {
			results = append(results, s)
		}
	}
	return results, nil
}

func (a *Archive) sessionContains(sessionID, loweredQuery string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rows, err := a.db.Query(`SELECT content FROM turns WHERE session_id = ?`, sessionID)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return false, err
		}
		if strings.Contains(strings.ToLower(content), loweredQuery) {
			return true, nil
		}
	}
	return false, rows.Err()
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// LoadTranscript returns the archived turns of a session in original
// submission order.
func (a *Archive) LoadTranscript(sessionID string) ([]model.Turn, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var exists int
	err := a.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE session_id = ?`, sessionID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrSessionNotFound
	}

	rows, err := a.db.Query(`
		SELECT turn_id, role, content, log_index, created_at
		FROM turns WHERE session_id = ? ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []model.Turn
	for rows.Next() {
		var t model.Turn
		var role string
		var created int64
		if err := rows.Scan(&t.ID, &role, &t.Content, &t.LogIndex, &created); err != nil {
			return nil, err
		}
		t.Role = model.Role(role)
		t.CreatedAt = time.Unix(created, 0)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a session and its turns from the archive.
func (a *Archive) Delete(sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	res, err := a.db.Exec(`DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Clear removes everything from the archive.
func (a *Archive) Clear() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.db.Exec(`DELETE FROM turns`); err != nil {
		return err
	}
	_, err := a.db.Exec(`DELETE FROM sessions`)
	return err
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders a session's archived transcript as Markdown.
func (a *Archive) ExportMarkdown(sessionID string) (string, error) {
	turns, err := a.LoadTranscript(sessionID)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	var filename string
	var uploaded int64
	err = a.db.QueryRow(`SELECT filename, uploaded_at FROM sessions WHERE session_id = ?`, sessionID).
		Scan(&filename, &uploaded)
	a.mu.Unlock()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("# " + filename + "\n\n")
	sb.WriteString("Session: " + sessionID + "\n\n")
	sb.WriteString("Uploaded: " + time.Unix(uploaded, 0).Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, turn := range turns {
		role := "**User**"
		if turn.Role == model.RoleAssistant {
			role = "**Assistant**"
		}
		sb.WriteString(role + " (" + turn.CreatedAt.Format("15:04") + "):\n\n")
		sb.WriteString(turn.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String(), nil
}
