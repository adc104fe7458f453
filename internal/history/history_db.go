// Package history persists playground and script sessions to SQLite.
// The API key never reaches this package.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/studiowebux/sttplay/internal/migrations"
	"github.com/studiowebux/sttplay/internal/types"
)

// startedAtFormat sorts lexically in UTC
const startedAtFormat = "2006-01-02T15:04:05.000Z07:00"

type Manager struct {
	db *sql.DB
}

func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// StartSession opens a new session and returns its id
func (m *Manager) StartSession(endpoint, language string) (string, error) {
	id := uuid.NewString()
	_, err := m.db.Exec(
		"INSERT INTO sessions (id, started_at, endpoint, language) VALUES (?, ?, ?, ?)",
		id,
		time.Now().UTC().Format(startedAtFormat),
		endpoint,
		language,
	)
	if err != nil {
		return "", fmt.Errorf("failed to start session: %w", err)
	}
	return id, nil
}

// Record appends an entry to a session
func (m *Manager) Record(sessionID string, entry types.LogEntry) error {
	_, err := m.db.Exec(`
		INSERT INTO entries (session_id, seq, kind, content, timestamp)
		SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?
		FROM entries WHERE session_id = ?
	`,
		sessionID,
		string(entry.Kind),
		entry.Content,
		entry.Timestamp,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to record entry: %w", err)
	}
	return nil
}

// Recorder returns a callback that records into sessionID, logging failures
// instead of returning them
func (m *Manager) Recorder(sessionID string) func(types.LogEntry) {
	return func(entry types.LogEntry) {
		if err := m.Record(sessionID, entry); err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("history record failed")
		}
	}
}

// ListSessions returns the most recent sessions first. limit <= 0 means all.
func (m *Manager) ListSessions(limit int) ([]types.SessionSummary, error) {
	query := `
		SELECT s.id, s.started_at, s.endpoint, COALESCE(s.language, ''), COUNT(e.id)
		FROM sessions s
		LEFT JOIN entries e ON e.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at DESC, s.rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []types.SessionSummary
	for rows.Next() {
		var s types.SessionSummary
		var startedAt string
		if err := rows.Scan(&s.ID, &startedAt, &s.Endpoint, &s.Language, &s.EntryCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.StartedAt = parseTimestamp(startedAt)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ResolveSessionID expands a unique id prefix to the full session id
func (m *Manager) ResolveSessionID(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("session id is empty")
	}

	// substr keeps % and _ literal, unlike LIKE
	rows, err := m.db.Query("SELECT id FROM sessions WHERE substr(id, 1, ?) = ? LIMIT 2", len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("no session matches %q", prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("session id %q is ambiguous", prefix)
	}
}

// Entries returns the entries of a session in recording order
func (m *Manager) Entries(sessionID string) ([]types.HistoryEntry, error) {
	rows, err := m.db.Query(`
		SELECT session_id, seq, kind, content, timestamp
		FROM entries
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	defer rows.Close()

	var entries []types.HistoryEntry
	for rows.Next() {
		var e types.HistoryEntry
		var kind string
		if err := rows.Scan(&e.SessionID, &e.Seq, &kind, &e.Content, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Kind = types.EntryKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (m *Manager) Clear() error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear history: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return tx.Commit()
}

func (m *Manager) GetCount() (int, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func parseTimestamp(value string) time.Time {
	parsed, err := time.Parse(startedAtFormat, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
