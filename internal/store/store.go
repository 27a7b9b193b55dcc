// Package store persists session transcripts and the applied-change audit
// trail in a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"codewright/internal/logging"
	"codewright/internal/types"
)

// Store wraps the SQLite database holding transcripts and audit entries.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	dbPath string
}

// SessionInfo summarizes one persisted session.
type SessionInfo struct {
	ID       string
	Turns    int
	LastSeen time.Time
}

// AuditEntry is one row of the applied-change trail.
type AuditEntry struct {
	SessionID   string
	ResourceKey string
	Applied     bool
	Detail      string
	At          time.Time
}

// New opens (or creates) the database at path and runs migrations.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("opened %s", path)
	return s, nil
}

func (s *Store) initialize() error {
	transcriptTable := `
	CREATE TABLE IF NOT EXISTS transcript (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_transcript_session ON transcript(session_id);
	`

	auditTable := `
	CREATE TABLE IF NOT EXISTS apply_audit (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		resource_key TEXT NOT NULL,
		applied INTEGER NOT NULL,
		detail TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_session ON apply_audit(session_id);
	`

	for _, table := range []string{transcriptTable, auditTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTurn appends one chat turn to a session's transcript.
func (s *Store) SaveTurn(sessionID string, turn types.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := turn.Time
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO transcript (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, string(turn.Role), turn.Content, at,
	)
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

// LoadTurns returns a session's transcript in insertion order.
func (s *Store) LoadTurns(sessionID string) ([]types.ChatTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT role, content, created_at FROM transcript WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}
	defer rows.Close()

	var turns []types.ChatTurn
	for rows.Next() {
		var (
			role, content string
			at            time.Time
		)
		if err := rows.Scan(&role, &content, &at); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, types.ChatTurn{Role: types.Role(role), Content: content, Time: at})
	}
	return turns, rows.Err()
}

// ClearSession drops a session's transcript. The audit trail is never
// cleared.
func (s *Store) ClearSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM transcript WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Sessions lists persisted sessions, most recent first.
func (s *Store) Sessions() ([]SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT session_id, COUNT(*), MAX(created_at)
		FROM transcript GROUP BY session_id ORDER BY MAX(created_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.Turns, &info.LastSeen); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, info)
	}
	return sessions, rows.Err()
}

// RecordApply appends one applied-change audit entry. Audit failures are
// logged, not propagated: the apply itself already happened.
func (s *Store) RecordApply(sessionID, resourceKey string, applied bool, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO apply_audit (session_id, resource_key, applied, detail) VALUES (?, ?, ?, ?)`,
		sessionID, resourceKey, boolToInt(applied), detail,
	)
	if err != nil {
		logging.StoreError("record apply %s: %v", resourceKey, err)
	}
}

// AuditTrail returns a session's applied-change entries in order.
func (s *Store) AuditTrail(sessionID string) ([]AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT session_id, resource_key, applied, detail, created_at
		 FROM apply_audit WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("load audit trail: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var (
			e       AuditEntry
			applied int
		)
		if err := rows.Scan(&e.SessionID, &e.ResourceKey, &applied, &e.Detail, &e.At); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Applied = applied != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
