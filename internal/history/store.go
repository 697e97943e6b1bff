// Package history records authoring sessions in a local SQLite database so
// past runs can be reviewed: what was asked, how many attempts the document
// took, and where it landed.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Outcome is the terminal result of a session
type Outcome string

const (
	OutcomeWritten   Outcome = "written"
	OutcomeAborted   Outcome = "aborted"
	OutcomeFailed    Outcome = "failed"
	OutcomeDiscarded Outcome = "discarded"
)

// Record is one completed authoring session
type Record struct {
	ID             int64
	SessionID      string
	Intent         string
	SkillName      string
	QuestionsAsked int
	Attempts       int
	Outcome        Outcome
	OutputPath     string
	InputTokens    int64
	OutputTokens   int64
	CreatedAt      time.Time
}

// Store is a SQLite-backed session log
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens (creating if needed) the session log at the given path
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &Store{db: db}

	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id       TEXT NOT NULL UNIQUE,
			intent           TEXT NOT NULL,
			skill_name       TEXT,
			questions_asked  INTEGER NOT NULL DEFAULT 0,
			attempts         INTEGER NOT NULL DEFAULT 0,
			outcome          TEXT NOT NULL,
			output_path      TEXT,
			input_tokens     INTEGER NOT NULL DEFAULT 0,
			output_tokens    INTEGER NOT NULL DEFAULT 0,
			created_at       TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
		CREATE INDEX IF NOT EXISTS idx_sessions_outcome ON sessions(outcome);
	`)
	return err
}

// Save appends one session record
func (s *Store) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (session_id, intent, skill_name, questions_asked, attempts,
			outcome, output_path, input_tokens, output_tokens, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.SessionID, rec.Intent, rec.SkillName, rec.QuestionsAsked, rec.Attempts,
		string(rec.Outcome), rec.OutputPath, rec.InputTokens, rec.OutputTokens,
		createdAt.Format(time.RFC3339))
	return err
}

// Get returns the record for a session id
func (s *Store) Get(sessionID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, session_id, intent, skill_name, questions_asked, attempts,
			outcome, output_path, input_tokens, output_tokens, created_at
		FROM sessions
		WHERE session_id = ?
	`, sessionID)

	return scanRecord(row)
}

// List returns the most recent sessions, newest first
func (s *Store) List(limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, session_id, intent, skill_name, questions_asked, attempts,
			outcome, output_path, input_tokens, output_tokens, created_at
		FROM sessions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var skillName, outputPath sql.NullString
	var outcome, createdAt string

	err := row.Scan(&rec.ID, &rec.SessionID, &rec.Intent, &skillName,
		&rec.QuestionsAsked, &rec.Attempts, &outcome, &outputPath,
		&rec.InputTokens, &rec.OutputTokens, &createdAt)
	if err != nil {
		return nil, err
	}

	if skillName.Valid {
		rec.SkillName = skillName.String
	}
	if outputPath.Valid {
		rec.OutputPath = outputPath.String
	}
	rec.Outcome = Outcome(outcome)
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = t
	}

	return &rec, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
