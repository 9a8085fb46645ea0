// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records every topic attempt in a SQLite database.
// The record is informational: completion is decided by the archive, never
// by this database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-builder/pkg/types"
)

// Store manages the attempt history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			topic_id TEXT NOT NULL,
			subject TEXT,
			topic TEXT,
			status TEXT NOT NULL,
			detail TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_topic_id ON attempts(topic_id)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_run_id ON attempts(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends one attempt.
func (s *Store) Record(ctx context.Context, a types.Attempt) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (run_id, topic_id, subject, topic, status, detail, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.RunID, a.TopicID, a.Subject, a.Topic, string(a.Status), a.Detail,
		a.StartedAt.UTC().Format(time.RFC3339Nano), a.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording attempt for %s: %w", a.TopicID, err)
	}
	return nil
}

// TopicSummary aggregates the attempts made for one topic.
type TopicSummary struct {
	Latest   types.Attempt `json:"latest" yaml:"latest"`
	Attempts int           `json:"attempts" yaml:"attempts"`
	Failures int           `json:"failures" yaml:"failures"`
}

// Latest returns, for every topic with at least one attempt, its most
// recent attempt plus attempt and failure counts, ordered by topic id.
func (s *Store) Latest(ctx context.Context) ([]TopicSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.run_id, a.topic_id, a.subject, a.topic, a.status, a.detail, a.started_at, a.finished_at,
		       c.attempts, c.failures
		FROM attempts a
		JOIN (
			SELECT topic_id,
			       MAX(rowid) AS last_rowid,
			       COUNT(*) AS attempts,
			       SUM(CASE WHEN status NOT IN (?, ?) THEN 1 ELSE 0 END) AS failures
			FROM attempts
			GROUP BY topic_id
		) c ON a.rowid = c.last_rowid
		ORDER BY a.topic_id`,
		string(types.AttemptArchived), string(types.AttemptSkipped))
	if err != nil {
		return nil, fmt.Errorf("querying latest attempts: %w", err)
	}
	defer rows.Close()

	var out []TopicSummary
	for rows.Next() {
		var ts TopicSummary
		a, err := scanAttempt(rows, &ts.Attempts, &ts.Failures)
		if err != nil {
			return nil, err
		}
		ts.Latest = a
		out = append(out, ts)
	}
	return out, rows.Err()
}

// ForTopic returns every attempt for one topic, oldest first.
func (s *Store) ForTopic(ctx context.Context, topicID string) ([]types.Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, topic_id, subject, topic, status, detail, started_at, finished_at
		FROM attempts WHERE topic_id = ? ORDER BY rowid`, topicID)
	if err != nil {
		return nil, fmt.Errorf("querying attempts for %s: %w", topicID, err)
	}
	defer rows.Close()

	var out []types.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// scanAttempt reads the attempt columns, followed by any extra destinations.
func scanAttempt(rows *sql.Rows, extra ...any) (types.Attempt, error) {
	var (
		a                 types.Attempt
		subject, topic    sql.NullString
		detail            sql.NullString
		status            string
		started, finished string
	)
	dest := []any{&a.RunID, &a.TopicID, &subject, &topic, &status, &detail, &started, &finished}
	dest = append(dest, extra...)
	if err := rows.Scan(dest...); err != nil {
		return types.Attempt{}, fmt.Errorf("scanning attempt: %w", err)
	}

	a.Subject = subject.String
	a.Topic = topic.String
	a.Detail = detail.String
	a.Status = types.AttemptStatus(status)

	var err error
	if a.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return types.Attempt{}, fmt.Errorf("parsing started_at: %w", err)
	}
	if a.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return types.Attempt{}, fmt.Errorf("parsing finished_at: %w", err)
	}
	return a, nil
}
