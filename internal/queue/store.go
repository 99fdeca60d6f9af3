package queue

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Store persists job outcomes to Postgres, for batch runs that want a
// durable record beyond what Redis keeps after a task completes.
type Store struct {
	db *sql.DB
}

// OpenStore connects to Postgres at dsn and ensures the outcomes table
// exists.
func OpenStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("queue: opening postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("queue: pinging postgres: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS job_outcomes (
	job_id      TEXT PRIMARY KEY,
	succeeded   BOOLEAN NOT NULL,
	error       TEXT,
	finished_at TIMESTAMPTZ NOT NULL
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("queue: creating outcomes table: %w", err)
	}

	return &Store{db: db}, nil
}

// Record upserts an outcome, keyed by job ID.
func (s *Store) Record(ctx context.Context, o Outcome) error {
	const stmt = `
INSERT INTO job_outcomes (job_id, succeeded, error, finished_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (job_id) DO UPDATE
SET succeeded = EXCLUDED.succeeded, error = EXCLUDED.error, finished_at = EXCLUDED.finished_at`
	_, err := s.db.ExecContext(ctx, stmt, o.JobID, o.Succeeded, o.Error, o.FinishedAt)
	return err
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
