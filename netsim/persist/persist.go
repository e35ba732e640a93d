// Package persist records completed simulation runs to a Postgres run
// ledger using database/sql and lib/pq directly, rather than an ORM —
// grounded on Ali-Mohammed-open-source-radius's tests/database.go,
// which opens Postgres the same way for its own test fixtures. Optional:
// wired only when the CLI is given a DSN, since most runs have no
// Postgres instance available.
package persist

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Ledger records finished runs to Postgres.
type Ledger struct {
	db *sql.DB
}

// Open connects to the Postgres instance at dsn and ensures the runs
// table exists.
func Open(ctx context.Context, dsn string) (*Ledger, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("persist: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: ping: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS simulation_runs (
			id SERIAL PRIMARY KEY,
			run_id TEXT UNIQUE NOT NULL,
			graph_path TEXT NOT NULL,
			seed BIGINT NOT NULL,
			stop_time BIGINT NOT NULL,
			exit_code INTEGER NOT NULL,
			host_count INTEGER NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: migrate: %w", err)
	}

	return &Ledger{db: db}, nil
}

// RunRecord is one completed simulation run.
type RunRecord struct {
	RunID      string
	GraphPath  string
	Seed       int64
	StopTime   uint64
	ExitCode   int
	HostCount  int
	StartedAt  string
	FinishedAt string
}

// RecordRun inserts rec, ignoring a duplicate RunID.
func (l *Ledger) RecordRun(ctx context.Context, rec RunRecord) error {
	const stmt = `
		INSERT INTO simulation_runs
			(run_id, graph_path, seed, stop_time, exit_code, host_count, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO NOTHING`
	_, err := l.db.ExecContext(ctx, stmt,
		rec.RunID, rec.GraphPath, rec.Seed, rec.StopTime, rec.ExitCode, rec.HostCount,
		rec.StartedAt, rec.FinishedAt)
	if err != nil {
		return fmt.Errorf("persist: record run: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (l *Ledger) Close() error {
	return l.db.Close()
}
