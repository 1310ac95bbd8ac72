package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/hyan/noteflow/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// RecordRun inserts a completed run summary.
func (s *SQLiteStore) RecordRun(ctx context.Context, run model.IngestRun) error {
	const query = `
		INSERT INTO runs (id, source, started_at, finished_at, fetched, filed, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.Source, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Fetched, run.Filed, run.Skipped, run.Failed,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	return nil
}

// RecordFiling inserts the outcome of one processed message.
func (s *SQLiteStore) RecordFiling(ctx context.Context, filing model.Filing) error {
	const query = `
		INSERT INTO filings (id, run_id, message_id, title, path, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		filing.ID, filing.RunID, filing.MessageID, filing.Title,
		filing.Path, string(filing.Status), filing.Error, filing.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording filing %s: %w", filing.ID, err)
	}
	return nil
}

// GetRuns returns the most recent runs, newest first.
func (s *SQLiteStore) GetRuns(ctx context.Context, limit int) ([]model.IngestRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []model.IngestRun
	err := s.db.SelectContext(ctx, &runs,
		"SELECT * FROM runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	return runs, nil
}

// GetFilings retrieves filings matching the provided filter options,
// newest first.
func (s *SQLiteStore) GetFilings(ctx context.Context, opts FilingFilter) ([]model.Filing, error) {
	var conditions []string
	var args []interface{}

	if opts.RunID != nil {
		conditions = append(conditions, "run_id = ?")
		args = append(args, *opts.RunID)
	}
	if opts.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*opts.Status))
	}

	query := "SELECT * FROM filings"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var filings []model.Filing
	if err := s.db.SelectContext(ctx, &filings, query, args...); err != nil {
		return nil, fmt.Errorf("querying filings: %w", err)
	}
	return filings, nil
}
