package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"docmill/internal/models"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS job_records (
	id          TEXT PRIMARY KEY,
	operation   TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	client_key  TEXT NOT NULL,
	filename    TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_job_records_created_at ON job_records(created_at);
`

// SQLiteStore implements the Store interface using SQLite. It suits
// single-node deployments that want history to survive restarts without
// running a database server.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite history store and ensures the schema exists.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DSN is required for SQLite history")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record persists a completed job outcome.
func (s *SQLiteStore) Record(ctx context.Context, rec *models.JobRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO job_records (id, operation, outcome, client_key, filename, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Operation), rec.Outcome, rec.ClientKey, rec.Filename, rec.DurationMS, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert job record: %w", err)
	}

	return nil
}

// Get retrieves a single record by job ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.JobRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, operation, outcome, client_key, filename, duration_ms, created_at
		 FROM job_records WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job record: %w", err)
	}

	return rec, nil
}

// Recent returns the most recent records, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*models.JobRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, operation, outcome, client_key, filename, duration_ms, created_at
		 FROM job_records ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query job records: %w", err)
	}
	defer rows.Close()

	var records []*models.JobRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// OutcomeCounts returns the number of recorded jobs per outcome.
func (s *SQLiteStore) OutcomeCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM job_records GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var outcome string
		var count int64
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[outcome] = count
	}

	return counts, rows.Err()
}

// Ping verifies the backend is reachable and operational.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.JobRecord, error) {
	var rec models.JobRecord
	var operation string
	if err := row.Scan(&rec.ID, &operation, &rec.Outcome, &rec.ClientKey,
		&rec.Filename, &rec.DurationMS, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Operation = models.Operation(operation)
	return &rec, nil
}
