package history

import (
	"context"
	"errors"
	"fmt"

	"docmill/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS job_records (
	id          TEXT PRIMARY KEY,
	operation   TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	client_key  TEXT NOT NULL,
	filename    TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_job_records_created_at ON job_records(created_at);
`

// PostgresStore implements the Store interface using PostgreSQL. It is the
// backend for multi-node deployments that need shared, durable history.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL history store and ensures the
// schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DSN is required for PostgreSQL history")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Record persists a completed job outcome.
func (p *PostgresStore) Record(ctx context.Context, rec *models.JobRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	_, err := p.pool.Exec(ctx,
		`INSERT INTO job_records (id, operation, outcome, client_key, filename, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, string(rec.Operation), rec.Outcome, rec.ClientKey, rec.Filename, rec.DurationMS, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert job record: %w", err)
	}

	return nil
}

// Get retrieves a single record by job ID.
func (p *PostgresStore) Get(ctx context.Context, id string) (*models.JobRecord, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, operation, outcome, client_key, filename, duration_ms, created_at
		 FROM job_records WHERE id = $1`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job record: %w", err)
	}

	return rec, nil
}

// Recent returns the most recent records, newest first.
func (p *PostgresStore) Recent(ctx context.Context, limit int) ([]*models.JobRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := p.pool.Query(ctx,
		`SELECT id, operation, outcome, client_key, filename, duration_ms, created_at
		 FROM job_records ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
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
func (p *PostgresStore) OutcomeCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := p.pool.Query(ctx,
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
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
