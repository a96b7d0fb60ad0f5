package storage

import (
	"context"
	"errors"
	"fmt"

	"truthlens/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage implements the Storage interface using PostgreSQL,
// intended for deployments where check history must survive restarts or
// be shared for offline analysis.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS media_checks (
	id           TEXT PRIMARY KEY,
	media_url    TEXT NOT NULL,
	media_type   TEXT NOT NULL,
	ai_generated BOOLEAN NOT NULL,
	confidence   DOUBLE PRECISION NOT NULL,
	message      TEXT NOT NULL,
	checked_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_media_checks_url ON media_checks (media_url, checked_at DESC);
CREATE INDEX IF NOT EXISTS idx_media_checks_checked_at ON media_checks (checked_at DESC);
`

// NewPostgresStorage creates a new PostgreSQL storage instance and
// ensures the schema exists.
func NewPostgresStorage(config Config) (*PostgresStorage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required for PostgreSQL storage")
	}

	pool, err := pgxpool.New(context.Background(), config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(context.Background(), postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresStorage{pool: pool}, nil
}

// SaveCheck stores one completed classification outcome
func (ps *PostgresStorage) SaveCheck(ctx context.Context, record *models.CheckRecord) error {
	_, err := ps.pool.Exec(ctx,
		`INSERT INTO media_checks (id, media_url, media_type, ai_generated, confidence, message, checked_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.MediaURL, record.MediaType, record.AIGenerated,
		record.Confidence, record.Message, record.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save check: %w", err)
	}
	return nil
}

// RecentChecks returns up to limit records, newest first
func (ps *PostgresStorage) RecentChecks(ctx context.Context, limit int) ([]*models.CheckRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := ps.pool.Query(ctx,
		`SELECT id, media_url, media_type, ai_generated, confidence, message, checked_at
		 FROM media_checks ORDER BY checked_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query checks: %w", err)
	}
	defer rows.Close()

	checks := make([]*models.CheckRecord, 0, limit)
	for rows.Next() {
		var record models.CheckRecord
		if err := rows.Scan(&record.ID, &record.MediaURL, &record.MediaType,
			&record.AIGenerated, &record.Confidence, &record.Message, &record.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check record: %w", err)
		}
		checks = append(checks, &record)
	}

	return checks, rows.Err()
}

// LatestForAsset returns the newest record for the given media URL
func (ps *PostgresStorage) LatestForAsset(ctx context.Context, mediaURL string) (*models.CheckRecord, error) {
	var record models.CheckRecord
	err := ps.pool.QueryRow(ctx,
		`SELECT id, media_url, media_type, ai_generated, confidence, message, checked_at
		 FROM media_checks WHERE media_url = $1 ORDER BY checked_at DESC LIMIT 1`, mediaURL).
		Scan(&record.ID, &record.MediaURL, &record.MediaType,
			&record.AIGenerated, &record.Confidence, &record.Message, &record.CheckedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest check: %w", err)
	}
	return &record, nil
}

// Ping verifies the database is reachable
func (ps *PostgresStorage) Ping(ctx context.Context) error {
	return ps.pool.Ping(ctx)
}

// Close closes the connection pool
func (ps *PostgresStorage) Close() error {
	ps.pool.Close()
	return nil
}
