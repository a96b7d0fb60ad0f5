package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"truthlens/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteStorage implements the Storage interface using SQLite via the
// pure-Go modernc.org/sqlite driver, so the binary stays CGO-free.
type SQLiteStorage struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS media_checks (
	id           TEXT PRIMARY KEY,
	media_url    TEXT NOT NULL,
	media_type   TEXT NOT NULL,
	ai_generated INTEGER NOT NULL,
	confidence   REAL NOT NULL,
	message      TEXT NOT NULL,
	checked_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_media_checks_url ON media_checks (media_url, checked_at DESC);
CREATE INDEX IF NOT EXISTS idx_media_checks_checked_at ON media_checks (checked_at DESC);
`

// NewSQLiteStorage creates a new SQLite storage instance and ensures the
// schema exists.
func NewSQLiteStorage(config Config) (*SQLiteStorage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required for SQLite storage")
	}

	db, err := sql.Open("sqlite", config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// SaveCheck stores one completed classification outcome
func (ss *SQLiteStorage) SaveCheck(ctx context.Context, record *models.CheckRecord) error {
	_, err := ss.db.ExecContext(ctx,
		`INSERT INTO media_checks (id, media_url, media_type, ai_generated, confidence, message, checked_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.MediaURL, record.MediaType, boolToInt(record.AIGenerated),
		record.Confidence, record.Message, record.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save check: %w", err)
	}
	return nil
}

// RecentChecks returns up to limit records, newest first
func (ss *SQLiteStorage) RecentChecks(ctx context.Context, limit int) ([]*models.CheckRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := ss.db.QueryContext(ctx,
		`SELECT id, media_url, media_type, ai_generated, confidence, message, checked_at
		 FROM media_checks ORDER BY checked_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query checks: %w", err)
	}
	defer rows.Close()

	checks := make([]*models.CheckRecord, 0, limit)
	for rows.Next() {
		record, err := scanCheckRow(rows)
		if err != nil {
			return nil, err
		}
		checks = append(checks, record)
	}

	return checks, rows.Err()
}

// LatestForAsset returns the newest record for the given media URL
func (ss *SQLiteStorage) LatestForAsset(ctx context.Context, mediaURL string) (*models.CheckRecord, error) {
	row := ss.db.QueryRowContext(ctx,
		`SELECT id, media_url, media_type, ai_generated, confidence, message, checked_at
		 FROM media_checks WHERE media_url = ? ORDER BY checked_at DESC LIMIT 1`, mediaURL)

	record, err := scanCheckRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// Ping verifies the database is reachable
func (ss *SQLiteStorage) Ping(ctx context.Context) error {
	return ss.db.PingContext(ctx)
}

// Close closes the storage connection
func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckRow(row rowScanner) (*models.CheckRecord, error) {
	var record models.CheckRecord
	var aiGenerated int
	if err := row.Scan(&record.ID, &record.MediaURL, &record.MediaType,
		&aiGenerated, &record.Confidence, &record.Message, &record.CheckedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan check record: %w", err)
	}
	record.AIGenerated = aiGenerated != 0
	return &record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
