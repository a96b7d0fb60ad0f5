package storage

import (
	"context"

	"truthlens/internal/models"
)

// Storage defines the interface for classification history persistence.
// It provides a clean abstraction that can be implemented by different
// backends such as in-memory maps or databases. Quota state is never
// stored here; only classification outcomes are.
type Storage interface {
	// SaveCheck stores one completed classification outcome
	SaveCheck(ctx context.Context, record *models.CheckRecord) error

	// RecentChecks returns up to limit records, newest first
	RecentChecks(ctx context.Context, limit int) ([]*models.CheckRecord, error)

	// LatestForAsset returns the newest record for the given media URL,
	// or ErrNotFound if the asset has never been checked
	LatestForAsset(ctx context.Context, mediaURL string) (*models.CheckRecord, error)

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error

	// Close closes the storage connection and cleans up resources
	Close() error
}

// Config holds configuration for storage backends
type Config struct {
	// Type specifies the storage backend type (memory, sqlite, postgres)
	Type string `json:"type" yaml:"type"`

	// ConnectionString is used for database backends
	ConnectionString string `json:"connection_string,omitempty" yaml:"connection_string,omitempty"`
}
