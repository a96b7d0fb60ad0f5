package storage

import (
	"fmt"

	"truthlens/internal/models"
)

// Factory provides a centralized way to create storage instances based on
// configuration. This allows for easy extensibility and backend swapping
// without code changes.
type Factory struct{}

// NewFactory creates a new storage factory
func NewFactory() *Factory {
	return &Factory{}
}

// Create instantiates a storage backend based on the provided configuration.
// Supported backends:
//   - memory: In-memory storage (for testing/development)
//   - sqlite: SQLite database storage (lightweight, single file)
//   - postgres: PostgreSQL database storage (production-ready)
func (f *Factory) Create(config models.HistoryConfig) (Storage, error) {
	storageConfig := Config{
		Type:             config.Type,
		ConnectionString: config.DSN,
	}

	switch config.Type {
	case models.HistoryTypeMemory:
		return NewMemoryStorage(storageConfig)
	case models.HistoryTypeSQLite:
		return NewSQLiteStorage(storageConfig)
	case models.HistoryTypePostgres:
		return NewPostgresStorage(storageConfig)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}
}

// SupportedBackends returns a list of all supported storage backend types
func (f *Factory) SupportedBackends() []string {
	return []string{models.HistoryTypeMemory, models.HistoryTypeSQLite, models.HistoryTypePostgres}
}
