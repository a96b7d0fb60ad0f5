package storage

import (
	"context"
	"sync"

	"truthlens/internal/models"
)

// maxMemoryRecords caps the in-memory history; the oldest records are
// dropped once the cap is reached so a long-running process cannot grow
// without bound.
const maxMemoryRecords = 1000

// MemoryStorage implements the Storage interface using in-memory data
// structures. This provider is ideal for development, testing, and
// single-process deployments where history persistence across restarts
// is not required.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*models.CheckRecord         // append order, oldest first
	byURL   map[string]*models.CheckRecord // newest record per media URL
}

// NewMemoryStorage creates a new memory-based storage instance
func NewMemoryStorage(config Config) (*MemoryStorage, error) {
	return &MemoryStorage{
		byURL: make(map[string]*models.CheckRecord),
	}, nil
}

// SaveCheck stores one completed classification outcome
func (m *MemoryStorage) SaveCheck(ctx context.Context, record *models.CheckRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Store a copy to prevent external modification
	recordCopy := *record
	m.records = append(m.records, &recordCopy)
	m.byURL[record.MediaURL] = &recordCopy

	if len(m.records) > maxMemoryRecords {
		evicted := m.records[0]
		m.records = m.records[1:]
		if latest, ok := m.byURL[evicted.MediaURL]; ok && latest.ID == evicted.ID {
			delete(m.byURL, evicted.MediaURL)
		}
	}

	return nil
}

// RecentChecks returns up to limit records, newest first
func (m *MemoryStorage) RecentChecks(ctx context.Context, limit int) ([]*models.CheckRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}

	checks := make([]*models.CheckRecord, 0, limit)
	for i := len(m.records) - 1; i >= len(m.records)-limit; i-- {
		recordCopy := *m.records[i]
		checks = append(checks, &recordCopy)
	}

	return checks, nil
}

// LatestForAsset returns the newest record for the given media URL
func (m *MemoryStorage) LatestForAsset(ctx context.Context, mediaURL string) (*models.CheckRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.byURL[mediaURL]
	if !exists {
		return nil, ErrNotFound
	}

	recordCopy := *record
	return &recordCopy, nil
}

// Ping verifies the backend is reachable (always succeeds for memory)
func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close cleans up resources (no-op for memory storage)
func (m *MemoryStorage) Close() error {
	return nil
}
