package history

import (
	"context"
	"sync"

	"docmill/internal/models"
)

// MemoryStore implements the Store interface using in-memory data structures.
// This backend is ideal for development, testing, and single-node deployments
// where history does not need to survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*models.JobRecord // append-only, oldest first
	byID    map[string]*models.JobRecord
}

// NewMemoryStore creates a new memory-based history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]*models.JobRecord),
	}
}

// Record persists a completed job outcome.
func (m *MemoryStore) Record(ctx context.Context, rec *models.JobRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Store a copy to prevent external modification
	recCopy := *rec
	m.records = append(m.records, &recCopy)
	m.byID[rec.ID] = &recCopy

	return nil
}

// Get retrieves a single record by job ID.
func (m *MemoryStore) Get(ctx context.Context, id string) (*models.JobRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, exists := m.byID[id]
	if !exists {
		return nil, ErrNotFound
	}

	recCopy := *rec
	return &recCopy, nil
}

// Recent returns the most recent records, newest first.
func (m *MemoryStore) Recent(ctx context.Context, limit int) ([]*models.JobRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}

	result := make([]*models.JobRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(result) < limit; i-- {
		recCopy := *m.records[i]
		result = append(result, &recCopy)
	}

	return result, nil
}

// OutcomeCounts returns the number of recorded jobs per outcome.
func (m *MemoryStore) OutcomeCounts(ctx context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, rec := range m.records {
		counts[rec.Outcome]++
	}

	return counts, nil
}

// Ping verifies the backend is reachable and operational.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close clears all stored records.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil
	m.byID = make(map[string]*models.JobRecord)

	return nil
}
