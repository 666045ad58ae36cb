package history

import (
	"context"

	"docmill/internal/models"
)

// Store defines the interface for job history persistence and retrieval.
// It provides a clean abstraction that can be implemented by different
// backends such as in-memory maps or databases.
type Store interface {
	// Record persists a completed job outcome
	Record(ctx context.Context, rec *models.JobRecord) error

	// Get retrieves a single record by job ID
	Get(ctx context.Context, id string) (*models.JobRecord, error)

	// Recent returns the most recent records, newest first
	Recent(ctx context.Context, limit int) ([]*models.JobRecord, error)

	// OutcomeCounts returns the number of recorded jobs per outcome
	OutcomeCounts(ctx context.Context) (map[string]int64, error)

	// Ping verifies the backend is reachable and operational
	Ping(ctx context.Context) error

	// Close closes the store and cleans up resources
	Close() error
}
