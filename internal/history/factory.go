package history

import (
	"context"
	"fmt"

	"docmill/internal/models"
)

// NewStore instantiates a history backend based on the provided configuration.
// Supported types:
//   - memory: in-memory store (default, lost on restart)
//   - sqlite: SQLite database (single node, durable)
//   - postgres: PostgreSQL database (multi node, durable)
func NewStore(ctx context.Context, cfg models.HistoryConfig) (Store, error) {
	switch cfg.Type {
	case models.HistoryTypeMemory:
		return NewMemoryStore(), nil
	case models.HistoryTypeSQLite:
		return NewSQLiteStore(cfg.DSN)
	case models.HistoryTypePostgres:
		return NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported history type: %s", cfg.Type)
	}
}
