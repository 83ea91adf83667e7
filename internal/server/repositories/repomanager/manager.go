// Package repomanager opens the configured storage backend, prepares its
// schema and vends the item repository bound to it.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/inventory/internal/server/config"
	"github.com/dmitrijs2005/inventory/internal/server/repositories/items"
)

// RepositoryManager owns the connection of one storage backend.
type RepositoryManager interface {
	Items() items.Repository
	// RunMigrations creates the schema or indexes the repository relies on.
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the backend selected by cfg.StorageType.
func Open(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StorageType {
	case config.StorageMongo:
		m, err := NewMongoRepositoryManager(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.StoragePostgres:
		m, err := NewPostgresRepositoryManager(cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.StorageMemory:
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}
