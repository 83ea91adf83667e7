package repomanager

import (
	"context"

	"github.com/dmitrijs2005/inventory/internal/server/repositories/items"
)

// MemoryRepositoryManager keeps all data in process memory. It needs no
// migrations and is always reachable.
type MemoryRepositoryManager struct {
	items *items.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{items: items.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Items() items.Repository {
	return m.items
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Ping(context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Close(context.Context) error {
	return nil
}
