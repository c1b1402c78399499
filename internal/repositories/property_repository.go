package repositories

import (
	"context"
	"sync"

	"github.com/ps-vitor/salgspriser/internal/domain"
)

type PropertyRepository interface {
	Save(ctx context.Context, records []domain.EnrichedRecord) error
	FindAll(ctx context.Context) ([]domain.EnrichedRecord, error)
}

// MemoryPropertyRepository keeps the records of the latest run in memory.
// Save replaces what was there; nothing outlives the process.
type MemoryPropertyRepository struct {
	mu      sync.RWMutex
	records []domain.EnrichedRecord
}

func NewMemoryPropertyRepository() *MemoryPropertyRepository {
	return &MemoryPropertyRepository{}
}

func (r *MemoryPropertyRepository) Save(ctx context.Context, records []domain.EnrichedRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := make([]domain.EnrichedRecord, len(records))
	copy(cp, records)

	r.mu.Lock()
	r.records = cp
	r.mu.Unlock()
	return nil
}

func (r *MemoryPropertyRepository) FindAll(ctx context.Context) ([]domain.EnrichedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.EnrichedRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}
