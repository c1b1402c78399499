// Package dataset holds the ordered result table of one run.
package dataset

import (
	"sync"

	"github.com/ps-vitor/salgspriser/internal/domain"
)

// Dataset is append-only. Records keep insertion order, which is the order
// listings were fetched in. Nothing is deduplicated.
type Dataset struct {
	mu         sync.RWMutex
	records    []domain.EnrichedRecord
	unresolved []domain.Unresolved
}

func New() *Dataset {
	return &Dataset{}
}

func (d *Dataset) Append(r domain.EnrichedRecord) {
	d.mu.Lock()
	d.records = append(d.records, r)
	d.mu.Unlock()
}

func (d *Dataset) appendUnresolved(u domain.Unresolved) {
	d.mu.Lock()
	d.unresolved = append(d.unresolved, u)
	d.mu.Unlock()
}

// Records returns a copy of the table.
func (d *Dataset) Records() []domain.EnrichedRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.EnrichedRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Unresolved returns the listings the geocoder could not place.
func (d *Dataset) Unresolved() []domain.Unresolved {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.Unresolved, len(d.unresolved))
	copy(out, d.unresolved)
	return out
}

func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}
