package printers

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
)

// MemoryRepository keeps printers in insertion order behind a RWMutex.
type MemoryRepository struct {
	mu    sync.RWMutex
	data  map[string]*models.Printer
	order []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string]*models.Printer)}
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.Printer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Printer, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.data[id].Clone())
	}
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Printer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[id]
	if !ok {
		return nil, fmt.Errorf("printer %q: %w", id, common.ErrNotFound)
	}
	return p.Clone(), nil
}

func (r *MemoryRepository) Create(ctx context.Context, p *models.Printer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[p.ID]; exists {
		return fmt.Errorf("printer %q: %w", p.ID, common.ErrConflict)
	}
	r.data[p.ID] = p.Clone()
	r.order = append(r.order, p.ID)
	return nil
}

// Update applies fn to a copy of the printer and stores the copy only when
// fn succeeds.
func (r *MemoryRepository) Update(ctx context.Context, id string, fn func(p *models.Printer) error) (*models.Printer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return nil, fmt.Errorf("printer %q: %w", id, common.ErrNotFound)
	}
	next := p.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = id
	r.data[id] = next
	return next.Clone(), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return fmt.Errorf("printer %q: %w", id, common.ErrNotFound)
	}
	delete(r.data, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
