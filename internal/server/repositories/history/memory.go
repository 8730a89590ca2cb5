package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	entries []*models.HistoryEntry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Append(ctx context.Context, h *models.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(h.ID) >= 0 {
		return fmt.Errorf("history entry %q: %w", h.ID, common.ErrConflict)
	}
	r.entries = append(r.entries, h.Clone())
	return nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.HistoryEntry, 0, len(r.entries))
	for _, h := range r.entries {
		out = append(out, h.Clone())
	}
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("history entry %q: %w", id, common.ErrNotFound)
	}
	return r.entries[i].Clone(), nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, fn func(h *models.HistoryEntry) error) (*models.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("history entry %q: %w", id, common.ErrNotFound)
	}
	next := r.entries[i].Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = id
	r.entries[i] = next
	return next.Clone(), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("history entry %q: %w", id, common.ErrNotFound)
	}
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	return nil
}

func (r *MemoryRepository) indexOf(id string) int {
	for i, h := range r.entries {
		if h.ID == id {
			return i
		}
	}
	return -1
}
