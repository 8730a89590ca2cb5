package firmware

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
)

// MemoryRepository keeps the catalog as an ordered slice with a version index.
type MemoryRepository struct {
	mu        sync.RWMutex
	entries   []*models.FirmwareUpdate
	byVersion map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byVersion: make(map[string]string)}
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.FirmwareUpdate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.FirmwareUpdate, 0, len(r.entries))
	for _, f := range r.entries {
		out = append(out, f.Clone())
	}
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.FirmwareUpdate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("firmware %q: %w", id, common.ErrNotFound)
	}
	return r.entries[i].Clone(), nil
}

func (r *MemoryRepository) GetByVersion(ctx context.Context, version string) (*models.FirmwareUpdate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byVersion[version]
	if !ok {
		return nil, fmt.Errorf("firmware version %q: %w", version, common.ErrNotFound)
	}
	return r.entries[r.indexOf(id)].Clone(), nil
}

// Insert puts f at the head of the catalog. Versions are unique.
func (r *MemoryRepository) Insert(ctx context.Context, f *models.FirmwareUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byVersion[f.Version]; exists {
		return fmt.Errorf("firmware version %q: %w", f.Version, common.ErrConflict)
	}
	if r.indexOf(f.ID) >= 0 {
		return fmt.Errorf("firmware %q: %w", f.ID, common.ErrConflict)
	}
	r.entries = append([]*models.FirmwareUpdate{f.Clone()}, r.entries...)
	r.byVersion[f.Version] = f.ID
	return nil
}

func (r *MemoryRepository) Transition(ctx context.Context, id string, fn func(f *models.FirmwareUpdate) error) (*models.FirmwareUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("firmware %q: %w", id, common.ErrNotFound)
	}
	next := r.entries[i].Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	// identity and version are immutable
	next.ID = r.entries[i].ID
	next.Version = r.entries[i].Version
	r.entries[i] = next
	return next.Clone(), nil
}

// Delete removes the entry when guard (if any) accepts it.
func (r *MemoryRepository) Delete(ctx context.Context, id string, guard func(f *models.FirmwareUpdate) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("firmware %q: %w", id, common.ErrNotFound)
	}
	if guard != nil {
		if err := guard(r.entries[i].Clone()); err != nil {
			return err
		}
	}
	delete(r.byVersion, r.entries[i].Version)
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	return nil
}

func (r *MemoryRepository) indexOf(id string) int {
	for i, f := range r.entries {
		if f.ID == id {
			return i
		}
	}
	return -1
}
