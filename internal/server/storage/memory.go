package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/server/config"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"github.com/google/uuid"
)

// MemoryBackend keeps bytes in process memory. It impersonates either the
// S3 or the Drive half of a locator depending on provider.
type MemoryBackend struct {
	provider string
	mu       sync.RWMutex
	objects  map[string][]byte
}

func NewMemoryBackend(provider string) *MemoryBackend {
	return &MemoryBackend{provider: provider, objects: make(map[string][]byte)}
}

func (m *MemoryBackend) Put(ctx context.Context, obj Object) (models.StorageLocator, error) {
	id := uuid.NewString()
	data := append([]byte(nil), obj.Data...)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.provider == config.ProviderDrive {
		m.objects[id] = data
		return models.StorageLocator{
			DriveFileID:       id,
			DriveViewLink:     "memory://drive/" + id,
			DriveDownloadLink: "memory://drive/" + id + "?download",
		}, nil
	}

	key := ObjectKey(obj.Version, obj.Name, id)
	m.objects[key] = data
	return models.StorageLocator{S3Key: key, S3URL: "memory://s3/" + key, S3RecordID: id}, nil
}

func (m *MemoryBackend) Remove(ctx context.Context, loc models.StorageLocator) error {
	key := loc.S3Key
	if m.provider == config.ProviderDrive {
		key = loc.DriveFileID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryBackend) Status(ctx context.Context) BackendStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return BackendStatus{
		Provider:   m.provider,
		Configured: true,
		Connected:  true,
		Detail:     fmt.Sprintf("in-memory, %d objects", len(m.objects)),
	}
}

// Get returns a stored object by its S3 key or Drive file id.
func (m *MemoryBackend) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %q: %w", key, common.ErrNotFound)
	}
	return b, nil
}

// Len reports how many objects are held.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
