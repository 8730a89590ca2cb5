package firmware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, version string) *models.FirmwareUpdate {
	return &models.FirmwareUpdate{ID: id, Version: version, Status: models.FirmwarePending, TargetPrinters: []string{"1"}}
}

func TestMemoryRepository_InsertAtHeadAndUniqueVersion(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	require.NoError(t, r.Insert(ctx, entry("a", "2.1.4")))
	require.NoError(t, r.Insert(ctx, entry("b", "2.2.0")))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID, "most recent upload first")
	assert.Equal(t, "a", list[1].ID)

	err = r.Insert(ctx, entry("c", "2.2.0"))
	assert.True(t, errors.Is(err, common.ErrConflict))

	got, err := r.GetByVersion(ctx, "2.1.4")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)

	_, err = r.GetByVersion(ctx, "9.9.9")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryRepository_TransitionIsAtomic(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Insert(ctx, entry("a", "1.0.0")))

	_, err := r.Transition(ctx, "a", func(f *models.FirmwareUpdate) error {
		f.Status = models.FirmwareDeploying
		f.Version = "hijack"
		return nil
	})
	require.NoError(t, err)

	got, _ := r.Get(ctx, "a")
	assert.Equal(t, models.FirmwareDeploying, got.Status)
	assert.Equal(t, "1.0.0", got.Version)

	_, err = r.Transition(ctx, "a", func(f *models.FirmwareUpdate) error {
		f.Status = models.FirmwareCompleted
		return common.ErrInvalidState
	})
	assert.ErrorIs(t, err, common.ErrInvalidState)
	got, _ = r.Get(ctx, "a")
	assert.Equal(t, models.FirmwareDeploying, got.Status, "rejected transition leaves entry untouched")

	_, err = r.Transition(ctx, "zzz", func(f *models.FirmwareUpdate) error { return nil })
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryRepository_ConcurrentTransitionsSerialize(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	zero := 0
	e := entry("a", "1.0.0")
	e.Progress = &zero
	require.NoError(t, r.Insert(ctx, e))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Transition(ctx, "a", func(f *models.FirmwareUpdate) error {
				*f.Progress++
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := r.Get(ctx, "a")
	assert.Equal(t, 50, *got.Progress)
}

func TestMemoryRepository_DeleteWithGuard(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Insert(ctx, entry("a", "1.0.0")))

	err := r.Delete(ctx, "a", func(f *models.FirmwareUpdate) error { return common.ErrConflict })
	assert.ErrorIs(t, err, common.ErrConflict)
	_, err = r.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, "a", nil))
	_, err = r.Get(ctx, "a")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// the version is free again
	require.NoError(t, r.Insert(ctx, entry("b", "1.0.0")))
	assert.ErrorIs(t, r.Delete(ctx, "a", nil), common.ErrNotFound)
}
