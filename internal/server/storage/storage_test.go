package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/logging"
	"github.com/dmitrijs2005/printfleet/internal/server/config"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// flakyBackend wraps a MemoryBackend and fails on demand.
type flakyBackend struct {
	*MemoryBackend
	putErr    error
	removeErr error
	removed   int
}

func (f *flakyBackend) Put(ctx context.Context, obj Object) (models.StorageLocator, error) {
	if f.putErr != nil {
		return models.StorageLocator{}, f.putErr
	}
	return f.MemoryBackend.Put(ctx, obj)
}

func (f *flakyBackend) Remove(ctx context.Context, loc models.StorageLocator) error {
	f.removed++
	if f.removeErr != nil {
		return f.removeErr
	}
	return f.MemoryBackend.Remove(ctx, loc)
}

func newAdapter(defaultProvider string) (*Adapter, *flakyBackend, *flakyBackend) {
	s3 := &flakyBackend{MemoryBackend: NewMemoryBackend(config.ProviderS3)}
	drv := &flakyBackend{MemoryBackend: NewMemoryBackend(config.ProviderDrive)}
	return NewAdapter(s3, drv, defaultProvider, logging.Nop()), s3, drv
}

var fw = Object{Name: "concretebot_v2.3.0.bin", Version: "2.3.0", Data: []byte{1, 2, 3}}

func TestAdapter_StoreSingleProviders(t *testing.T) {
	ctx := context.Background()

	a, s3, drv := newAdapter(config.ProviderS3)

	loc, err := a.Store(ctx, fw, "")
	require.NoError(t, err)
	assert.Equal(t, config.ProviderS3, loc.Provider, "empty provider uses default")
	assert.True(t, loc.HasS3())
	assert.False(t, loc.HasDrive())
	assert.Equal(t, 1, s3.Len())

	loc, err = a.Store(ctx, fw, config.ProviderDrive)
	require.NoError(t, err)
	assert.False(t, loc.HasS3())
	assert.True(t, loc.HasDrive())
	assert.Equal(t, 1, drv.Len())

	got, err := drv.Get(loc.DriveFileID)
	require.NoError(t, err)
	assert.Equal(t, fw.Data, got)
}

func TestAdapter_StoreBoth(t *testing.T) {
	a, s3, drv := newAdapter(config.ProviderS3)

	loc, err := a.Store(context.Background(), fw, config.ProviderBoth)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderBoth, loc.Provider)
	assert.True(t, loc.HasS3())
	assert.True(t, loc.HasDrive())
	assert.Equal(t, 1, s3.Len())
	assert.Equal(t, 1, drv.Len())

	require.NoError(t, a.Release(context.Background(), loc))
	assert.Zero(t, s3.Len())
	assert.Zero(t, drv.Len())
}

func TestAdapter_StoreBoth_CompensatesWhenDriveFails(t *testing.T) {
	a, s3, drv := newAdapter(config.ProviderS3)
	drv.putErr = errBoom{}

	_, err := a.Store(context.Background(), fw, config.ProviderBoth)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.Zero(t, s3.Len(), "s3 half must be rolled back")
	assert.Equal(t, 1, s3.removed)
}

func TestAdapter_StoreBoth_CompensationFailureIsReported(t *testing.T) {
	a, s3, drv := newAdapter(config.ProviderS3)
	drv.putErr = errBoom{}
	s3.removeErr = errors.New("s3 down")

	_, err := a.Store(context.Background(), fw, config.ProviderBoth)
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Contains(t, err.Error(), "s3 down")
}

func TestAdapter_StoreS3Failure(t *testing.T) {
	a, s3, drv := newAdapter(config.ProviderS3)
	s3.putErr = errBoom{}

	_, err := a.Store(context.Background(), fw, config.ProviderBoth)
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Zero(t, drv.Len(), "drive must not be touched when s3 fails")
}

func TestAdapter_StoreUnknownProvider(t *testing.T) {
	a, _, _ := newAdapter(config.ProviderS3)
	_, err := a.Store(context.Background(), fw, "supabase")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAdapter_ReleaseAttemptsEveryHalf(t *testing.T) {
	a, s3, drv := newAdapter(config.ProviderS3)
	loc, err := a.Store(context.Background(), fw, config.ProviderBoth)
	require.NoError(t, err)

	s3.removeErr = errBoom{}
	err = a.Release(context.Background(), loc)
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Equal(t, 1, drv.removed, "drive half is still released")
	assert.Zero(t, drv.Len())
}

func TestAdapter_Status(t *testing.T) {
	a, _, _ := newAdapter(config.ProviderBoth)
	st := a.Status(context.Background())
	assert.Equal(t, config.ProviderBoth, st.Default)
	assert.True(t, st.S3.Connected)
	assert.True(t, st.Drive.Connected)
	assert.Equal(t, config.ProviderDrive, st.Drive.Provider)
}

func TestNewAdapter_DefaultsToS3(t *testing.T) {
	a := NewAdapter(NewMemoryBackend(config.ProviderS3), NewMemoryBackend(config.ProviderDrive), "", logging.Nop())
	assert.Equal(t, config.ProviderS3, a.DefaultProvider())
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "firmware/2.3.0/id-fw.bin", ObjectKey("2.3.0", "../../fw.bin", "id"))
}
