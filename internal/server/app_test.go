package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/printfleet/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.StorageInMemory = true
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	return c
}

func TestNewApp_InMemorySeeded(t *testing.T) {
	ctx := context.Background()

	app, err := NewApp(ctx, memoryConfig())
	require.NoError(t, err)
	t.Cleanup(app.engine.Shutdown)

	assert.Nil(t, app.db)
	assert.Nil(t, app.drive)

	list, err := app.printerService.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 4)

	fw, err := app.firmwareService.List(ctx)
	require.NoError(t, err)
	require.Len(t, fw, 2)
	assert.Equal(t, "2.2.0", fw[0].Version)

	st := app.storage.Status(ctx)
	assert.True(t, st.S3.Connected)
}

func TestNewApp_WithoutSeed(t *testing.T) {
	ctx := context.Background()
	c := memoryConfig()
	c.SeedDemoData = false

	app, err := NewApp(ctx, c)
	require.NoError(t, err)
	t.Cleanup(app.engine.Shutdown)

	list, err := app.printerService.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNewApp_DatabaseError(t *testing.T) {
	orig := openPostgres
	t.Cleanup(func() { openPostgres = orig })
	openPostgres = func(ctx context.Context, dsn string) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	}

	c := memoryConfig()
	c.StorageInMemory = false

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
