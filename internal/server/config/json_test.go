package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":             "0.0.0.0:8088",
		"endpoint_addr_grpc":             "www.example:9000",
		"database_dsn":                   "postgres://x",
		"secret_key":                     "my_secret_key",
		"access_token_validity_duration": "24h",
		"storage_provider":               "drive",
		"storage_in_memory":              true,
		"s3_bucket":                      "bucket",
		"drive_client_id":                "cid",
		"drive_client_secret":            "csecret",
		"drive_refresh_token":            "rtoken",
		"drive_folder_id":                "folder",
		"max_file_size":                  1024,
		"allowed_file_types":             []string{".bin"},
		"deploy_tick_interval":           "500ms",
		"failure_check_delay":            "3s",
		"failure_probability":            0,
		"seed_demo_data":                 false,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "0.0.0.0:8088", cfg.EndpointAddrHTTP)
		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 24*time.Hour, cfg.AccessTokenValidityDuration)
		assert.Equal(t, ProviderDrive, cfg.StorageProvider)
		assert.True(t, cfg.StorageInMemory)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "us-east-1", cfg.S3Region, "absent field keeps default")
		assert.Equal(t, "cid", cfg.DriveClientID)
		assert.Equal(t, "csecret", cfg.DriveClientSecret)
		assert.Equal(t, "rtoken", cfg.DriveRefreshToken)
		assert.Equal(t, "folder", cfg.DriveFolderID)
		assert.Equal(t, int64(1024), cfg.MaxFileSize)
		assert.Equal(t, []string{".bin"}, cfg.AllowedFileTypes)
		assert.Equal(t, 500*time.Millisecond, cfg.DeployTickInterval)
		assert.Equal(t, 3*time.Second, cfg.FailureCheckDelay)
		assert.Zero(t, cfg.FailureProbability)
		assert.False(t, cfg.SeedDemoData)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assertDefaults(t, cfg)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "absent.json")}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
