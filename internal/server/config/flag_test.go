package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:8081", "-g", "127.0.0.1:9090", "-d", "db", "-s", "secret",
			"-t", "60", "-p", "both", "-m=true", "-u", "user", "-k", "password", "-b", "bucket",
			"-r", "us-west-1", "-e", "http://endpoint", "-f", "folder", "-x", ".bin,.HEX,.uf2",
			"-l", "10", "-i", "1", "-o", "http://dash", "-n=false",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrHTTP:            "127.0.0.1:8081",
				EndpointAddrGRPC:            "127.0.0.1:9090",
				DatabaseDSN:                 "db",
				SecretKey:                   "secret",
				AccessTokenValidityDuration: 60 * time.Minute,
				StorageProvider:             ProviderBoth,
				StorageInMemory:             true,
				S3RootUser:                  "user",
				S3RootPassword:              "password",
				S3Bucket:                    "bucket",
				S3Region:                    "us-west-1",
				S3BaseEndpoint:              "http://endpoint",
				DriveFolderID:               "folder",
				AllowedFileTypes:            []string{".bin", ".hex", ".uf2"},
				MaxFileSize:                 10 * 1024 * 1024,
				DeployTickInterval:          1 * time.Second,
				CORSOrigin:                  "http://dash",
				SeedDemoData:                false,
			}},
		{name: "bad int", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
		{name: "zero tick interval", args: []string{"cmd", "-i", "0"}, expectPanic: true},
		{name: "negative tick interval", args: []string{"cmd", "-i=-3"}, expectPanic: true},
		{name: "zero max size", args: []string{"cmd", "-l", "0"}, expectPanic: true},
		{name: "zero token validity", args: []string{"cmd", "-t", "0"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

func TestParseFlags_KeepsValuesWhenAbsent(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "-unrelated", "x"}

	var c Config
	c.LoadDefaults()
	parseFlags(&c)

	assertDefaults(t, &c)
}
