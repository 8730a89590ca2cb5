package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/printfleet/internal/flagx"
	"github.com/dmitrijs2005/printfleet/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration.
// Durations use timex.Duration so both "2s" and integer nanoseconds parse.
// Pointer fields distinguish "absent" from a zero value.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	StorageProvider             string         `json:"storage_provider"`
	StorageInMemory             *bool          `json:"storage_in_memory"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	DriveClientID               string         `json:"drive_client_id"`
	DriveClientSecret           string         `json:"drive_client_secret"`
	DriveRedirectURL            string         `json:"drive_redirect_url"`
	DriveRefreshToken           string         `json:"drive_refresh_token"`
	DriveFolderID               string         `json:"drive_folder_id"`
	MaxFileSize                 int64          `json:"max_file_size"`
	AllowedFileTypes            []string       `json:"allowed_file_types"`
	DeployTickInterval          timex.Duration `json:"deploy_tick_interval"`
	FailureCheckDelay           timex.Duration `json:"failure_check_delay"`
	FailureProbability          *float64       `json:"failure_probability"`
	CORSOrigin                  string         `json:"cors_origin"`
	SeedDemoData                *bool          `json:"seed_demo_data"`
}

// parseJson overlays values from the JSON file named by -c/-config onto
// config. Absent or empty fields keep the current value. An unreadable or
// malformed file panics, matching flag parsing.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.StorageProvider, c.StorageProvider)
	if c.StorageInMemory != nil {
		config.StorageInMemory = *c.StorageInMemory
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.DriveClientID, c.DriveClientID)
	setString(&config.DriveClientSecret, c.DriveClientSecret)
	setString(&config.DriveRedirectURL, c.DriveRedirectURL)
	setString(&config.DriveRefreshToken, c.DriveRefreshToken)
	setString(&config.DriveFolderID, c.DriveFolderID)
	if c.MaxFileSize > 0 {
		config.MaxFileSize = c.MaxFileSize
	}
	if len(c.AllowedFileTypes) > 0 {
		config.AllowedFileTypes = c.AllowedFileTypes
	}
	if c.DeployTickInterval.Duration > 0 {
		config.DeployTickInterval = c.DeployTickInterval.Duration
	}
	if c.FailureCheckDelay.Duration > 0 {
		config.FailureCheckDelay = c.FailureCheckDelay.Duration
	}
	if c.FailureProbability != nil {
		config.FailureProbability = *c.FailureProbability
	}
	setString(&config.CORSOrigin, c.CORSOrigin)
	if c.SeedDemoData != nil {
		config.SeedDemoData = *c.SeedDemoData
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
