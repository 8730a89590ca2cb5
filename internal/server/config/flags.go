package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/printfleet/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST API bind address (e.g., ":8080")
//	-g string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-p string   default storage provider: s3, drive or both
//	-m bool     keep firmware bytes in memory
//	-u string   S3 root user
//	-k string   S3 root password
//	-b string   S3 bucket name
//	-r string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-f string   Google Drive folder id
//	-x string   allowed firmware extensions, comma separated
//	-l int      max firmware size, MiB
//	-i int      deployment tick interval, seconds
//	-o string   dashboard origin for CORS
//	-n bool     seed demo data
//
// Drive OAuth secrets are read from the JSON config only.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-g", "-d", "-s", "-t", "-p", "-m", "-u", "-k", "-b", "-r", "-e", "-f", "-x", "-l", "-i", "-o", "-n",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run REST API")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.StorageProvider, "p", config.StorageProvider, "default storage provider (s3, drive, both)")
	fs.BoolVar(&config.StorageInMemory, "m", config.StorageInMemory, "keep firmware in memory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "k", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.DriveFolderID, "f", config.DriveFolderID, "Google Drive folder id")

	allowed := fs.String("x", strings.Join(config.AllowedFileTypes, ","), "allowed firmware extensions (comma separated)")
	maxFileSize := fs.Int64("l", config.MaxFileSize/(1024*1024), "max firmware size (in MiB)")
	tickInterval := fs.Int("i", int(config.DeployTickInterval.Seconds()), "deployment tick interval (in seconds)")

	fs.StringVar(&config.CORSOrigin, "o", config.CORSOrigin, "dashboard origin")
	fs.BoolVar(&config.SeedDemoData, "n", config.SeedDemoData, "seed demo data")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only flags given explicitly override, so sub-minute JSON values survive.
	fs.Visit(func(f *flag.Flag) {
		if err := positive(f.Name, *accessTokenValidityDuration, *maxFileSize, *tickInterval); err != nil {
			panic(err)
		}
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "x":
			config.AllowedFileTypes = flagx.SplitList(*allowed)
		case "l":
			config.MaxFileSize = *maxFileSize * 1024 * 1024
		case "i":
			config.DeployTickInterval = time.Duration(*tickInterval) * time.Second
		}
	})
}

// positive rejects a zero or negative value for the duration and size flags.
func positive(name string, tokenMinutes int, maxSizeMiB int64, tickSeconds int) error {
	var v int64
	switch name {
	case "t":
		v = int64(tokenMinutes)
	case "l":
		v = maxSizeMiB
	case "i":
		v = int64(tickSeconds)
	default:
		return nil
	}
	if v <= 0 {
		return fmt.Errorf("flag -%s must be positive, got %d", name, v)
	}
	return nil
}
