// Package models declares the domain entities shared by repositories,
// services and transports.
package models

import "time"

// FirmwareObject is the durable record kept next to every object stored in
// the S3 bucket, so a catalog entry can be traced to its bytes.
type FirmwareObject struct {
	ID         string
	Version    string
	Filename   string
	StorageKey string
	URL        string
	Size       int64
	Checksum   string
	CreatedAt  time.Time
}
