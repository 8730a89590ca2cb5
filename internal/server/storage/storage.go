// Package storage puts firmware bytes into one or both cloud backends and
// takes them out again. A dual store is a small saga: the S3 half is written
// first and undone when the Drive half fails.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/logging"
	"github.com/dmitrijs2005/printfleet/internal/server/config"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
)

// Object is a firmware image on its way into storage.
type Object struct {
	Name        string
	Version     string
	ContentType string
	Checksum    string
	Data        []byte
}

// BackendStatus is the reachability report of one backend.
type BackendStatus struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Detail     string `json:"detail,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Status reports every backend independently.
type Status struct {
	Default string        `json:"defaultProvider"`
	S3      BackendStatus `json:"s3"`
	Drive   BackendStatus `json:"drive"`
}

// Backend stores bytes in one place. Put fills only the backend's own half
// of the locator; Remove reads only that half.
type Backend interface {
	Put(ctx context.Context, obj Object) (models.StorageLocator, error)
	Remove(ctx context.Context, loc models.StorageLocator) error
	Status(ctx context.Context) BackendStatus
}

// Adapter routes Store and Release to the configured backends.
type Adapter struct {
	s3              Backend
	drive           Backend
	defaultProvider string
	logger          logging.Logger
}

func NewAdapter(s3 Backend, drive Backend, defaultProvider string, l logging.Logger) *Adapter {
	if defaultProvider == "" {
		defaultProvider = config.ProviderS3
	}
	return &Adapter{s3: s3, drive: drive, defaultProvider: defaultProvider, logger: l.With("module", "storage")}
}

// DefaultProvider is used when Store is called with an empty provider.
func (a *Adapter) DefaultProvider() string { return a.defaultProvider }

// ValidProvider reports whether p names a supported provider choice.
func ValidProvider(p string) bool {
	switch p {
	case config.ProviderS3, config.ProviderDrive, config.ProviderBoth:
		return true
	}
	return false
}

// Store writes obj to provider and returns a locator for every copy made.
// Any failure is reported as common.ErrStorage and leaves nothing behind.
func (a *Adapter) Store(ctx context.Context, obj Object, provider string) (models.StorageLocator, error) {
	if provider == "" {
		provider = a.defaultProvider
	}
	if !ValidProvider(provider) {
		return models.StorageLocator{}, fmt.Errorf("unknown storage provider %q: %w", provider, common.ErrValidation)
	}

	var loc models.StorageLocator

	if provider == config.ProviderS3 || provider == config.ProviderBoth {
		part, err := a.s3.Put(ctx, obj)
		if err != nil {
			a.logger.Error(ctx, "s3 upload failed", "version", obj.Version, "error", err)
			return models.StorageLocator{}, fmt.Errorf("s3 upload: %w: %w", common.ErrStorage, err)
		}
		mergeLocator(&loc, part)
	}

	if provider == config.ProviderDrive || provider == config.ProviderBoth {
		part, err := a.drive.Put(ctx, obj)
		if err != nil {
			a.logger.Error(ctx, "drive upload failed", "version", obj.Version, "error", err)
			if loc.HasS3() {
				if rerr := a.s3.Remove(ctx, loc); rerr != nil {
					a.logger.Error(ctx, "s3 compensation failed", "key", loc.S3Key, "error", rerr)
					return models.StorageLocator{}, fmt.Errorf("drive upload: %w: %w", common.ErrStorage, errors.Join(err, rerr))
				}
				a.logger.Info(ctx, "s3 upload rolled back", "key", loc.S3Key)
			}
			return models.StorageLocator{}, fmt.Errorf("drive upload: %w: %w", common.ErrStorage, err)
		}
		mergeLocator(&loc, part)
	}

	loc.Provider = provider
	a.logger.Info(ctx, "firmware stored", "version", obj.Version, "provider", provider)
	return loc, nil
}

// Release deletes every copy the locator names. All halves are attempted even
// if one fails.
func (a *Adapter) Release(ctx context.Context, loc models.StorageLocator) error {
	var errs []error
	if loc.HasS3() {
		if err := a.s3.Remove(ctx, loc); err != nil {
			errs = append(errs, fmt.Errorf("s3: %w", err))
		}
	}
	if loc.HasDrive() {
		if err := a.drive.Remove(ctx, loc); err != nil {
			errs = append(errs, fmt.Errorf("drive: %w", err))
		}
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		a.logger.Error(ctx, "release failed", "error", err)
		return fmt.Errorf("release: %w: %w", common.ErrStorage, err)
	}
	return nil
}

func (a *Adapter) Status(ctx context.Context) Status {
	return Status{
		Default: a.defaultProvider,
		S3:      a.s3.Status(ctx),
		Drive:   a.drive.Status(ctx),
	}
}

func mergeLocator(dst *models.StorageLocator, part models.StorageLocator) {
	if part.S3Key != "" {
		dst.S3Key = part.S3Key
		dst.S3URL = part.S3URL
		dst.S3RecordID = part.S3RecordID
	}
	if part.DriveFileID != "" {
		dst.DriveFileID = part.DriveFileID
		dst.DriveViewLink = part.DriveViewLink
		dst.DriveDownloadLink = part.DriveDownloadLink
	}
}
