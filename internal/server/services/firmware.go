package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/logging"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"github.com/dmitrijs2005/printfleet/internal/server/repositories/firmware"
	"github.com/dmitrijs2005/printfleet/internal/server/storage"
	"github.com/google/uuid"
	"golang.org/x/mod/semver"
)

// ObjectStore keeps firmware bytes somewhere durable.
type ObjectStore interface {
	Store(ctx context.Context, obj storage.Object, provider string) (models.StorageLocator, error)
	Release(ctx context.Context, loc models.StorageLocator) error
}

// PrinterLookup resolves printer ids; Exists returns the first unknown one.
type PrinterLookup interface {
	Exists(ctx context.Context, ids []string) (string, error)
}

// UploadRequest is a firmware image with its catalog metadata.
type UploadRequest struct {
	Filename       string
	ContentType    string
	Data           []byte
	Version        string
	Description    string
	TargetPrinters []string
	Provider       string
	UploadedBy     string
}

// FirmwareService is the firmware catalog.
type FirmwareService struct {
	repo         firmware.Repository
	store        ObjectStore
	printers     PrinterLookup
	maxSize      int64
	allowedTypes []string
	logger       logging.Logger
	now          func() time.Time
}

func NewFirmwareService(repo firmware.Repository, store ObjectStore, printers PrinterLookup,
	maxSize int64, allowedTypes []string, l logging.Logger) *FirmwareService {
	return &FirmwareService{
		repo:         repo,
		store:        store,
		printers:     printers,
		maxSize:      maxSize,
		allowedTypes: allowedTypes,
		logger:       l.With("module", "firmware"),
		now:          time.Now,
	}
}

func (s *FirmwareService) List(ctx context.Context) ([]*models.FirmwareUpdate, error) {
	return s.repo.List(ctx)
}

func (s *FirmwareService) Get(ctx context.Context, id string) (*models.FirmwareUpdate, error) {
	return s.repo.Get(ctx, id)
}

// ValidVersion accepts plain MAJOR.MINOR.PATCH with an optional pre-release.
func ValidVersion(v string) bool {
	if strings.HasPrefix(v, "v") {
		return false
	}
	sv := "v" + v
	if !semver.IsValid(sv) || strings.Contains(v, "+") {
		return false
	}
	// reject the v1 and v1.2 shorthands semver tolerates
	return semver.Canonical(sv) == sv
}

func (s *FirmwareService) validate(ctx context.Context, req *UploadRequest) error {
	if len(req.Data) == 0 {
		return fmt.Errorf("firmware file is required: %w", common.ErrValidation)
	}
	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !slices.Contains(s.allowedTypes, ext) {
		return fmt.Errorf("file type %q not allowed, expected one of %s: %w",
			ext, strings.Join(s.allowedTypes, ", "), common.ErrValidation)
	}
	if s.maxSize > 0 && int64(len(req.Data)) > s.maxSize {
		return fmt.Errorf("file exceeds %d bytes: %w", s.maxSize, common.ErrValidation)
	}

	req.Version = strings.TrimSpace(req.Version)
	req.Description = strings.TrimSpace(req.Description)
	if req.Version == "" || req.Description == "" {
		return fmt.Errorf("version and description are required: %w", common.ErrValidation)
	}
	if !ValidVersion(req.Version) {
		return fmt.Errorf("version %q is not semantic: %w", req.Version, common.ErrValidation)
	}
	if len(req.TargetPrinters) == 0 {
		return fmt.Errorf("at least one target printer is required: %w", common.ErrValidation)
	}
	if req.Provider != "" && !storage.ValidProvider(req.Provider) {
		return fmt.Errorf("unknown storage provider %q: %w", req.Provider, common.ErrValidation)
	}

	seen := make(map[string]struct{}, len(req.TargetPrinters))
	targets := req.TargetPrinters[:0:0]
	for _, id := range req.TargetPrinters {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		targets = append(targets, id)
	}
	req.TargetPrinters = targets
	if id, err := s.printers.Exists(ctx, targets); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("unknown target printer %q: %w", id, common.ErrValidation)
		}
		return err
	}
	return nil
}

// Upload stores the image and records a pending catalog entry at the head
// of the list. Nothing is left behind when it fails.
func (s *FirmwareService) Upload(ctx context.Context, req UploadRequest) (*models.FirmwareUpdate, error) {
	if err := s.validate(ctx, &req); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByVersion(ctx, req.Version); err == nil {
		return nil, fmt.Errorf("version %s already exists: %w", req.Version, common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	sum := sha256.Sum256(req.Data)
	checksum := "sha256:" + hex.EncodeToString(sum[:])

	loc, err := s.store.Store(ctx, storage.Object{
		Name:        filepath.Base(req.Filename),
		Version:     req.Version,
		ContentType: req.ContentType,
		Checksum:    checksum,
		Data:        req.Data,
	}, req.Provider)
	if err != nil {
		return nil, err
	}

	f := &models.FirmwareUpdate{
		ID:             uuid.NewString(),
		Version:        req.Version,
		Filename:       filepath.Base(req.Filename),
		Size:           int64(len(req.Data)),
		UploadDate:     s.now().UTC(),
		Description:    req.Description,
		Status:         models.FirmwarePending,
		TargetPrinters: req.TargetPrinters,
		Storage:        loc,
		UploadedBy:     req.UploadedBy,
		Checksum:       checksum,
	}
	if err := s.repo.Insert(ctx, f); err != nil {
		if rerr := s.store.Release(ctx, loc); rerr != nil {
			s.logger.Error(ctx, "orphaned firmware bytes", "version", f.Version, "error", rerr)
		}
		return nil, err
	}

	s.logger.Info(ctx, "firmware uploaded", "firmware_id", f.ID, "version", f.Version,
		"provider", loc.Provider, "size", f.Size)
	return f, nil
}

// Delete releases the stored bytes and then removes the entry. Entries that
// are deploying cannot be deleted. The entry is marked first, so no deploy
// can start while its bytes go away; a failed release clears the mark.
func (s *FirmwareService) Delete(ctx context.Context, id string) (*models.FirmwareUpdate, error) {
	f, err := s.repo.Transition(ctx, id, func(cur *models.FirmwareUpdate) error {
		if cur.Status == models.FirmwareDeploying {
			return fmt.Errorf("firmware %s is deploying: %w", cur.Version, common.ErrConflict)
		}
		if cur.Deleting {
			return fmt.Errorf("firmware %s is already being deleted: %w", cur.Version, common.ErrConflict)
		}
		cur.Deleting = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Release(ctx, f.Storage); err != nil {
		_, uerr := s.repo.Transition(context.WithoutCancel(ctx), id, func(cur *models.FirmwareUpdate) error {
			cur.Deleting = false
			return nil
		})
		if uerr != nil {
			s.logger.Error(ctx, "firmware delete mark not cleared", "firmware_id", id, "error", uerr)
		}
		return nil, err
	}

	if err := s.repo.Delete(context.WithoutCancel(ctx), id, nil); err != nil {
		s.logger.Error(ctx, "firmware bytes released but entry kept", "firmware_id", id, "error", err)
		return nil, err
	}
	f.Deleting = false
	s.logger.Info(ctx, "firmware deleted", "firmware_id", id, "version", f.Version)
	return f, nil
}
