// Package firmware stores the firmware catalog, most recent upload first.
package firmware

import (
	"context"

	"github.com/dmitrijs2005/printfleet/internal/server/models"
)

// Repository persists catalog entries.
//
// Transition is the single write path for lifecycle changes: fn runs against
// a copy of the current entry while the repository is locked, and the copy
// replaces the stored entry only when fn returns nil. Concurrent transitions
// on one entry are therefore serialized and each observes the previous one.
type Repository interface {
	List(ctx context.Context) ([]*models.FirmwareUpdate, error)
	Get(ctx context.Context, id string) (*models.FirmwareUpdate, error)
	GetByVersion(ctx context.Context, version string) (*models.FirmwareUpdate, error)
	Insert(ctx context.Context, f *models.FirmwareUpdate) error
	Transition(ctx context.Context, id string, fn func(f *models.FirmwareUpdate) error) (*models.FirmwareUpdate, error)
	Delete(ctx context.Context, id string, guard func(f *models.FirmwareUpdate) error) error
}
