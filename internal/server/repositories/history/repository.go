// Package history stores the firmware update log.
package history

import (
	"context"

	"github.com/dmitrijs2005/printfleet/internal/server/models"
)

// Repository persists history entries. List returns every entry; ordering
// and filtering belong to the service.
type Repository interface {
	Append(ctx context.Context, h *models.HistoryEntry) error
	List(ctx context.Context) ([]*models.HistoryEntry, error)
	Get(ctx context.Context, id string) (*models.HistoryEntry, error)
	Update(ctx context.Context, id string, fn func(h *models.HistoryEntry) error) (*models.HistoryEntry, error)
	Delete(ctx context.Context, id string) error
}
