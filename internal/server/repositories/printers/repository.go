// Package printers stores the fleet registry.
package printers

import (
	"context"

	"github.com/dmitrijs2005/printfleet/internal/server/models"
)

// Repository persists printers. Implementations return copies; mutation
// happens only through Update so every write is atomic.
type Repository interface {
	List(ctx context.Context) ([]*models.Printer, error)
	Get(ctx context.Context, id string) (*models.Printer, error)
	Create(ctx context.Context, p *models.Printer) error
	Update(ctx context.Context, id string, fn func(p *models.Printer) error) (*models.Printer, error)
	Delete(ctx context.Context, id string) error
}
