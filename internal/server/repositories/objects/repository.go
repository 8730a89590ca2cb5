// Package objects keeps the durable record of firmware objects stored in S3.
package objects

import (
	"context"

	"github.com/dmitrijs2005/printfleet/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, o *models.FirmwareObject) error
	GetByID(ctx context.Context, id string) (*models.FirmwareObject, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
