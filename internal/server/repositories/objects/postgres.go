package objects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/dbx"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o *models.FirmwareObject) error {
	query := `INSERT INTO firmware_objects (id, version, filename, storage_key, url, size, checksum, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	res, err := r.db.ExecContext(ctx, query, o.ID, o.Version, o.Filename, o.StorageKey, o.URL, o.Size, o.Checksum, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.FirmwareObject, error) {
	query := `SELECT id, version, filename, storage_key, url, size, checksum, created_at
		FROM firmware_objects WHERE id=$1`

	o := &models.FirmwareObject{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&o.ID, &o.Version, &o.Filename, &o.StorageKey, &o.URL, &o.Size, &o.Checksum, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("firmware object %q: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select firmware object: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM firmware_objects WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete firmware object: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("firmware object %q: %w", id, common.ErrNotFound)
	}
	return nil
}

// Ping checks that the table is reachable.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM firmware_objects LIMIT 1`).Scan(&one); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("ping firmware_objects: %w", err)
	}
	return nil
}
