package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/printfleet/internal/dbx"
	"github.com/dmitrijs2005/printfleet/internal/server/repositories/objects"
)

// RepositoryManager vends database-backed repositories bound to a DBTX,
// so the same code runs inside or outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Objects(db dbx.DBTX) objects.Repository
}
