package records

import (
	"context"
	"fmt"

	"patchbay/internal/domain"
)

// Store is the relational record store consumed by the inventory services.
type Store interface {
	// Entity records.
	CreateEntity(ctx context.Context, rec *domain.EntityRecord) error
	GetEntity(ctx context.Context, id int64) (*domain.EntityRecord, error)
	FindEntity(ctx context.Context, name, typeSlug string) (*domain.EntityRecord, error)
	UpdateEntity(ctx context.Context, rec *domain.EntityRecord) error
	DeleteEntity(ctx context.Context, id int64) error

	// Unique-id generators.
	CreateGenerator(ctx context.Context, gen *domain.Generator) error
	GetGenerator(ctx context.Context, name string) (*domain.Generator, error)
	ListGenerators(ctx context.Context) ([]domain.Generator, error)

	// NextID atomically issues the next formatted identifier for a family
	// and advances its counter. Values are strictly increasing and never
	// reused.
	NextID(ctx context.Context, family string) (string, error)

	// Reserve inserts a reserved identifier into the family uniqueness
	// table. A duplicate fails with domain.ErrAlreadyReserved and does not
	// advance any counter.
	Reserve(ctx context.Context, family, value, reserver, message string) (*domain.UniqueID, error)

	// RegisterID records membership of an identifier in the family
	// uniqueness table without reserving it. It reports whether a new row
	// was created; an existing reserved row is marked consumed.
	RegisterID(ctx context.Context, family, value string) (created bool, err error)

	// GetUniqueID fetches one row from the family uniqueness table.
	GetUniqueID(ctx context.Context, family, value string) (*domain.UniqueID, error)

	// Close releases resources.
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open selects a record-store driver by name. For sqlite the dsn is a file
// path; for postgres a connection string.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(dsn)
	case DriverPostgres:
		return OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown record store driver %q", driver)
	}
}
