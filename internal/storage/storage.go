// Package storage defines the Storage interface - the contract that any
// database backend must satisfy to hold school records.
//
// Handlers (HTTP layer) only depend on this interface, so the backend is
// chosen once in main (SQLite, MySQL or Postgres) and tests can pass a
// fake that satisfies it.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/schools-api/internal/types"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("school not found")

// Storage is the database contract.
type Storage interface {
	// CreateSchool inserts one school record and returns the auto-
	// generated primary-key ID. ID and CreatedAt on the argument are
	// ignored; both are assigned by the database.
	CreateSchool(ctx context.Context, school types.School) (int64, error)

	// GetSchoolByID fetches a single school by its primary key.
	// Returns ErrNotFound if no row matches.
	GetSchoolByID(ctx context.Context, id int64) (types.School, error)

	// GetSchools returns every school, newest first.
	// Returns an empty slice (not nil) if there are no schools.
	GetSchools(ctx context.Context) ([]types.SchoolSummary, error)

	// Close releases the underlying connection pool.
	Close() error
}
