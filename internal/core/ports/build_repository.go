// Package ports defines the contracts between the routing core and its
// adapters: persistence, the external graph compiler, and the container
// runtime. These interfaces enable dependency inversion and testability.
package ports

import (
	"context"

	"routing/internal/core/domain/model/graphbuild"
	"routing/internal/core/domain/model/kernel"
)

// BuildRepository is the persistence contract for BuildRecord aggregates.
// Records are append-and-update only; nothing here deletes.
type BuildRepository interface {
	// Add persists a new record.
	Add(ctx context.Context, record *graphbuild.BuildRecord) error

	// Update persists the current state of an existing record.
	Update(ctx context.Context, record *graphbuild.BuildRecord) error

	// Get retrieves a record by id. Returns ObjectNotFoundError when absent.
	Get(ctx context.Context, id kernel.UUID) (*graphbuild.BuildRecord, error)

	// GetInFlight retrieves the instance's single non-terminal record
	// (Pending, Building, or Testing). Returns ObjectNotFoundError when the
	// instance has no build in flight.
	GetInFlight(ctx context.Context, instanceName string) (*graphbuild.BuildRecord, error)

	// GetAllInFlight retrieves every non-terminal record across instances.
	// Used on startup to fail records orphaned by a crash.
	GetAllInFlight(ctx context.Context) ([]*graphbuild.BuildRecord, error)

	// GetLatestByStatus retrieves the instance's most recently created
	// record in the given status. Returns ObjectNotFoundError when none.
	GetLatestByStatus(ctx context.Context, instanceName string, status graphbuild.Status) (*graphbuild.BuildRecord, error)

	// GetHistory retrieves the instance's records newest-first, bounded to
	// limit rows.
	GetHistory(ctx context.Context, instanceName string, limit int) ([]*graphbuild.BuildRecord, error)
}
