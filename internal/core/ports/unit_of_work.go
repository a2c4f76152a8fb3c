package ports

import "context"

// UnitOfWork coordinates a database transaction across repository
// operations. Each business operation gets a fresh instance from the
// factory; instances are not safe for concurrent use.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	BuildRepository() BuildRepository
}

// UnitOfWorkFactory produces isolated UnitOfWork instances.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
