// Package postgres provides the GORM-based Unit of Work implementation.
// Every registry mutation runs inside one transaction: checking the
// in-flight invariant and inserting or updating the record must be atomic,
// and deploying a build deprecates its predecessor in the same commit.
package postgres

import (
	"context"

	"routing/internal/adapters/out/postgres/buildrepo"
	"routing/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one database
// connection. Each business operation gets a fresh instance with its own
// transaction state.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work
// instances.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork ready for one business transaction.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// GormUnitOfWork coordinates one database transaction. Repositories
// obtained from it operate inside that transaction. Instances are not safe
// for concurrent use; concurrent operations take separate instances from
// the factory.
type GormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

// Begin initiates the transaction. Calling Begin again on an instance with
// an open transaction is a no-op, not a nested transaction.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}
	return nil
}

// Commit finalizes the transaction. The instance cannot be reused after.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction. The instance cannot be reused after.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// BuildRepository returns a build repository bound to the open transaction,
// or to the bare connection when no transaction is open.
func (uow *GormUnitOfWork) BuildRepository() ports.BuildRepository {
	if uow.tx != nil {
		return buildrepo.NewGormBuildRepository(uow.tx)
	}
	return buildrepo.NewGormBuildRepository(uow.db)
}
