// Package registry implements the build registry: the single authority over
// BuildRecord lifecycle and the per-instance build serialization guarantee.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"routing/internal/core/domain/model/graphbuild"
	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/ports"
	"routing/internal/pkg/errs"
	"routing/internal/pkg/namedlock"
)

// ErrBuildInFlight is returned by StartBuild when the instance already has a
// non-terminal record. Callers that want to wait instead of failing wrap
// their work in ExecuteSequentially.
var ErrBuildInFlight = errors.New("a build for this instance is already in flight")

// BuildRegistry owns all BuildRecord mutation and the process-local
// serialization of builds per instance name.
//
// The lock behind ExecuteSequentially lives in process memory only: it does
// not protect against a second process racing on the same instance name,
// and it is lost on crash — FailOrphans reconciles the leftovers at startup.
type BuildRegistry struct {
	uowFactory ports.UnitOfWorkFactory
	locks      *namedlock.NamedLock
	logger     *slog.Logger
}

// NewBuildRegistry creates a registry over the given unit-of-work factory.
func NewBuildRegistry(uowFactory ports.UnitOfWorkFactory, logger *slog.Logger) *BuildRegistry {
	return &BuildRegistry{
		uowFactory: uowFactory,
		locks:      namedlock.New(),
		logger:     logger.With("component", "build_registry"),
	}
}

// ExecuteSequentially runs op while holding the instance's lock,
// guaranteeing at most one in-flight build per instance name within this
// process. Operations on different instance names never block each other.
//
// A caller arriving while a build for the same name is in flight waits for
// that build's completion before proceeding — it does NOT automatically
// enqueue a new build. Whether to start one is the waiting caller's decision
// after it observes the result (typically via CurrentBuild or LatestReady).
// Waiting is not an error condition and is never surfaced as one.
func (r *BuildRegistry) ExecuteSequentially(ctx context.Context, instanceName string, op func(ctx context.Context) error) error {
	if err := r.locks.Acquire(ctx, instanceName); err != nil {
		return err
	}
	defer r.locks.Release(instanceName)

	return op(ctx)
}

// TryExecuteSequentially is the non-blocking form used by scheduled runs:
// it reports started=false, with no error, when the instance is busy.
func (r *BuildRegistry) TryExecuteSequentially(ctx context.Context, instanceName string, op func(ctx context.Context) error) (started bool, err error) {
	if !r.locks.TryAcquire(instanceName) {
		return false, nil
	}
	defer r.locks.Release(instanceName)

	return true, op(ctx)
}

// StartBuild creates a Pending record for the instance. It refuses with
// ErrBuildInFlight when a non-terminal record already exists, which keeps
// the one-in-flight invariant even against callers that bypass
// ExecuteSequentially.
func (r *BuildRegistry) StartBuild(ctx context.Context, instanceName string, segmentCount int, sourcePath string) (*graphbuild.BuildRecord, error) {
	record, err := graphbuild.NewBuildRecord(kernel.NewUUID(), instanceName, segmentCount, sourcePath)
	if err != nil {
		return nil, err
	}

	uow := r.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	repo := uow.BuildRepository()
	if _, err = repo.GetInFlight(ctx, instanceName); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrBuildInFlight, instanceName)
	} else if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, err
	}

	if err = repo.Add(ctx, record); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "Build registered",
		"instance", instanceName, "build_id", record.ID().String(), "segments", segmentCount)
	return record, nil
}

// MarkBuilding transitions the record to Building.
func (r *BuildRegistry) MarkBuilding(ctx context.Context, buildID kernel.UUID) error {
	return r.mutate(ctx, buildID, func(record *graphbuild.BuildRecord) error {
		return record.MarkBuilding()
	})
}

// MarkTesting transitions the record into the external validation gate.
func (r *BuildRegistry) MarkTesting(ctx context.Context, buildID kernel.UUID) error {
	return r.mutate(ctx, buildID, func(record *graphbuild.BuildRecord) error {
		return record.MarkTesting()
	})
}

// MarkReady records successful compilation.
func (r *BuildRegistry) MarkReady(ctx context.Context, buildID kernel.UUID, outputPath string, avgWeight *float64) error {
	return r.mutate(ctx, buildID, func(record *graphbuild.BuildRecord) error {
		return record.MarkReady(outputPath, avgWeight)
	})
}

// MarkFailed records the failure with a bounded message. Every fatal
// pipeline path funnels through here before returning to the caller.
func (r *BuildRegistry) MarkFailed(ctx context.Context, buildID kernel.UUID, message string) error {
	return r.mutate(ctx, buildID, func(record *graphbuild.BuildRecord) error {
		return record.MarkFailed(message)
	})
}

// MarkDeployed promotes the record into active service and, in the same
// transaction, deprecates the instance's previously deployed record.
func (r *BuildRegistry) MarkDeployed(ctx context.Context, buildID kernel.UUID) error {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	repo := uow.BuildRepository()
	record, err := repo.Get(ctx, buildID)
	if err != nil {
		return err
	}

	previous, err := repo.GetLatestByStatus(ctx, record.InstanceName(), graphbuild.Deployed)
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	if err = record.MarkDeployed(); err != nil {
		return err
	}
	if err = repo.Update(ctx, record); err != nil {
		return err
	}

	if previous != nil && !previous.ID().IsEqual(record.ID()) {
		if err = previous.MarkDeprecated(); err != nil {
			return err
		}
		if err = repo.Update(ctx, previous); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}

// CurrentBuild returns the instance's non-terminal record, or nil when the
// instance has no build in flight.
func (r *BuildRegistry) CurrentBuild(ctx context.Context, instanceName string) (*graphbuild.BuildRecord, error) {
	return r.query(ctx, func(repo ports.BuildRepository) (*graphbuild.BuildRecord, error) {
		return repo.GetInFlight(ctx, instanceName)
	})
}

// LatestReady returns the instance's most recent Ready record, or nil.
func (r *BuildRegistry) LatestReady(ctx context.Context, instanceName string) (*graphbuild.BuildRecord, error) {
	return r.query(ctx, func(repo ports.BuildRepository) (*graphbuild.BuildRecord, error) {
		return repo.GetLatestByStatus(ctx, instanceName, graphbuild.Ready)
	})
}

// LatestDeployed returns the instance's most recent Deployed record, or nil.
func (r *BuildRegistry) LatestDeployed(ctx context.Context, instanceName string) (*graphbuild.BuildRecord, error) {
	return r.query(ctx, func(repo ports.BuildRepository) (*graphbuild.BuildRecord, error) {
		return repo.GetLatestByStatus(ctx, instanceName, graphbuild.Deployed)
	})
}

// History returns the instance's records newest-first, bounded to limit.
func (r *BuildRegistry) History(ctx context.Context, instanceName string, limit int) ([]*graphbuild.BuildRecord, error) {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	records, err := uow.BuildRepository().GetHistory(ctx, instanceName, limit)
	if err != nil {
		return nil, err
	}
	return records, uow.Commit(ctx)
}

// FailOrphans fails every non-terminal record found at startup. A crash
// mid-build leaves a Building record with no protecting lock; resuming is
// unsafe because the workspace state is unknown, and ignoring the record
// would block its instance forever.
func (r *BuildRegistry) FailOrphans(ctx context.Context) error {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	repo := uow.BuildRepository()
	orphans, err := repo.GetAllInFlight(ctx)
	if err != nil {
		return err
	}

	for _, orphan := range orphans {
		if err = orphan.MarkFailed("orphaned by process restart"); err != nil {
			return err
		}
		if err = repo.Update(ctx, orphan); err != nil {
			return err
		}
		r.logger.WarnContext(ctx, "Failed orphaned build",
			"instance", orphan.InstanceName(), "build_id", orphan.ID().String())
	}

	return uow.Commit(ctx)
}

func (r *BuildRegistry) mutate(ctx context.Context, buildID kernel.UUID, apply func(*graphbuild.BuildRecord) error) error {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	repo := uow.BuildRepository()
	record, err := repo.Get(ctx, buildID)
	if err != nil {
		return err
	}
	if err = apply(record); err != nil {
		return err
	}
	if err = repo.Update(ctx, record); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func (r *BuildRegistry) query(ctx context.Context, get func(ports.BuildRepository) (*graphbuild.BuildRecord, error)) (*graphbuild.BuildRecord, error) {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	record, err := get(uow.BuildRepository())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, uow.Commit(ctx)
	}
	if err != nil {
		return nil, err
	}
	return record, uow.Commit(ctx)
}
