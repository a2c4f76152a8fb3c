package registry_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"routing/internal/core/application/registry"
	"routing/internal/core/domain/model/graphbuild"
	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/ports"
	"routing/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBuildRepository is an in-memory BuildRepository preserving insertion
// order, shared across fake units of work.
type memoryBuildRepository struct {
	mu      sync.Mutex
	records []*graphbuild.BuildRecord
}

func (m *memoryBuildRepository) Add(_ context.Context, record *graphbuild.BuildRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func (m *memoryBuildRepository) Update(_ context.Context, _ *graphbuild.BuildRecord) error {
	// Records are shared pointers in this fake; mutation is already visible.
	return nil
}

func (m *memoryBuildRepository) Get(_ context.Context, id kernel.UUID) (*graphbuild.BuildRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID().IsEqual(id) {
			return r, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("buildId", id.String())
}

func (m *memoryBuildRepository) GetInFlight(_ context.Context, instanceName string) (*graphbuild.BuildRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if r.InstanceName() == instanceName && r.Status().IsInFlight() {
			return r, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("instanceName", instanceName)
}

func (m *memoryBuildRepository) GetAllInFlight(_ context.Context) ([]*graphbuild.BuildRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*graphbuild.BuildRecord
	for _, r := range m.records {
		if r.Status().IsInFlight() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryBuildRepository) GetLatestByStatus(_ context.Context, instanceName string, status graphbuild.Status) (*graphbuild.BuildRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if r.InstanceName() == instanceName && r.Status() == status {
			return r, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("instanceName", instanceName)
}

func (m *memoryBuildRepository) GetHistory(_ context.Context, instanceName string, limit int) ([]*graphbuild.BuildRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*graphbuild.BuildRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.records[i].InstanceName() == instanceName {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

type memoryUoW struct{ repo *memoryBuildRepository }

func (u *memoryUoW) Begin(context.Context) error            { return nil }
func (u *memoryUoW) Commit(context.Context) error           { return nil }
func (u *memoryUoW) Rollback(context.Context) error         { return nil }
func (u *memoryUoW) BuildRepository() ports.BuildRepository { return u.repo }

type memoryUoWFactory struct{ repo *memoryBuildRepository }

func (f *memoryUoWFactory) Create() ports.UnitOfWork { return &memoryUoW{repo: f.repo} }

func newRegistry() (*registry.BuildRegistry, *memoryBuildRepository) {
	repo := &memoryBuildRepository{}
	return registry.NewBuildRegistry(&memoryUoWFactory{repo: repo}, slog.Default()), repo
}

func TestBuildRegistry_StartBuild(t *testing.T) {
	ctx := t.Context()
	reg, _ := newRegistry()

	record, err := reg.StartBuild(ctx, "graph-van", 100, "/data/graph.xml")
	require.NoError(t, err)
	assert.Equal(t, graphbuild.Pending, record.Status())

	t.Run("second start for same instance is refused", func(t *testing.T) {
		_, err := reg.StartBuild(ctx, "graph-van", 100, "")
		require.ErrorIs(t, err, registry.ErrBuildInFlight)
	})

	t.Run("independent instance names do not conflict", func(t *testing.T) {
		_, err := reg.StartBuild(ctx, "graph-motorcycle", 100, "")
		require.NoError(t, err)
	})
}

func TestBuildRegistry_FailedBuildLeavesNoCurrent(t *testing.T) {
	ctx := t.Context()
	reg, _ := newRegistry()

	record, err := reg.StartBuild(ctx, "graph-van", 100, "")
	require.NoError(t, err)
	require.NoError(t, reg.MarkBuilding(ctx, record.ID()))

	current, err := reg.CurrentBuild(ctx, "graph-van")
	require.NoError(t, err)
	require.NotNil(t, current)

	require.NoError(t, reg.MarkFailed(ctx, record.ID(), "osrm-extract exited with code 1"))

	current, err = reg.CurrentBuild(ctx, "graph-van")
	require.NoError(t, err)
	assert.Nil(t, current, "FAILED is terminal and excluded from current")

	// The instance is free for a fresh attempt.
	_, err = reg.StartBuild(ctx, "graph-van", 100, "")
	require.NoError(t, err)
}

func TestBuildRegistry_ReadyAndDeployed(t *testing.T) {
	ctx := t.Context()
	reg, _ := newRegistry()
	avg := 3.7

	first, err := reg.StartBuild(ctx, "graph-van", 100, "")
	require.NoError(t, err)
	require.NoError(t, reg.MarkBuilding(ctx, first.ID()))
	require.NoError(t, reg.MarkReady(ctx, first.ID(), "/out/1", &avg))
	require.NoError(t, reg.MarkDeployed(ctx, first.ID()))

	second, err := reg.StartBuild(ctx, "graph-van", 120, "")
	require.NoError(t, err)
	require.NoError(t, reg.MarkBuilding(ctx, second.ID()))
	require.NoError(t, reg.MarkReady(ctx, second.ID(), "/out/2", nil))

	latestReady, err := reg.LatestReady(ctx, "graph-van")
	require.NoError(t, err)
	require.NotNil(t, latestReady)
	assert.True(t, latestReady.ID().IsEqual(second.ID()))

	t.Run("deployment deprecates the superseded record", func(t *testing.T) {
		require.NoError(t, reg.MarkDeployed(ctx, second.ID()))

		deployed, err := reg.LatestDeployed(ctx, "graph-van")
		require.NoError(t, err)
		require.NotNil(t, deployed)
		assert.True(t, deployed.ID().IsEqual(second.ID()))
		assert.Equal(t, graphbuild.Deprecated, first.Status())
	})
}

func TestBuildRegistry_History(t *testing.T) {
	ctx := t.Context()
	reg, _ := newRegistry()

	for range 5 {
		r, err := reg.StartBuild(ctx, "graph-van", 10, "")
		require.NoError(t, err)
		require.NoError(t, reg.MarkFailed(ctx, r.ID(), "x"))
	}

	history, err := reg.History(ctx, "graph-van", 3)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestBuildRegistry_ExecuteSequentially(t *testing.T) {
	ctx := t.Context()
	reg, repo := newRegistry()

	// Concurrent full attempts on one instance: the one-in-flight invariant
	// must hold at every instant.
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.ExecuteSequentially(context.Background(), "graph-van", func(opCtx context.Context) error {
				record, err := reg.StartBuild(opCtx, "graph-van", 10, "")
				if err != nil {
					return err
				}
				if err := reg.MarkBuilding(opCtx, record.ID()); err != nil {
					return err
				}
				return reg.MarkFailed(opCtx, record.ID(), "done")
			})
		}()
	}
	wg.Wait()

	inFlight, err := repo.GetAllInFlight(ctx)
	require.NoError(t, err)
	assert.Empty(t, inFlight)

	history, err := reg.History(ctx, "graph-van", 100)
	require.NoError(t, err)
	assert.Len(t, history, 8, "every waiter ran exactly once, none enqueued extra builds")
}

func TestBuildRegistry_TryExecuteSequentially(t *testing.T) {
	reg, _ := newRegistry()

	blocker := make(chan struct{})
	running := make(chan struct{})
	go func() {
		_ = reg.ExecuteSequentially(context.Background(), "graph-van", func(context.Context) error {
			close(running)
			<-blocker
			return nil
		})
	}()
	<-running

	started, err := reg.TryExecuteSequentially(context.Background(), "graph-van", func(context.Context) error {
		t.Fatal("must not run while instance is busy")
		return nil
	})
	require.NoError(t, err, "a busy instance is not an error condition")
	assert.False(t, started)

	close(blocker)
}

func TestBuildRegistry_FailOrphans(t *testing.T) {
	ctx := t.Context()
	reg, _ := newRegistry()

	orphan, err := reg.StartBuild(ctx, "graph-van", 10, "")
	require.NoError(t, err)
	require.NoError(t, reg.MarkBuilding(ctx, orphan.ID()))

	done, err := reg.StartBuild(ctx, "graph-motorcycle", 10, "")
	require.NoError(t, err)
	require.NoError(t, reg.MarkFailed(ctx, done.ID(), "x"))

	require.NoError(t, reg.FailOrphans(ctx))

	assert.Equal(t, graphbuild.Failed, orphan.Status())
	assert.Equal(t, "orphaned by process restart", orphan.ErrorMessage())

	current, err := reg.CurrentBuild(ctx, "graph-van")
	require.NoError(t, err)
	assert.Nil(t, current)
}
