package graphbuild_test

import (
	"strings"
	"testing"

	"routing/internal/core/domain/model/graphbuild"
	"routing/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingRecord(t *testing.T) *graphbuild.BuildRecord {
	t.Helper()
	r, err := graphbuild.NewBuildRecord(kernel.NewUUID(), "graph-motorcycle", 1500, "/data/graph.xml")
	require.NoError(t, err)
	return r
}

func TestNewBuildRecord(t *testing.T) {
	t.Run("creates pending record", func(t *testing.T) {
		r := newPendingRecord(t)

		assert.Equal(t, graphbuild.Pending, r.Status())
		assert.Equal(t, "graph-motorcycle", r.InstanceName())
		assert.Equal(t, 1500, r.SegmentCount())
		assert.Equal(t, "/data/graph.xml", r.SourcePath())
		assert.False(t, r.CreatedAt().IsZero())
		assert.Nil(t, r.StartedAt())
		assert.Nil(t, r.CompletedAt())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := graphbuild.NewBuildRecord(kernel.UUID{}, "x", 1, "")
		require.Error(t, err)

		_, err = graphbuild.NewBuildRecord(kernel.NewUUID(), "", 1, "")
		require.Error(t, err)

		_, err = graphbuild.NewBuildRecord(kernel.NewUUID(), "x", -1, "")
		require.Error(t, err)
	})

	t.Run("unconstructed record rejects transitions", func(t *testing.T) {
		var r graphbuild.BuildRecord
		require.ErrorIs(t, r.MarkBuilding(), graphbuild.ErrBuildRecordIsNotConstructed)
	})
}

func TestBuildRecord_HappyPath(t *testing.T) {
	r := newPendingRecord(t)
	avg := 4.2

	require.NoError(t, r.MarkBuilding())
	assert.Equal(t, graphbuild.Building, r.Status())
	assert.NotNil(t, r.StartedAt())

	require.NoError(t, r.MarkReady("/data/compiled/graph-motorcycle.osrm", &avg))
	assert.Equal(t, graphbuild.Ready, r.Status())
	assert.Equal(t, "/data/compiled/graph-motorcycle.osrm", r.OutputPath())
	require.NotNil(t, r.AvgWeight())
	assert.InDelta(t, 4.2, *r.AvgWeight(), 1e-9)
	assert.NotNil(t, r.CompletedAt())

	require.NoError(t, r.MarkDeployed())
	assert.Equal(t, graphbuild.Deployed, r.Status())
	assert.NotNil(t, r.DeployedAt())

	require.NoError(t, r.MarkDeprecated())
	assert.Equal(t, graphbuild.Deprecated, r.Status())
}

func TestBuildRecord_TestingGate(t *testing.T) {
	r := newPendingRecord(t)

	require.NoError(t, r.MarkBuilding())
	require.NoError(t, r.MarkTesting())
	assert.Equal(t, graphbuild.Testing, r.Status())
	require.NoError(t, r.MarkReady("/out", nil))
}

func TestBuildRecord_MarkFailed(t *testing.T) {
	t.Run("stores message and completion time", func(t *testing.T) {
		r := newPendingRecord(t)
		require.NoError(t, r.MarkBuilding())

		require.NoError(t, r.MarkFailed("osrm-partition exited with code 2"))

		assert.Equal(t, graphbuild.Failed, r.Status())
		assert.Equal(t, "osrm-partition exited with code 2", r.ErrorMessage())
		assert.NotNil(t, r.CompletedAt())
	})

	t.Run("truncates oversized messages", func(t *testing.T) {
		r := newPendingRecord(t)
		huge := strings.Repeat("e", 10*graphbuild.MaxErrorMessageBytes)

		require.NoError(t, r.MarkFailed(huge))

		assert.Len(t, r.ErrorMessage(), graphbuild.MaxErrorMessageBytes)
	})

	t.Run("failed is terminal", func(t *testing.T) {
		r := newPendingRecord(t)
		require.NoError(t, r.MarkFailed("boom"))

		require.Error(t, r.MarkBuilding())
		require.Error(t, r.MarkReady("/out", nil))
	})
}

func TestBuildRecord_InvalidTransitions(t *testing.T) {
	r := newPendingRecord(t)

	// Pending cannot jump straight to Ready or Deployed.
	require.Error(t, r.MarkReady("/out", nil))
	require.Error(t, r.MarkDeployed())
	require.Error(t, r.MarkDeprecated())

	require.NoError(t, r.MarkBuilding())
	require.Error(t, r.MarkBuilding())

	// Ready requires an output path.
	require.Error(t, r.MarkReady("", nil))
	assert.Equal(t, graphbuild.Building, r.Status())
}

func TestRestoreBuildRecord(t *testing.T) {
	original := newPendingRecord(t)
	require.NoError(t, original.MarkBuilding())

	restored, err := graphbuild.RestoreBuildRecord(
		original.ID(),
		original.InstanceName(),
		original.Status(),
		original.SegmentCount(),
		original.AvgWeight(),
		original.SourcePath(),
		original.OutputPath(),
		original.ErrorMessage(),
		original.CreatedAt(),
		original.StartedAt(),
		original.CompletedAt(),
		original.DeployedAt(),
	)

	require.NoError(t, err)
	assert.True(t, restored.ID().IsEqual(original.ID()))
	assert.Equal(t, graphbuild.Building, restored.Status())

	// Restored records continue the state machine where they left off.
	require.NoError(t, restored.MarkFailed("orphaned by restart"))

	t.Run("rejects invalid status", func(t *testing.T) {
		_, err := graphbuild.RestoreBuildRecord(
			kernel.NewUUID(), "x", graphbuild.Unknown, 0, nil, "", "", "",
			original.CreatedAt(), nil, nil, nil,
		)
		require.Error(t, err)
	})
}
