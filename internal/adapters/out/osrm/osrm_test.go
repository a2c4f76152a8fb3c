package osrm_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"routing/internal/adapters/out/osrm"
	"routing/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeGraph(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "road-graph.osm")
	require.NoError(t, os.WriteFile(path, []byte("<osm></osm>"), 0o644))
	return path
}

func TestWorkspaceStager_Stage(t *testing.T) {
	t.Run("creates isolated workspace with graph copy and profile", func(t *testing.T) {
		root := t.TempDir()
		stager := osrm.NewWorkspaceStager(root)

		dir, err := stager.Stage(context.Background(), "van-base", writeGraph(t), "-- profile")

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "van-base"), dir)

		graph, err := os.ReadFile(filepath.Join(dir, "road-graph.osm"))
		require.NoError(t, err)
		assert.Equal(t, "<osm></osm>", string(graph))

		profile, err := os.ReadFile(filepath.Join(dir, "profile.lua"))
		require.NoError(t, err)
		assert.Equal(t, "-- profile", string(profile))
	})

	t.Run("restaging replaces stale artifacts", func(t *testing.T) {
		stager := osrm.NewWorkspaceStager(t.TempDir())
		graphPath := writeGraph(t)

		dir, err := stager.Stage(context.Background(), "van-base", graphPath, "-- first")
		require.NoError(t, err)
		stale := filepath.Join(dir, "road-graph.osrm")
		require.NoError(t, os.WriteFile(stale, []byte("old dataset"), 0o644))

		_, err = stager.Stage(context.Background(), "van-base", graphPath, "-- second")
		require.NoError(t, err)

		_, err = os.Stat(stale)
		assert.True(t, os.IsNotExist(err))
		profile, err := os.ReadFile(filepath.Join(dir, "profile.lua"))
		require.NoError(t, err)
		assert.Equal(t, "-- second", string(profile))
	})

	t.Run("empty variant name is rejected", func(t *testing.T) {
		stager := osrm.NewWorkspaceStager(t.TempDir())

		_, err := stager.Stage(context.Background(), "", writeGraph(t), "-- profile")

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("missing graph file fails", func(t *testing.T) {
		stager := osrm.NewWorkspaceStager(t.TempDir())

		_, err := stager.Stage(context.Background(), "van-base", "/nowhere/road-graph.osm", "-- profile")

		require.Error(t, err)
	})
}

// writeFakeBinary installs an executable shell script under binDir.
func writeFakeBinary(t *testing.T, binDir, name, script string) {
	t.Helper()
	path := filepath.Join(binDir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
}

// stageWorkspace lays out a ready-to-compile workspace.
func stageWorkspace(t *testing.T) string {
	t.Helper()
	stager := osrm.NewWorkspaceStager(t.TempDir())
	dir, err := stager.Stage(context.Background(), "van-base", writeGraph(t), "-- profile")
	require.NoError(t, err)
	return dir
}

func TestCompiler_Compile(t *testing.T) {
	t.Run("runs all stages and returns dataset path", func(t *testing.T) {
		binDir := t.TempDir()
		log := filepath.Join(binDir, "stages.log")
		writeFakeBinary(t, binDir, "osrm-extract",
			fmt.Sprintf("echo extract >> %s\ntouch road-graph.osrm\n", log))
		writeFakeBinary(t, binDir, "osrm-partition",
			fmt.Sprintf("echo partition >> %s\n", log))
		writeFakeBinary(t, binDir, "osrm-customize",
			fmt.Sprintf("echo customize >> %s\n", log))
		workspace := stageWorkspace(t)

		compiler := osrm.NewCompiler(binDir, time.Minute, testLogger())
		outputPath, err := compiler.Compile(context.Background(), workspace)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(workspace, "road-graph.osrm"), outputPath)
		assert.FileExists(t, outputPath)

		order, err := os.ReadFile(log)
		require.NoError(t, err)
		assert.Equal(t, "extract\npartition\ncustomize\n", string(order))
	})

	t.Run("nonzero exit fails the stage and skips the rest", func(t *testing.T) {
		binDir := t.TempDir()
		log := filepath.Join(binDir, "stages.log")
		writeFakeBinary(t, binDir, "osrm-extract",
			"echo 'node id out of range' >&2\nexit 3\n")
		writeFakeBinary(t, binDir, "osrm-partition",
			fmt.Sprintf("echo partition >> %s\n", log))
		writeFakeBinary(t, binDir, "osrm-customize", "exit 0\n")
		workspace := stageWorkspace(t)

		compiler := osrm.NewCompiler(binDir, time.Minute, testLogger())
		_, err := compiler.Compile(context.Background(), workspace)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrExternalTool)

		var toolErr *errs.ExternalToolError
		require.ErrorAs(t, err, &toolErr)
		assert.Equal(t, "osrm-extract", toolErr.Stage)
		assert.Equal(t, 3, toolErr.ExitCode)
		assert.Contains(t, toolErr.Output, "node id out of range")

		_, statErr := os.Stat(log)
		assert.True(t, os.IsNotExist(statErr), "later stages must not run")
	})

	t.Run("stage deadline produces an external tool error", func(t *testing.T) {
		binDir := t.TempDir()
		writeFakeBinary(t, binDir, "osrm-extract", "sleep 5\n")
		workspace := stageWorkspace(t)

		compiler := osrm.NewCompiler(binDir, 100*time.Millisecond, testLogger())
		_, err := compiler.Compile(context.Background(), workspace)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrExternalTool)

		var toolErr *errs.ExternalToolError
		require.ErrorAs(t, err, &toolErr)
		assert.Equal(t, "osrm-extract", toolErr.Stage)
	})

	t.Run("missing binary fails with the stage name", func(t *testing.T) {
		workspace := stageWorkspace(t)

		compiler := osrm.NewCompiler(t.TempDir(), time.Minute, testLogger())
		_, err := compiler.Compile(context.Background(), workspace)

		require.Error(t, err)
		var toolErr *errs.ExternalToolError
		require.ErrorAs(t, err, &toolErr)
		assert.Equal(t, "osrm-extract", toolErr.Stage)
	})
}
