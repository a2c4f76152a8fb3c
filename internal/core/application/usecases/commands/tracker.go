package commands

import (
	"context"

	"routing/internal/core/domain/model/graphbuild"
	"routing/internal/core/domain/model/kernel"
)

// Instance names used by the pipeline handlers. Variant builds use the
// variant's own name as instance name.
const (
	// GraphExportInstance tracks standalone graph extractions.
	GraphExportInstance = "road-graph-export"

	// GenerationRunInstance tracks full multi-variant generation runs
	// (the parent record; each variant gets a child record).
	GenerationRunInstance = "generation-run"
)

// BuildTracker is the slice of the build registry the pipeline handlers
// depend on. Implemented by registry.BuildRegistry.
type BuildTracker interface {
	ExecuteSequentially(ctx context.Context, instanceName string, op func(ctx context.Context) error) error
	TryExecuteSequentially(ctx context.Context, instanceName string, op func(ctx context.Context) error) (bool, error)
	StartBuild(ctx context.Context, instanceName string, segmentCount int, sourcePath string) (*graphbuild.BuildRecord, error)
	MarkBuilding(ctx context.Context, buildID kernel.UUID) error
	MarkReady(ctx context.Context, buildID kernel.UUID, outputPath string, avgWeight *float64) error
	MarkFailed(ctx context.Context, buildID kernel.UUID, message string) error
}
