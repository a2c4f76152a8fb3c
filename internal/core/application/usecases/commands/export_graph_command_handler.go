package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"routing/internal/core/domain/model/graphbuild"
	"routing/internal/core/domain/services"
	"routing/internal/core/ports"
)

// sharedGraphFileName is the interchange document written into the graph
// directory and consumed by every variant's compile.
const sharedGraphFileName = "road-graph.osm"

// ExportGraphCommandHandler performs a standalone extraction: one shared
// graph document, tracked by a BuildRecord under GraphExportInstance.
type ExportGraphCommandHandler struct {
	tracker  BuildTracker
	loader   ports.RoadNetworkLoader
	resolver services.WeightResolver
	graphDir string
	logger   *slog.Logger
}

// NewExportGraphCommandHandler creates a handler writing the shared graph
// into graphDir.
func NewExportGraphCommandHandler(
	tracker BuildTracker,
	loader ports.RoadNetworkLoader,
	graphDir string,
	logger *slog.Logger,
) ExportGraphCommandHandler {
	return ExportGraphCommandHandler{
		tracker:  tracker,
		loader:   loader,
		resolver: services.NewWeightResolver(),
		graphDir: graphDir,
		logger:   logger.With("component", "export_graph_handler"),
	}
}

// Handle executes the extraction, serialized per GraphExportInstance. A
// caller arriving mid-extraction waits for the in-flight one to finish and
// then runs its own; the export is cheap relative to a full generation run
// and the fresh result may differ.
//
// The network is loaded before the BuildRecord is created because the
// record carries the segment count; a load failure therefore surfaces
// directly to the caller with no record to mark.
func (h *ExportGraphCommandHandler) Handle(ctx context.Context, cmd ExportGraphCommand) (*graphbuild.BuildRecord, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var record *graphbuild.BuildRecord
	err := h.tracker.ExecuteSequentially(ctx, GraphExportInstance, func(ctx context.Context) error {
		snapshot, err := loadNetworkSnapshot(ctx, h.loader)
		if err != nil {
			return err
		}

		record, err = h.tracker.StartBuild(ctx, GraphExportInstance, len(snapshot.segments), "")
		if err != nil {
			return err
		}
		if err = h.tracker.MarkBuilding(ctx, record.ID()); err != nil {
			return err
		}

		graphPath := filepath.Join(h.graphDir, sharedGraphFileName)
		graph, avg, err := exportSharedGraph(snapshot, h.resolver, graphPath, time.Now().UTC())
		if err != nil {
			_ = h.tracker.MarkFailed(ctx, record.ID(), err.Error())
			return err
		}

		h.logger.InfoContext(ctx, "Graph exported",
			"path", graphPath,
			"nodes", len(graph.Nodes()),
			"ways", len(graph.Ways()),
			"skipped_segments", graph.SkippedSegments())
		return h.tracker.MarkReady(ctx, record.ID(), graphPath, &avg)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
