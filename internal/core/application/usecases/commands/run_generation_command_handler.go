package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"routing/internal/core/domain/model/graphbuild"
	"routing/internal/core/domain/model/profile"
	"routing/internal/core/domain/services"
	"routing/internal/core/ports"
)

// RunGenerationCommandHandler drives a full generation run. The run is
// tracked by a parent BuildRecord under GenerationRunInstance; every variant
// compile gets an independent child record named after the variant.
//
// The parent is fail-fast: a failed graph export fails the parent before any
// variant starts. Variant failures do not abort the loop; remaining variants
// still compile, and the parent is marked failed afterwards naming the
// variants that failed.
type RunGenerationCommandHandler struct {
	tracker  BuildTracker
	loader   ports.RoadNetworkLoader
	stager   ports.WorkspaceStager
	compiler ports.GraphCompiler
	resolver services.WeightResolver
	graphDir string
	logger   *slog.Logger
}

// NewRunGenerationCommandHandler creates a handler writing the shared graph
// into graphDir and compiling variants through stager and compiler.
func NewRunGenerationCommandHandler(
	tracker BuildTracker,
	loader ports.RoadNetworkLoader,
	stager ports.WorkspaceStager,
	compiler ports.GraphCompiler,
	graphDir string,
	logger *slog.Logger,
) RunGenerationCommandHandler {
	return RunGenerationCommandHandler{
		tracker:  tracker,
		loader:   loader,
		stager:   stager,
		compiler: compiler,
		resolver: services.NewWeightResolver(),
		graphDir: graphDir,
		logger:   logger.With("component", "run_generation_handler"),
	}
}

// Handle executes the run, blocking until any in-flight run under
// GenerationRunInstance finishes first. The returned record is the parent.
func (h *RunGenerationCommandHandler) Handle(ctx context.Context, cmd RunGenerationCommand) (*graphbuild.BuildRecord, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var parent *graphbuild.BuildRecord
	err := h.tracker.ExecuteSequentially(ctx, GenerationRunInstance, func(ctx context.Context) error {
		var err error
		parent, err = h.run(ctx, cmd.Variants())
		return err
	})
	if err != nil {
		return nil, err
	}
	return parent, nil
}

// TryHandle is Handle without queuing: when a run is already in flight the
// new one is skipped and (false, nil) is returned. Used by the scheduled
// nightly run.
func (h *RunGenerationCommandHandler) TryHandle(ctx context.Context, cmd RunGenerationCommand) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}
	return h.tracker.TryExecuteSequentially(ctx, GenerationRunInstance, func(ctx context.Context) error {
		_, err := h.run(ctx, cmd.Variants())
		return err
	})
}

func (h *RunGenerationCommandHandler) run(ctx context.Context, variants []profile.Variant) (*graphbuild.BuildRecord, error) {
	snapshot, err := loadNetworkSnapshot(ctx, h.loader)
	if err != nil {
		return nil, err
	}

	parent, err := h.tracker.StartBuild(ctx, GenerationRunInstance, len(snapshot.segments), "")
	if err != nil {
		return nil, err
	}
	if err = h.tracker.MarkBuilding(ctx, parent.ID()); err != nil {
		return nil, err
	}

	graphPath := filepath.Join(h.graphDir, sharedGraphFileName)
	graph, avg, err := exportSharedGraph(snapshot, h.resolver, graphPath, time.Now().UTC())
	if err != nil {
		_ = h.tracker.MarkFailed(ctx, parent.ID(), err.Error())
		return nil, err
	}
	h.logger.InfoContext(ctx, "Shared graph exported",
		"path", graphPath,
		"nodes", len(graph.Nodes()),
		"ways", len(graph.Ways()),
		"skipped_segments", graph.SkippedSegments())

	var failed []string
	for _, variant := range variants {
		if err := h.compileVariant(ctx, variant, graphPath, len(snapshot.segments), avg); err != nil {
			h.logger.ErrorContext(ctx, "Variant compile failed",
				"variant", variant.Name(), "error", err)
			failed = append(failed, variant.Name())
		}
	}

	if len(failed) > 0 {
		message := fmt.Sprintf("variants failed: %s", strings.Join(failed, ", "))
		if err := h.tracker.MarkFailed(ctx, parent.ID(), message); err != nil {
			return nil, err
		}
		return parent, nil
	}
	return parent, h.tracker.MarkReady(ctx, parent.ID(), graphPath, &avg)
}

// compileVariant tracks one variant compile under its own record. Every
// failure past record creation is recorded on the child before returning.
func (h *RunGenerationCommandHandler) compileVariant(
	ctx context.Context,
	variant profile.Variant,
	graphPath string,
	segmentCount int,
	avgWeight float64,
) error {
	child, err := h.tracker.StartBuild(ctx, variant.Name(), segmentCount, graphPath)
	if err != nil {
		return err
	}
	if err = h.tracker.MarkBuilding(ctx, child.ID()); err != nil {
		return err
	}

	outputPath, err := h.buildVariant(ctx, variant, graphPath)
	if err != nil {
		_ = h.tracker.MarkFailed(ctx, child.ID(), err.Error())
		return err
	}
	return h.tracker.MarkReady(ctx, child.ID(), outputPath, &avgWeight)
}

func (h *RunGenerationCommandHandler) buildVariant(ctx context.Context, variant profile.Variant, graphPath string) (string, error) {
	script, err := profile.Generate(variant)
	if err != nil {
		return "", err
	}
	workspaceDir, err := h.stager.Stage(ctx, variant.Name(), graphPath, script)
	if err != nil {
		return "", err
	}
	return h.compiler.Compile(ctx, workspaceDir)
}
