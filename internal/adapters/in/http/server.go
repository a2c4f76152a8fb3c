// Package http exposes the pipeline control surface: triggering builds,
// inspecting the registry, and operating the engine fleet.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"routing/internal/core/application/registry"
	"routing/internal/core/application/usecases/commands"
	"routing/internal/core/application/usecases/queries"
	"routing/internal/core/domain/model/graphbuild"
	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/profile"
	"routing/internal/core/ports"
	"routing/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// envelope is the uniform response body. Both fields are optional: reads
// fill Result, operations fill Message, failures fill both or either.
type envelope struct {
	Result  any    `json:"result,omitempty"`
	Message string `json:"message,omitempty"`
}

// deployRegistry is the slice of the build registry the rebuild endpoint
// needs: finding what to deploy and recording that it was.
type deployRegistry interface {
	LatestReady(ctx context.Context, instanceName string) (*graphbuild.BuildRecord, error)
	MarkDeployed(ctx context.Context, buildID kernel.UUID) error
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	exportGraphHandler   commands.ExportGraphCommandHandler
	runGenerationHandler commands.RunGenerationCommandHandler

	getAllBuildsHandler    queries.GetAllBuildsQueryHandler
	getBuildStatusHandler  queries.GetBuildStatusQueryHandler
	getBuildHistoryHandler queries.GetBuildHistoryQueryHandler

	registry     deployRegistry
	orchestrator ports.EngineOrchestrator
	variants     []profile.Variant
	logger       *slog.Logger
}

// NewServer creates the HTTP server with the required command and query
// handlers.
func NewServer(
	exportGraphHandler commands.ExportGraphCommandHandler,
	runGenerationHandler commands.RunGenerationCommandHandler,
	getAllBuildsHandler queries.GetAllBuildsQueryHandler,
	getBuildStatusHandler queries.GetBuildStatusQueryHandler,
	getBuildHistoryHandler queries.GetBuildHistoryQueryHandler,
	deployReg deployRegistry,
	orchestrator ports.EngineOrchestrator,
	variants []profile.Variant,
	logger *slog.Logger,
) *Server {
	return &Server{
		exportGraphHandler:     exportGraphHandler,
		runGenerationHandler:   runGenerationHandler,
		getAllBuildsHandler:    getAllBuildsHandler,
		getBuildStatusHandler:  getBuildStatusHandler,
		getBuildHistoryHandler: getBuildHistoryHandler,
		registry:               deployReg,
		orchestrator:           orchestrator,
		variants:               variants,
		logger:                 logger.With("component", "http_server"),
	}
}

// RegisterRoutes mounts every endpoint under /api/v1.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/graph/extract", s.ExtractGraph)
	api.POST("/graph/generate", s.GenerateGraphs)

	api.GET("/builds", s.GetBuilds)
	api.GET("/builds/:instance", s.GetBuild)
	api.GET("/builds/:instance/history", s.GetBuildHistory)

	api.GET("/engines", s.GetEngines)
	api.GET("/engines/:variant/health", s.GetEngineHealth)
	api.POST("/engines/:variant/start", s.StartEngine)
	api.POST("/engines/:variant/stop", s.StopEngine)
	api.POST("/engines/:variant/restart", s.RestartEngine)
	api.POST("/engines/:variant/rebuild", s.RebuildEngine)
}

// ExtractGraph handles POST /api/v1/graph/extract — exports the shared
// graph document without compiling any variant. Synchronous: the caller
// gets the finished build record.
func (s *Server) ExtractGraph(ctx echo.Context) error {
	record, err := s.exportGraphHandler.Handle(ctx.Request().Context(), commands.NewExportGraphCommand())
	if err != nil {
		return s.fail(ctx, err, "Graph extraction failed")
	}

	return ctx.JSON(http.StatusOK, envelope{
		Result:  buildToResponse(record),
		Message: "Graph extracted",
	})
}

// GenerateGraphs handles POST /api/v1/graph/generate — triggers a full
// generation run in the background. A run already in flight is left alone;
// progress is visible through the builds endpoints either way.
func (s *Server) GenerateGraphs(ctx echo.Context) error {
	cmd, err := commands.NewRunGenerationCommand(s.variants)
	if err != nil {
		return s.fail(ctx, err, "Generation run rejected")
	}

	go func() {
		started, runErr := s.runGenerationHandler.TryHandle(context.Background(), cmd)
		if runErr != nil {
			s.logger.Error("Generation run failed", "error", runErr)
			return
		}
		if !started {
			s.logger.Info("Generation run skipped, another run is in flight")
		}
	}()

	return ctx.JSON(http.StatusAccepted, envelope{
		Message: "Generation run triggered",
	})
}

// GetBuilds handles GET /api/v1/builds — latest build per instance.
func (s *Server) GetBuilds(ctx echo.Context) error {
	builds, err := s.getAllBuildsHandler.Handle(ctx.Request().Context(), queries.NewGetAllBuildsQuery())
	if err != nil {
		return s.fail(ctx, err, "Failed to retrieve builds")
	}

	return ctx.JSON(http.StatusOK, envelope{Result: buildResponses(builds)})
}

// GetBuild handles GET /api/v1/builds/:instance — latest build of one
// instance.
func (s *Server) GetBuild(ctx echo.Context) error {
	query, err := queries.NewGetBuildStatusQuery(ctx.Param("instance"))
	if err != nil {
		return s.fail(ctx, err, "Invalid instance name")
	}

	build, err := s.getBuildStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err, "Failed to retrieve build")
	}

	return ctx.JSON(http.StatusOK, envelope{Result: queryToResponse(build)})
}

// GetBuildHistory handles GET /api/v1/builds/:instance/history.
func (s *Server) GetBuildHistory(ctx echo.Context) error {
	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, parseErr := strconv.Atoi(raw)
		if parseErr != nil {
			return ctx.JSON(http.StatusBadRequest, envelope{Message: "Invalid limit"})
		}
		limit = parsed
	}

	query, err := queries.NewGetBuildHistoryQuery(ctx.Param("instance"), limit)
	if err != nil {
		return s.fail(ctx, err, "Invalid history request")
	}

	builds, err := s.getBuildHistoryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err, "Failed to retrieve build history")
	}

	return ctx.JSON(http.StatusOK, envelope{Result: buildResponses(builds)})
}

// GetEngines handles GET /api/v1/engines — state and health per variant.
func (s *Server) GetEngines(ctx echo.Context) error {
	statuses, err := s.orchestrator.Status(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err, "Failed to retrieve engine statuses")
	}

	return ctx.JSON(http.StatusOK, envelope{Result: engineResponses(statuses)})
}

// GetEngineHealth handles GET /api/v1/engines/:variant/health.
func (s *Server) GetEngineHealth(ctx echo.Context) error {
	health, err := s.orchestrator.HealthCheck(ctx.Request().Context(), ctx.Param("variant"))
	if err != nil {
		return s.fail(ctx, err, "Health check failed")
	}

	return ctx.JSON(http.StatusOK, envelope{Result: string(health)})
}

// StartEngine handles POST /api/v1/engines/:variant/start.
func (s *Server) StartEngine(ctx echo.Context) error {
	return s.engineOperation(ctx, "Engine started", s.orchestrator.Start)
}

// StopEngine handles POST /api/v1/engines/:variant/stop.
func (s *Server) StopEngine(ctx echo.Context) error {
	return s.engineOperation(ctx, "Engine stopped", s.orchestrator.Stop)
}

// RestartEngine handles POST /api/v1/engines/:variant/restart.
func (s *Server) RestartEngine(ctx echo.Context) error {
	return s.engineOperation(ctx, "Engine restarted", s.orchestrator.Restart)
}

func (s *Server) engineOperation(ctx echo.Context, message string, op func(context.Context, string) error) error {
	variantName := ctx.Param("variant")
	if err := op(ctx.Request().Context(), variantName); err != nil {
		return s.fail(ctx, err, "Engine operation failed")
	}

	return ctx.JSON(http.StatusOK, envelope{Message: message})
}

// RebuildEngine handles POST /api/v1/engines/:variant/rebuild — recreates
// the variant's engine from its latest ready build and records the
// deployment.
func (s *Server) RebuildEngine(ctx echo.Context) error {
	variantName := ctx.Param("variant")
	requestCtx := ctx.Request().Context()

	record, err := s.registry.LatestReady(requestCtx, variantName)
	if err != nil {
		return s.fail(ctx, err, "Failed to look up latest ready build")
	}
	if record == nil {
		return ctx.JSON(http.StatusConflict, envelope{
			Message: "No ready build to deploy for this variant",
		})
	}

	if err = s.orchestrator.Rebuild(requestCtx, variantName, record.OutputPath()); err != nil {
		return s.fail(ctx, err, "Engine rebuild failed")
	}
	if err = s.registry.MarkDeployed(requestCtx, record.ID()); err != nil {
		return s.fail(ctx, err, "Engine rebuilt but deployment was not recorded")
	}

	return ctx.JSON(http.StatusOK, envelope{
		Result:  buildToResponse(record),
		Message: "Engine rebuilt from latest ready build",
	})
}

// fail maps domain errors onto HTTP status codes and logs server faults.
func (s *Server) fail(ctx echo.Context, err error, message string) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, registry.ErrBuildInFlight):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(message, "error", err)
	}
	return ctx.JSON(status, envelope{Message: message + ": " + err.Error()})
}
