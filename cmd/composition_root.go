package cmd

import (
	"log/slog"
	"strconv"
	"time"

	httpin "routing/internal/adapters/in/http"
	dockerout "routing/internal/adapters/out/docker"
	"routing/internal/adapters/out/osrm"
	"routing/internal/adapters/out/postgres"
	"routing/internal/adapters/out/postgres/roadrepo"
	"routing/internal/core/application/registry"
	"routing/internal/core/application/usecases/commands"
	"routing/internal/core/application/usecases/queries"
	"routing/internal/core/domain/model/profile"
	"routing/internal/jobs"

	"github.com/docker/docker/client"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

// defaultStageTimeout applies when STAGE_TIMEOUT is not set. Extract on a
// metropolitan network runs well under an hour.
const defaultStageTimeout = time.Hour

type CompositionRoot struct {
	config       Config
	gormDB       *gorm.DB
	logger       *slog.Logger
	registry     *registry.BuildRegistry
	variants     []profile.Variant
	orchestrator *dockerout.Orchestrator
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	variants, err := profile.ParseVariants(config.Variants)
	if err != nil {
		log.Fatalf("Invalid VARIANTS configuration: %v", err)
	}

	uowFactory := postgres.NewGormUnitOfWorkFactory(gormDB)
	return CompositionRoot{
		config:   config,
		gormDB:   gormDB,
		logger:   logger,
		registry: registry.NewBuildRegistry(uowFactory, logger),
		variants: variants,
	}
}

func (c *CompositionRoot) Variants() []profile.Variant {
	return c.variants
}

func (c *CompositionRoot) BuildRegistry() *registry.BuildRegistry {
	return c.registry
}

func (c *CompositionRoot) stageTimeout() time.Duration {
	if c.config.StageTimeout == "" {
		return defaultStageTimeout
	}
	timeout, err := time.ParseDuration(c.config.StageTimeout)
	if err != nil {
		log.Fatalf("Invalid STAGE_TIMEOUT configuration: %v", err)
	}
	return timeout
}

// enginePorts assigns each variant a host port counting up from the base
// port in variant order.
func (c *CompositionRoot) enginePorts() map[string]int {
	basePort, err := strconv.Atoi(c.config.EngineBasePort)
	if err != nil {
		log.Fatalf("Invalid ENGINE_BASE_PORT configuration: %v", err)
	}

	ports := make(map[string]int, len(c.variants))
	for i, variant := range c.variants {
		ports[variant.Name()] = basePort + i
	}
	return ports
}

func (c *CompositionRoot) CreateExportGraphCommandHandler() commands.ExportGraphCommandHandler {
	return commands.NewExportGraphCommandHandler(
		c.registry,
		roadrepo.NewGormRoadNetworkLoader(c.gormDB),
		c.config.GraphDir,
		c.logger,
	)
}

func (c *CompositionRoot) CreateRunGenerationCommandHandler() commands.RunGenerationCommandHandler {
	return commands.NewRunGenerationCommandHandler(
		c.registry,
		roadrepo.NewGormRoadNetworkLoader(c.gormDB),
		osrm.NewWorkspaceStager(c.config.WorkspaceDir),
		osrm.NewCompiler(c.config.OsrmBinDir, c.stageTimeout(), c.logger),
		c.config.GraphDir,
		c.logger,
	)
}

func (c *CompositionRoot) CreateGetAllBuildsQueryHandler() queries.GetAllBuildsQueryHandler {
	return queries.NewGetAllBuildsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetBuildStatusQueryHandler() queries.GetBuildStatusQueryHandler {
	return queries.NewGetBuildStatusQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetBuildHistoryQueryHandler() queries.GetBuildHistoryQueryHandler {
	return queries.NewGetBuildHistoryQueryHandler(c.gormDB)
}

// CreateEngineOrchestrator builds the orchestrator once; the job manager
// and the HTTP server share it.
func (c *CompositionRoot) CreateEngineOrchestrator() *dockerout.Orchestrator {
	if c.orchestrator != nil {
		return c.orchestrator
	}

	dockerClient, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		log.Fatalf("Failed to create Docker client: %v", err)
	}

	orchestrator, err := dockerout.NewOrchestrator(dockerClient, dockerout.Config{
		Image:      c.config.EngineImage,
		HostPorts:  c.enginePorts(),
		ProbeQuery: c.config.EngineProbeQuery,
	}, c.logger)
	if err != nil {
		log.Fatalf("Failed to create engine orchestrator: %v", err)
	}
	c.orchestrator = orchestrator
	return orchestrator
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateRunGenerationCommandHandler(),
		c.CreateEngineOrchestrator(),
		c.variants,
		c.config.GenerationSchedule,
		c.logger,
	)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateExportGraphCommandHandler(),
		c.CreateRunGenerationCommandHandler(),
		c.CreateGetAllBuildsQueryHandler(),
		c.CreateGetBuildStatusQueryHandler(),
		c.CreateGetBuildHistoryQueryHandler(),
		c.registry,
		c.CreateEngineOrchestrator(),
		c.variants,
		c.logger,
	)
}
