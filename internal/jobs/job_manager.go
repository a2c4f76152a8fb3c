package jobs

import (
	"fmt"
	"log/slog"

	"routing/internal/core/application/usecases/commands"
	"routing/internal/core/domain/model/profile"
	"routing/internal/core/ports"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	engineHealthJob    *EngineHealthJob
	graphGenerationJob *GraphGenerationJob
}

// NewJobManager creates a job manager wiring all background jobs.
func NewJobManager(
	runGenerationHandler commands.RunGenerationCommandHandler,
	orchestrator ports.EngineOrchestrator,
	variants []profile.Variant,
	generationSchedule string,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		engineHealthJob:    NewEngineHealthJob(orchestrator, logger),
		graphGenerationJob: NewGraphGenerationJob(runGenerationHandler, variants, generationSchedule, logger),
	}
}

// StartAll starts all scheduled jobs. Returns an error if any job fails to
// start, stopping jobs that already started.
func (jm *JobManager) StartAll() error {
	if err := jm.engineHealthJob.Start(); err != nil {
		return fmt.Errorf("failed to start engine health job: %w", err)
	}

	if err := jm.graphGenerationJob.Start(); err != nil {
		jm.engineHealthJob.Stop()
		return fmt.Errorf("failed to start graph generation job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.graphGenerationJob.Stop()
	jm.engineHealthJob.Stop()
}
