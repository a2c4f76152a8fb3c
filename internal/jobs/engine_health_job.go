package jobs

import (
	"context"
	"log/slog"

	"routing/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// engineHealthSchedule polls the fleet every 30 seconds.
const engineHealthSchedule = "*/30 * * * * *"

// EngineHealthJob periodically polls the engine fleet and logs variants
// that are not serving. It only observes; recovery is an operator decision
// through the control surface.
type EngineHealthJob struct {
	orchestrator ports.EngineOrchestrator
	cron         *cron.Cron
	logger       *slog.Logger
}

// NewEngineHealthJob creates a job polling orchestrator every 30 seconds.
func NewEngineHealthJob(orchestrator ports.EngineOrchestrator, logger *slog.Logger) *EngineHealthJob {
	return &EngineHealthJob{
		orchestrator: orchestrator,
		cron:         cron.New(cron.WithSeconds()),
		logger:       logger.With("component", "engine_health_job"),
	}
}

// Start begins the periodic health poll.
func (j *EngineHealthJob) Start() error {
	_, err := j.cron.AddFunc(engineHealthSchedule, func() {
		ctx := context.Background()

		statuses, statusErr := j.orchestrator.Status(ctx)
		if statusErr != nil {
			j.logger.ErrorContext(ctx, "Engine health poll failed", "error", statusErr)
			return
		}

		for _, status := range statuses {
			if status.State == ports.EngineRunning && status.Health == ports.EngineHealthy {
				continue
			}
			j.logger.WarnContext(ctx, "Engine is not serving",
				"variant", status.Variant,
				"state", string(status.State),
				"health", string(status.Health))
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Engine health job started (polling every 30 seconds)")
	return nil
}

// Stop stops the health poll.
func (j *EngineHealthJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Engine health job stopped")
}
