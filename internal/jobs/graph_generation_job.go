package jobs

import (
	"context"
	"log/slog"

	"routing/internal/core/application/usecases/commands"
	"routing/internal/core/domain/model/profile"

	"github.com/robfig/cron/v3"
)

// GraphGenerationJob triggers the full generation run on a schedule,
// nightly by default. A run already in flight is left alone: the next
// scheduled slot will pick up whatever data accumulated in the meantime,
// so queuing a second run would only produce a stale duplicate.
type GraphGenerationJob struct {
	handler  commands.RunGenerationCommandHandler
	variants []profile.Variant
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewGraphGenerationJob creates a job compiling the given variants on the
// cron schedule (standard five-field expression).
func NewGraphGenerationJob(
	handler commands.RunGenerationCommandHandler,
	variants []profile.Variant,
	schedule string,
	logger *slog.Logger,
) *GraphGenerationJob {
	return &GraphGenerationJob{
		handler:  handler,
		variants: variants,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "graph_generation_job"),
	}
}

// Start begins the scheduled generation runs.
func (j *GraphGenerationJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()

		cmd, cmdErr := commands.NewRunGenerationCommand(j.variants)
		if cmdErr != nil {
			j.logger.ErrorContext(ctx, "Scheduled generation run rejected", "error", cmdErr)
			return
		}

		started, runErr := j.handler.TryHandle(ctx, cmd)
		if runErr != nil {
			j.logger.ErrorContext(ctx, "Scheduled generation run failed", "error", runErr)
			return
		}
		if !started {
			j.logger.InfoContext(ctx, "Scheduled generation run skipped, another run is in flight")
			return
		}
		j.logger.InfoContext(ctx, "Scheduled generation run finished")
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Graph generation job started", "schedule", j.schedule)
	return nil
}

// Stop stops the scheduled runs. A run already executing finishes on its
// own.
func (j *GraphGenerationJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Graph generation job stopped")
}
