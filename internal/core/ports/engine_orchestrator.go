package ports

import "context"

// EngineState is the container-level state of a variant's routing engine.
type EngineState string

const (
	EngineRunning EngineState = "running"
	EngineStopped EngineState = "stopped"
	EngineError   EngineState = "error"
	// EngineNotFound means no container exists for the variant yet. It is
	// a regular status, never an error: an unmanaged engine is not a fault.
	EngineNotFound EngineState = "not-found"
)

// EngineHealth is the result of probing a running engine with a
// representative routing query.
type EngineHealth string

const (
	EngineHealthy   EngineHealth = "healthy"
	EngineUnhealthy EngineHealth = "unhealthy"
	EngineStarting  EngineHealth = "starting"
)

// EngineStatus is one variant's combined container state and health.
type EngineStatus struct {
	Variant string
	State   EngineState
	Health  EngineHealth
}

// EngineOrchestrator manages the long-running routing-engine processes that
// serve compiled graphs, one per variant.
type EngineOrchestrator interface {
	// Status reports state and health for every configured variant. Health
	// probes use short timeouts so one slow engine cannot stall the poll.
	Status(ctx context.Context) ([]EngineStatus, error)

	Start(ctx context.Context, variantName string) error

	Stop(ctx context.Context, variantName string) error

	// Restart takes the graceful path and falls back to stop-then-start
	// when the runtime rejects it.
	Restart(ctx context.Context, variantName string) error

	// Rebuild stops and removes the variant's container, then recreates it
	// from the latest compiled output.
	Rebuild(ctx context.Context, variantName string, outputPath string) error

	// HealthCheck issues one representative routing query with a short
	// timeout. Any non-success, including timeout, is unhealthy.
	HealthCheck(ctx context.Context, variantName string) (EngineHealth, error)
}
