// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"
	"time"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/pkg/errs"
	"routing/internal/pkg/guard"
)

var ErrGetBuildStatusQueryIsNotConstructed = errors.New(
	"GetBuildStatusQuery must be created via NewGetBuildStatusQuery constructor")

// GetBuildStatusQuery retrieves the most recent build record for one
// instance name (a pipeline variant, the shared export, or the generation
// run itself).
type GetBuildStatusQuery struct {
	instanceName string

	guard guard.ConstructorGuard
}

// NewGetBuildStatusQuery creates a query for the given instance name.
func NewGetBuildStatusQuery(instanceName string) (GetBuildStatusQuery, error) {
	if instanceName == "" {
		return GetBuildStatusQuery{}, errs.NewValueIsRequiredError("instanceName")
	}
	return GetBuildStatusQuery{
		instanceName: instanceName,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (q GetBuildStatusQuery) InstanceName() string {
	return q.instanceName
}

// Validate ensures the query was created through the constructor.
func (q GetBuildStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetBuildStatusQueryIsNotConstructed)
}

// BuildResponse represents one build record in the read model.
type BuildResponse struct {
	ID           kernel.UUID
	InstanceName string
	Status       string
	SegmentCount int
	AvgWeight    *float64
	SourcePath   string
	OutputPath   string
	ErrorMessage string
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
	DeployedAt   *time.Time
}
