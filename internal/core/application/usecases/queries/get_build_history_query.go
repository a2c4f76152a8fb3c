package queries

import (
	"errors"

	"routing/internal/pkg/errs"
	"routing/internal/pkg/guard"
)

var ErrGetBuildHistoryQueryIsNotConstructed = errors.New(
	"GetBuildHistoryQuery must be created via NewGetBuildHistoryQuery constructor")

// maxHistoryLimit caps how many records a single history query may return.
const maxHistoryLimit = 100

// defaultHistoryLimit applies when the caller does not pass a limit.
const defaultHistoryLimit = 20

// GetBuildHistoryQuery retrieves the most recent build records of one
// instance, newest first.
type GetBuildHistoryQuery struct {
	instanceName string
	limit        int

	guard guard.ConstructorGuard
}

// NewGetBuildHistoryQuery creates a history query. A non-positive limit
// selects the default; limits above the cap are rejected.
func NewGetBuildHistoryQuery(instanceName string, limit int) (GetBuildHistoryQuery, error) {
	if instanceName == "" {
		return GetBuildHistoryQuery{}, errs.NewValueIsRequiredError("instanceName")
	}
	if limit > maxHistoryLimit {
		return GetBuildHistoryQuery{}, errs.NewValueIsInvalidError("limit")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return GetBuildHistoryQuery{
		instanceName: instanceName,
		limit:        limit,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (q GetBuildHistoryQuery) InstanceName() string {
	return q.instanceName
}

func (q GetBuildHistoryQuery) Limit() int {
	return q.limit
}

// Validate ensures the query was created through the constructor.
func (q GetBuildHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetBuildHistoryQueryIsNotConstructed)
}
