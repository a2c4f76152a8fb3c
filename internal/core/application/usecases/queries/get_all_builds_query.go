package queries

import (
	"errors"

	"routing/internal/pkg/guard"
)

var ErrGetAllBuildsQueryIsNotConstructed = errors.New(
	"GetAllBuildsQuery must be created via NewGetAllBuildsQuery constructor")

// GetAllBuildsQuery retrieves the latest build per instance name, giving a
// one-row-per-instance overview of the whole pipeline.
type GetAllBuildsQuery struct {
	guard guard.ConstructorGuard
}

// NewGetAllBuildsQuery creates a query for the pipeline overview. This is a
// parameterless query.
func NewGetAllBuildsQuery() GetAllBuildsQuery {
	return GetAllBuildsQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetAllBuildsQuery) Validate() error {
	return q.guard.Validate(ErrGetAllBuildsQueryIsNotConstructed)
}
