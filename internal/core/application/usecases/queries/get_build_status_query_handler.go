package queries

import (
	"context"
	"database/sql"
	"errors"

	"routing/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetBuildStatusQueryHandler retrieves the latest build record for an
// instance. Uses direct SQL queries for optimal read performance in the
// CQRS pattern.
type GetBuildStatusQueryHandler struct {
	db *gorm.DB
}

// NewGetBuildStatusQueryHandler creates a handler for build status queries.
func NewGetBuildStatusQueryHandler(db *gorm.DB) GetBuildStatusQueryHandler {
	return GetBuildStatusQueryHandler{db: db}
}

// Handle returns the most recently created build record for the queried
// instance, regardless of its status. Returns ObjectNotFoundError when the
// instance has never been built.
func (h GetBuildStatusQueryHandler) Handle(
	ctx context.Context,
	query GetBuildStatusQuery,
) (BuildResponse, error) {
	if err := query.Validate(); err != nil {
		return BuildResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			instance_name,
			status,
			segment_count,
			avg_weight,
			source_path,
			output_path,
			error_message,
			created_at,
			started_at,
			completed_at,
			deployed_at
		FROM graph_builds
		WHERE instance_name = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, query.InstanceName()).Row()

	response, err := scanBuildRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return BuildResponse{}, errs.NewObjectNotFoundError("instanceName", query.InstanceName())
	}
	return response, err
}
