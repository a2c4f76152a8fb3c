package queries

import (
	"context"

	"gorm.io/gorm"
)

// GetAllBuildsQueryHandler retrieves the latest build record of every
// instance name seen so far.
type GetAllBuildsQueryHandler struct {
	db *gorm.DB
}

// NewGetAllBuildsQueryHandler creates a handler for the pipeline overview
// query.
func NewGetAllBuildsQueryHandler(db *gorm.DB) GetAllBuildsQueryHandler {
	return GetAllBuildsQueryHandler{db: db}
}

// Handle returns one row per instance name, each the most recently created
// record of that instance, sorted by instance name. An empty registry
// yields an empty slice, not an error.
func (h GetAllBuildsQueryHandler) Handle(
	ctx context.Context,
	query GetAllBuildsQuery,
) ([]BuildResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	builds := make([]BuildResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (instance_name)
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
		ORDER BY instance_name, created_at DESC
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		build, scanErr := scanBuildRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		builds = append(builds, build)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return builds, nil
}
