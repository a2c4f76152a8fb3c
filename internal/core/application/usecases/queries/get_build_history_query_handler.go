package queries

import (
	"context"

	"gorm.io/gorm"
)

// GetBuildHistoryQueryHandler retrieves the build history of one instance.
type GetBuildHistoryQueryHandler struct {
	db *gorm.DB
}

// NewGetBuildHistoryQueryHandler creates a handler for build history
// queries.
func NewGetBuildHistoryQueryHandler(db *gorm.DB) GetBuildHistoryQueryHandler {
	return GetBuildHistoryQueryHandler{db: db}
}

// Handle returns up to the query's limit of records for the instance,
// newest first. An unknown instance yields an empty slice.
func (h GetBuildHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetBuildHistoryQuery,
) ([]BuildResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	builds := make([]BuildResponse, 0, query.Limit())

	rows, err := h.db.WithContext(ctx).Raw(`
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
		LIMIT ?
	`, query.InstanceName(), query.Limit()).Rows()
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
