package queries

import (
	"routing/internal/core/domain/model/graphbuild"
	"routing/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanBuildRow maps one graph_builds row into the read model. Column order
// must match the SELECT lists in this package.
func scanBuildRow(row rowScanner) (BuildResponse, error) {
	var response BuildResponse
	var id uuid.UUID
	var status int

	err := row.Scan(
		&id,
		&response.InstanceName,
		&status,
		&response.SegmentCount,
		&response.AvgWeight,
		&response.SourcePath,
		&response.OutputPath,
		&response.ErrorMessage,
		&response.CreatedAt,
		&response.StartedAt,
		&response.CompletedAt,
		&response.DeployedAt,
	)
	if err != nil {
		return BuildResponse{}, err
	}

	buildID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return BuildResponse{}, err
	}
	response.ID = buildID
	response.Status = graphbuild.Status(status).String()

	return response, nil
}
