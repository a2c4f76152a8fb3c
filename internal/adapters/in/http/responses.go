package http

import (
	"time"

	"routing/internal/core/application/usecases/queries"
	"routing/internal/core/domain/model/graphbuild"
	"routing/internal/core/ports"
)

// buildResponse is the wire shape of one build record.
type buildResponse struct {
	ID           string     `json:"id"`
	InstanceName string     `json:"instance_name"`
	Status       string     `json:"status"`
	SegmentCount int        `json:"segment_count"`
	AvgWeight    *float64   `json:"avg_weight,omitempty"`
	SourcePath   string     `json:"source_path,omitempty"`
	OutputPath   string     `json:"output_path,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	DeployedAt   *time.Time `json:"deployed_at,omitempty"`
}

func buildToResponse(record *graphbuild.BuildRecord) buildResponse {
	return buildResponse{
		ID:           record.ID().String(),
		InstanceName: record.InstanceName(),
		Status:       record.Status().String(),
		SegmentCount: record.SegmentCount(),
		AvgWeight:    record.AvgWeight(),
		SourcePath:   record.SourcePath(),
		OutputPath:   record.OutputPath(),
		ErrorMessage: record.ErrorMessage(),
		CreatedAt:    record.CreatedAt(),
		StartedAt:    record.StartedAt(),
		CompletedAt:  record.CompletedAt(),
		DeployedAt:   record.DeployedAt(),
	}
}

func queryToResponse(build queries.BuildResponse) buildResponse {
	return buildResponse{
		ID:           build.ID.String(),
		InstanceName: build.InstanceName,
		Status:       build.Status,
		SegmentCount: build.SegmentCount,
		AvgWeight:    build.AvgWeight,
		SourcePath:   build.SourcePath,
		OutputPath:   build.OutputPath,
		ErrorMessage: build.ErrorMessage,
		CreatedAt:    build.CreatedAt,
		StartedAt:    build.StartedAt,
		CompletedAt:  build.CompletedAt,
		DeployedAt:   build.DeployedAt,
	}
}

func buildResponses(builds []queries.BuildResponse) []buildResponse {
	responses := make([]buildResponse, 0, len(builds))
	for _, build := range builds {
		responses = append(responses, queryToResponse(build))
	}
	return responses
}

// engineResponse is the wire shape of one engine's status.
type engineResponse struct {
	Variant string `json:"variant"`
	State   string `json:"state"`
	Health  string `json:"health"`
}

func engineResponses(statuses []ports.EngineStatus) []engineResponse {
	responses := make([]engineResponse, 0, len(statuses))
	for _, status := range statuses {
		responses = append(responses, engineResponse{
			Variant: status.Variant,
			State:   string(status.State),
			Health:  string(status.Health),
		})
	}
	return responses
}
