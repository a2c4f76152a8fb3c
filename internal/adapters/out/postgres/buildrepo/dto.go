// Package buildrepo persists BuildRecord aggregates. It implements the
// repository pattern for the build registry, handling conversion between
// the domain aggregate and its database representation.
package buildrepo

import (
	"time"

	"routing/internal/core/domain/model/graphbuild"
	"routing/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// BuildDTO represents the database structure for persisting build records.
// Indexed by instance name and creation time: every registry query is
// either "latest per instance" or "history of one instance".
type BuildDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	InstanceName string    `gorm:"index:idx_builds_instance_created"`
	Status       int       `gorm:"index"`
	SegmentCount int
	AvgWeight    *float64
	SourcePath   string
	OutputPath   string
	ErrorMessage string
	CreatedAt    time.Time `gorm:"index:idx_builds_instance_created"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
	DeployedAt   *time.Time
}

// TableName specifies the database table name for build records.
func (BuildDTO) TableName() string {
	return "graph_builds"
}

// fromDomain converts a build record aggregate to its database
// representation.
func fromDomain(record *graphbuild.BuildRecord) BuildDTO {
	return BuildDTO{
		ID:           record.ID().Bytes(),
		InstanceName: record.InstanceName(),
		Status:       int(record.Status()),
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

// toDomain converts a database DTO back into the aggregate using
// RestoreBuildRecord.
func toDomain(dto BuildDTO) (*graphbuild.BuildRecord, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return graphbuild.RestoreBuildRecord(
		id,
		dto.InstanceName,
		graphbuild.Status(dto.Status),
		dto.SegmentCount,
		dto.AvgWeight,
		dto.SourcePath,
		dto.OutputPath,
		dto.ErrorMessage,
		dto.CreatedAt,
		dto.StartedAt,
		dto.CompletedAt,
		dto.DeployedAt,
	)
}
