package buildrepo

import (
	"context"
	"errors"

	"routing/internal/core/domain/model/graphbuild"
	"routing/internal/core/domain/model/kernel"
	"routing/internal/pkg/errs"

	"gorm.io/gorm"
)

// inFlightStatuses are the statuses a record can hold while its build is
// still running. Matches Status.IsInFlight.
var inFlightStatuses = []int{
	int(graphbuild.Pending),
	int(graphbuild.Building),
	int(graphbuild.Testing),
}

// GormBuildRepository implements ports.BuildRepository using GORM.
type GormBuildRepository struct {
	db *gorm.DB
}

// NewGormBuildRepository creates a new GORM build repository. The db handle
// may be a transaction; the unit of work passes its own.
func NewGormBuildRepository(db *gorm.DB) *GormBuildRepository {
	return &GormBuildRepository{db: db}
}

// Add saves a new build record to the database.
func (r *GormBuildRepository) Add(ctx context.Context, record *graphbuild.BuildRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	dto := fromDomain(record)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewDataAccessError("insert build record", err)
	}
	return nil
}

// Update saves the current state of an existing build record.
func (r *GormBuildRepository) Update(ctx context.Context, record *graphbuild.BuildRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	dto := fromDomain(record)
	result := r.db.WithContext(ctx).
		Model(&BuildDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return errs.NewDataAccessError("update build record", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("buildId", record.ID().String())
	}
	return nil
}

// Get retrieves a build record by ID.
func (r *GormBuildRepository) Get(ctx context.Context, id kernel.UUID) (*graphbuild.BuildRecord, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto BuildDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("buildId", id.String())
		}
		return nil, errs.NewDataAccessError("select build record", err)
	}

	return toDomain(dto)
}

// GetInFlight retrieves the instance's single non-terminal record.
func (r *GormBuildRepository) GetInFlight(ctx context.Context, instanceName string) (*graphbuild.BuildRecord, error) {
	var dto BuildDTO
	err := r.db.WithContext(ctx).
		Where("instance_name = ? AND status IN ?", instanceName, inFlightStatuses).
		Order("created_at DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("instanceName", instanceName)
		}
		return nil, errs.NewDataAccessError("select in-flight build", err)
	}

	return toDomain(dto)
}

// GetAllInFlight retrieves every non-terminal record across instances.
func (r *GormBuildRepository) GetAllInFlight(ctx context.Context) ([]*graphbuild.BuildRecord, error) {
	var dtos []BuildDTO
	err := r.db.WithContext(ctx).
		Where("status IN ?", inFlightStatuses).
		Order("created_at").
		Find(&dtos).Error
	if err != nil {
		return nil, errs.NewDataAccessError("select in-flight builds", err)
	}

	return toDomainSlice(dtos)
}

// GetLatestByStatus retrieves the instance's most recent record in the
// given status.
func (r *GormBuildRepository) GetLatestByStatus(
	ctx context.Context,
	instanceName string,
	status graphbuild.Status,
) (*graphbuild.BuildRecord, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}

	var dto BuildDTO
	err := r.db.WithContext(ctx).
		Where("instance_name = ? AND status = ?", instanceName, int(status)).
		Order("created_at DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("instanceName", instanceName)
		}
		return nil, errs.NewDataAccessError("select latest build by status", err)
	}

	return toDomain(dto)
}

// GetHistory retrieves the instance's records newest-first, bounded to
// limit rows.
func (r *GormBuildRepository) GetHistory(ctx context.Context, instanceName string, limit int) ([]*graphbuild.BuildRecord, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsInvalidError("limit")
	}

	var dtos []BuildDTO
	err := r.db.WithContext(ctx).
		Where("instance_name = ?", instanceName).
		Order("created_at DESC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, errs.NewDataAccessError("select build history", err)
	}

	return toDomainSlice(dtos)
}

func toDomainSlice(dtos []BuildDTO) ([]*graphbuild.BuildRecord, error) {
	records := make([]*graphbuild.BuildRecord, 0, len(dtos))
	for _, dto := range dtos {
		record, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
