package graphbuild

import (
	"errors"
	"time"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/pkg/errs"
)

// MaxErrorMessageBytes bounds the failure message stored on a record.
// Compiler output can run to tens of megabytes; the record keeps only a
// prefix and the full capture stays in logs.
const MaxErrorMessageBytes = 1024

// ErrBuildRecordIsNotConstructed is returned when a BuildRecord was not
// created through NewBuildRecord or RestoreBuildRecord.
var ErrBuildRecordIsNotConstructed = errors.New(
	"BuildRecord must be created via NewBuildRecord or RestoreBuildRecord")

// BuildRecord is the aggregate tracking one build attempt of one instance
// name. All mutation goes through the Mark* transition methods, which
// delegate legality to the Status transition table and stamp timestamps.
type BuildRecord struct {
	id           kernel.UUID
	instanceName string
	status       Status
	segmentCount int
	avgWeight    *float64
	sourcePath   string
	outputPath   string
	errorMessage string
	createdAt    time.Time
	startedAt    *time.Time
	completedAt  *time.Time
	deployedAt   *time.Time

	isConstructed bool
}

// NewBuildRecord creates a Pending record for the given instance name.
// sourcePath may be empty when the graph file is not yet staged.
func NewBuildRecord(id kernel.UUID, instanceName string, segmentCount int, sourcePath string) (*BuildRecord, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if instanceName == "" {
		return nil, errs.NewValueIsRequiredError("instanceName")
	}
	if segmentCount < 0 {
		return nil, errs.NewValueIsInvalidError("segmentCount")
	}

	return &BuildRecord{
		id:            id,
		instanceName:  instanceName,
		status:        Pending,
		segmentCount:  segmentCount,
		sourcePath:    sourcePath,
		createdAt:     time.Now().UTC(),
		isConstructed: true,
	}, nil
}

// RestoreBuildRecord reconstructs a record from persistence without
// re-running creation-time validation beyond the essentials.
func RestoreBuildRecord(
	id kernel.UUID,
	instanceName string,
	status Status,
	segmentCount int,
	avgWeight *float64,
	sourcePath string,
	outputPath string,
	errorMessage string,
	createdAt time.Time,
	startedAt *time.Time,
	completedAt *time.Time,
	deployedAt *time.Time,
) (*BuildRecord, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if instanceName == "" {
		return nil, errs.NewValueIsRequiredError("instanceName")
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	return &BuildRecord{
		id:            id,
		instanceName:  instanceName,
		status:        status,
		segmentCount:  segmentCount,
		avgWeight:     avgWeight,
		sourcePath:    sourcePath,
		outputPath:    outputPath,
		errorMessage:  errorMessage,
		createdAt:     createdAt,
		startedAt:     startedAt,
		completedAt:   completedAt,
		deployedAt:    deployedAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the record was created through a constructor.
func (r *BuildRecord) Validate() error {
	if !r.isConstructed {
		return ErrBuildRecordIsNotConstructed
	}
	return nil
}

// MarkBuilding transitions Pending -> Building and stamps the start time.
func (r *BuildRecord) MarkBuilding() error {
	return r.transition(Building, func(now time.Time) {
		r.startedAt = &now
	})
}

// MarkTesting transitions Building -> Testing. The pipeline itself never
// calls this; it exists for an external validation gate.
func (r *BuildRecord) MarkTesting() error {
	return r.transition(Testing, nil)
}

// MarkReady records successful compilation: the compiled output path, an
// optional average-weight summary, and the completion time.
func (r *BuildRecord) MarkReady(outputPath string, avgWeight *float64) error {
	if outputPath == "" {
		return errs.NewValueIsRequiredError("outputPath")
	}
	return r.transition(Ready, func(now time.Time) {
		r.outputPath = outputPath
		r.avgWeight = avgWeight
		r.completedAt = &now
	})
}

// MarkFailed records the failure with a bounded message. Messages longer
// than MaxErrorMessageBytes are truncated before storage.
func (r *BuildRecord) MarkFailed(message string) error {
	if len(message) > MaxErrorMessageBytes {
		message = message[:MaxErrorMessageBytes]
	}
	return r.transition(Failed, func(now time.Time) {
		r.errorMessage = message
		r.completedAt = &now
	})
}

// MarkDeployed promotes a Ready build into active service.
func (r *BuildRecord) MarkDeployed() error {
	return r.transition(Deployed, func(now time.Time) {
		r.deployedAt = &now
	})
}

// MarkDeprecated retires a Deployed record superseded by a newer build.
func (r *BuildRecord) MarkDeprecated() error {
	return r.transition(Deprecated, nil)
}

func (r *BuildRecord) transition(target Status, stamp func(now time.Time)) error {
	if err := r.Validate(); err != nil {
		return err
	}

	next, err := r.status.TransitionTo(target)
	if err != nil {
		return err
	}

	r.status = next
	if stamp != nil {
		stamp(time.Now().UTC())
	}
	return nil
}

func (r *BuildRecord) ID() kernel.UUID         { return r.id }
func (r *BuildRecord) InstanceName() string    { return r.instanceName }
func (r *BuildRecord) Status() Status          { return r.status }
func (r *BuildRecord) SegmentCount() int       { return r.segmentCount }
func (r *BuildRecord) AvgWeight() *float64     { return r.avgWeight }
func (r *BuildRecord) SourcePath() string      { return r.sourcePath }
func (r *BuildRecord) OutputPath() string      { return r.outputPath }
func (r *BuildRecord) ErrorMessage() string    { return r.errorMessage }
func (r *BuildRecord) CreatedAt() time.Time    { return r.createdAt }
func (r *BuildRecord) StartedAt() *time.Time   { return r.startedAt }
func (r *BuildRecord) CompletedAt() *time.Time { return r.completedAt }
func (r *BuildRecord) DeployedAt() *time.Time  { return r.deployedAt }
