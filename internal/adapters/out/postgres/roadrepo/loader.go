package roadrepo

import (
	"context"
	"time"

	"routing/internal/core/domain/model/roadnet"
	"routing/internal/pkg/errs"

	"gorm.io/gorm"
)

// segmentBatchSize bounds how many segment rows one query loads. Segment
// tables run to millions of rows; batching keeps the query layer's memory
// flat while the caller decides whether to accumulate.
const segmentBatchSize = 20_000

// maxFeedbackPerSegment caps how many feedback samples count towards a
// segment's rating. Older samples describe road state that no longer
// exists.
const maxFeedbackPerSegment = 10

// GormRoadNetworkLoader implements ports.RoadNetworkLoader using GORM.
type GormRoadNetworkLoader struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormRoadNetworkLoader creates a loader over the given connection.
func NewGormRoadNetworkLoader(db *gorm.DB) *GormRoadNetworkLoader {
	return &GormRoadNetworkLoader{db: db, now: time.Now}
}

// LoadRoads fetches every road in one query.
func (l *GormRoadNetworkLoader) LoadRoads(ctx context.Context) ([]roadnet.Road, error) {
	var dtos []RoadDTO
	if err := l.db.WithContext(ctx).Order("id").Find(&dtos).Error; err != nil {
		return nil, errs.NewDataAccessError("select roads", err)
	}

	roads := make([]roadnet.Road, 0, len(dtos))
	for _, dto := range dtos {
		roads = append(roads, roadToDomain(dto))
	}
	return roads, nil
}

// LoadNodes fetches every known node in one query.
func (l *GormRoadNetworkLoader) LoadNodes(ctx context.Context) ([]roadnet.RoadNode, error) {
	var dtos []RoadNodeDTO
	if err := l.db.WithContext(ctx).Order("id").Find(&dtos).Error; err != nil {
		return nil, errs.NewDataAccessError("select road nodes", err)
	}

	nodes := make([]roadnet.RoadNode, 0, len(dtos))
	for _, dto := range dtos {
		nodes = append(nodes, nodeToDomain(dto))
	}
	return nodes, nil
}

// LoadSegments streams segments to handle in id-ordered batches, each
// enriched with its recent feedback and live traffic condition. Returns
// ValidationError when the network has no segments at all: an empty export
// is always a data problem, never a valid graph.
func (l *GormRoadNetworkLoader) LoadSegments(ctx context.Context, handle func([]roadnet.RoadSegment) error) error {
	var lastID int64
	total := 0

	for {
		var dtos []RoadSegmentDTO
		err := l.db.WithContext(ctx).
			Where("id > ?", lastID).
			Order("id").
			Limit(segmentBatchSize).
			Find(&dtos).Error
		if err != nil {
			return errs.NewDataAccessError("select road segments", err)
		}
		if len(dtos) == 0 {
			break
		}

		batch, err := l.enrichBatch(ctx, dtos)
		if err != nil {
			return err
		}
		if err = handle(batch); err != nil {
			return err
		}

		total += len(dtos)
		lastID = dtos[len(dtos)-1].ID
		if len(dtos) < segmentBatchSize {
			break
		}
	}

	if total == 0 {
		return errs.NewValidationError("road network has no segments")
	}
	return nil
}

// enrichBatch attaches feedback and traffic to one batch of segments.
func (l *GormRoadNetworkLoader) enrichBatch(ctx context.Context, dtos []RoadSegmentDTO) ([]roadnet.RoadSegment, error) {
	ids := make([]int64, 0, len(dtos))
	for _, dto := range dtos {
		ids = append(ids, dto.ID)
	}

	feedback, err := l.loadFeedback(ctx, ids)
	if err != nil {
		return nil, err
	}
	traffic, err := l.loadTraffic(ctx, ids)
	if err != nil {
		return nil, err
	}

	segments := make([]roadnet.RoadSegment, 0, len(dtos))
	for _, dto := range dtos {
		segment := segmentToDomain(dto)
		segment.Feedback = feedback[dto.ID]
		segment.Traffic = traffic[dto.ID]
		segments = append(segments, segment)
	}
	return segments, nil
}

// loadFeedback returns up to maxFeedbackPerSegment most recent samples per
// segment, newest first.
func (l *GormRoadNetworkLoader) loadFeedback(ctx context.Context, segmentIDs []int64) (map[int64][]roadnet.FeedbackSample, error) {
	rows, err := l.db.WithContext(ctx).Raw(`
		SELECT segment_id, adjustment, severity, created_at
		FROM (
			SELECT
				segment_id,
				adjustment,
				severity,
				created_at,
				ROW_NUMBER() OVER (
					PARTITION BY segment_id
					ORDER BY created_at DESC, id DESC
				) AS rn
			FROM segment_feedback
			WHERE segment_id IN ?
		) ranked
		WHERE rn <= ?
	`, segmentIDs, maxFeedbackPerSegment).Rows()
	if err != nil {
		return nil, errs.NewDataAccessError("select segment feedback", err)
	}
	defer rows.Close()

	feedback := make(map[int64][]roadnet.FeedbackSample)
	for rows.Next() {
		var segmentID int64
		var dto FeedbackDTO
		if err = rows.Scan(&segmentID, &dto.Adjustment, &dto.Severity, &dto.CreatedAt); err != nil {
			return nil, errs.NewDataAccessError("scan segment feedback", err)
		}
		feedback[segmentID] = append(feedback[segmentID], feedbackToDomain(dto))
	}
	if err = rows.Err(); err != nil {
		return nil, errs.NewDataAccessError("iterate segment feedback", err)
	}
	return feedback, nil
}

// loadTraffic returns the single most recent unexpired condition per
// segment.
func (l *GormRoadNetworkLoader) loadTraffic(ctx context.Context, segmentIDs []int64) (map[int64]*roadnet.TrafficCondition, error) {
	var dtos []TrafficConditionDTO
	err := l.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (segment_id)
			id, segment_id, level, created_at, expires_at
		FROM traffic_conditions
		WHERE segment_id IN ? AND expires_at > ?
		ORDER BY segment_id, created_at DESC
	`, segmentIDs, l.now().UTC()).Scan(&dtos).Error
	if err != nil {
		return nil, errs.NewDataAccessError("select traffic conditions", err)
	}

	traffic := make(map[int64]*roadnet.TrafficCondition, len(dtos))
	for _, dto := range dtos {
		traffic[dto.SegmentID] = trafficToDomain(dto)
	}
	return traffic, nil
}
