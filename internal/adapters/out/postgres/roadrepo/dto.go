// Package roadrepo reads the road network for graph export. It is a
// read-only adapter: the routing service consumes the network the delivery
// platform maintains, it never writes it.
package roadrepo

import (
	"time"

	"routing/internal/core/domain/model/roadnet"
)

// RoadDTO mirrors the roads table.
type RoadDTO struct {
	ID     int64 `gorm:"primaryKey"`
	Name   string
	Type   string
	OneWay bool
}

func (RoadDTO) TableName() string {
	return "roads"
}

// RoadNodeDTO mirrors the road_nodes table. KnownID is the public map
// identifier for imported nodes, null for internally created ones.
type RoadNodeDTO struct {
	ID      int64 `gorm:"primaryKey"`
	KnownID *int64
	Lat     float64
	Lon     float64
}

func (RoadNodeDTO) TableName() string {
	return "road_nodes"
}

// RoadSegmentDTO mirrors the road_segments table. Geometry is the raw
// polyline text; it stays unparsed until export.
type RoadSegmentDTO struct {
	ID         int64 `gorm:"primaryKey"`
	RoadID     int64 `gorm:"index"`
	Geometry   string
	OneWay     bool
	SpeedLimit *int
}

func (RoadSegmentDTO) TableName() string {
	return "road_segments"
}

// FeedbackDTO mirrors the segment_feedback table.
type FeedbackDTO struct {
	ID         int64 `gorm:"primaryKey"`
	SegmentID  int64 `gorm:"index"`
	Adjustment *float64
	Severity   string
	CreatedAt  time.Time
}

func (FeedbackDTO) TableName() string {
	return "segment_feedback"
}

// TrafficConditionDTO mirrors the traffic_conditions table.
type TrafficConditionDTO struct {
	ID        int64 `gorm:"primaryKey"`
	SegmentID int64 `gorm:"index"`
	Level     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (TrafficConditionDTO) TableName() string {
	return "traffic_conditions"
}

func roadToDomain(dto RoadDTO) roadnet.Road {
	return roadnet.Road{
		ID:     dto.ID,
		Name:   dto.Name,
		Type:   dto.Type,
		OneWay: dto.OneWay,
	}
}

func nodeToDomain(dto RoadNodeDTO) roadnet.RoadNode {
	return roadnet.RoadNode{
		ID:      dto.ID,
		KnownID: dto.KnownID,
		Lat:     dto.Lat,
		Lon:     dto.Lon,
	}
}

func segmentToDomain(dto RoadSegmentDTO) roadnet.RoadSegment {
	return roadnet.RoadSegment{
		ID:         dto.ID,
		RoadID:     dto.RoadID,
		Geometry:   dto.Geometry,
		OneWay:     dto.OneWay,
		SpeedLimit: dto.SpeedLimit,
	}
}

func feedbackToDomain(dto FeedbackDTO) roadnet.FeedbackSample {
	return roadnet.FeedbackSample{
		Adjustment: dto.Adjustment,
		Severity:   roadnet.Severity(dto.Severity),
		CreatedAt:  dto.CreatedAt,
	}
}

func trafficToDomain(dto TrafficConditionDTO) *roadnet.TrafficCondition {
	return &roadnet.TrafficCondition{
		Level:     roadnet.TrafficLevel(dto.Level),
		ExpiresAt: dto.ExpiresAt,
	}
}
