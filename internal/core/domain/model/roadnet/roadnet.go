package roadnet

import "time"

// Road is the administrative parent of a set of segments.
type Road struct {
	ID     int64
	Name   string
	Type   string
	OneWay bool
}

// RoadNode is a known point of the network. KnownID carries the external
// map identifier when the node was imported from public map data; it is nil
// for nodes created internally.
type RoadNode struct {
	ID      int64
	KnownID *int64
	Lat     float64
	Lon     float64
}

// RoadSegment is a directed piece of road geometry, the unit of weight
// computation and export.
//
// Geometry is the raw polyline as stored ("lat,lon;lat,lon;…"); parsing is
// deferred to the exporter so that a malformed row can be skipped there
// instead of failing the whole load. Feedback holds at most the most recent
// samples (bounded by the loader); Traffic is the single most recent
// unexpired condition, or nil.
type RoadSegment struct {
	ID         int64
	RoadID     int64
	Geometry   string
	OneWay     bool
	SpeedLimit *int
	Feedback   []FeedbackSample
	Traffic    *TrafficCondition
}

// FeedbackSample is one user rating of a segment. Adjustment, when present,
// is a numeric correction in [-1, 1] reported by the client; otherwise the
// categorical Severity applies.
type FeedbackSample struct {
	Adjustment *float64
	Severity   Severity
	CreatedAt  time.Time
}

// TrafficCondition is a live congestion report for a segment.
type TrafficCondition struct {
	Level     TrafficLevel
	ExpiresAt time.Time
}

// Active reports whether the condition has not yet expired at the given
// instant.
func (c TrafficCondition) Active(now time.Time) bool {
	return c.ExpiresAt.After(now)
}
