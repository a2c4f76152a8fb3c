package services

import (
	"time"

	"routing/internal/core/domain/model/roadnet"
)

// WeightResolver derives a rating factor and a traffic factor per segment
// from loaded feedback samples and traffic conditions.
//
// Rating: each sample converts to a [0, 1] value — from its explicit numeric
// adjustment when present (clamp(0, 1, 0.5 − adjustment×0.5)), otherwise
// from its severity label. The segment's factor is the arithmetic mean of
// its samples; with zero samples the factor is absent, never neutral.
//
// Traffic: the active condition's ordinal level maps to [0, 5]; without an
// active condition the factor is the free-flow maximum.
type WeightResolver struct{}

// NewWeightResolver creates a WeightResolver.
func NewWeightResolver() WeightResolver {
	return WeightResolver{}
}

// Resolve derives the weight for a single segment at the given instant.
// The instant matters only for traffic-condition expiry.
func (WeightResolver) Resolve(segment roadnet.RoadSegment, now time.Time) roadnet.DerivedWeight {
	weight := roadnet.DerivedWeight{
		TrafficFactor: roadnet.FreeFlowFactor,
	}

	if segment.Traffic != nil && segment.Traffic.Active(now) {
		weight.TrafficFactor = segment.Traffic.Level.Factor()
	}

	if len(segment.Feedback) > 0 {
		sum := 0.0
		for _, sample := range segment.Feedback {
			sum += sampleValue(sample)
		}
		mean := sum / float64(len(segment.Feedback))
		weight.RatingFactor = &mean
	}

	return weight
}

// ResolveAll derives weights for every segment, keyed by segment ID.
func (r WeightResolver) ResolveAll(segments []roadnet.RoadSegment, now time.Time) map[int64]roadnet.DerivedWeight {
	weights := make(map[int64]roadnet.DerivedWeight, len(segments))
	for _, segment := range segments {
		weights[segment.ID] = r.Resolve(segment, now)
	}
	return weights
}

func sampleValue(sample roadnet.FeedbackSample) float64 {
	if sample.Adjustment != nil {
		return clamp01(0.5 - *sample.Adjustment*0.5)
	}
	return sample.Severity.RatingValue()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
