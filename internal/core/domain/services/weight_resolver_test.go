package services_test

import (
	"testing"
	"time"

	"routing/internal/core/domain/model/roadnet"
	"routing/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestWeightResolver_RatingFactor(t *testing.T) {
	resolver := services.NewWeightResolver()
	now := time.Now()

	t.Run("absent without feedback, never the traffic default", func(t *testing.T) {
		w := resolver.Resolve(roadnet.RoadSegment{ID: 1}, now)

		assert.Nil(t, w.RatingFactor)
		assert.InDelta(t, 5.0, w.TrafficFactor, 1e-9)
	})

	t.Run("numeric adjustment takes precedence over severity", func(t *testing.T) {
		segment := roadnet.RoadSegment{ID: 1, Feedback: []roadnet.FeedbackSample{
			{Adjustment: floatPtr(0.6), Severity: roadnet.SeverityCritical},
		}}

		w := resolver.Resolve(segment, now)

		// 0.5 - 0.6*0.5 = 0.2, not the CRITICAL value.
		require.NotNil(t, w.RatingFactor)
		assert.InDelta(t, 0.2, *w.RatingFactor, 1e-9)
	})

	t.Run("adjustment is clamped to [0,1]", func(t *testing.T) {
		for adjustment, want := range map[float64]float64{
			2.0:  0.0, // 0.5 - 1.0 clamps up to 0
			-3.0: 1.0, // 0.5 + 1.5 clamps down to 1
		} {
			segment := roadnet.RoadSegment{ID: 1, Feedback: []roadnet.FeedbackSample{
				{Adjustment: floatPtr(adjustment)},
			}}
			w := resolver.Resolve(segment, now)
			require.NotNil(t, w.RatingFactor)
			assert.InDelta(t, want, *w.RatingFactor, 1e-9)
		}
	})

	t.Run("severity fallback", func(t *testing.T) {
		segment := roadnet.RoadSegment{ID: 1, Feedback: []roadnet.FeedbackSample{
			{Severity: roadnet.SeverityMajor},
		}}

		w := resolver.Resolve(segment, now)

		require.NotNil(t, w.RatingFactor)
		assert.InDelta(t, 0.4, *w.RatingFactor, 1e-9)
	})

	t.Run("mean over mixed samples", func(t *testing.T) {
		segment := roadnet.RoadSegment{ID: 1, Feedback: []roadnet.FeedbackSample{
			{Adjustment: floatPtr(0.0)},            // 0.5
			{Severity: roadnet.SeverityMinor},      // 0.8
			{Severity: roadnet.Severity("WEIRD")}, // 0.5 unknown fallback
		}}

		w := resolver.Resolve(segment, now)

		require.NotNil(t, w.RatingFactor)
		assert.InDelta(t, 0.6, *w.RatingFactor, 1e-9)
	})
}

func TestWeightResolver_TrafficFactor(t *testing.T) {
	resolver := services.NewWeightResolver()
	now := time.Now()

	t.Run("exactly 5.0 without condition", func(t *testing.T) {
		w := resolver.Resolve(roadnet.RoadSegment{ID: 1}, now)
		assert.Equal(t, 5.0, w.TrafficFactor)
	})

	t.Run("active condition maps through the ordinal table", func(t *testing.T) {
		segment := roadnet.RoadSegment{ID: 1, Traffic: &roadnet.TrafficCondition{
			Level:     roadnet.TrafficCongested,
			ExpiresAt: now.Add(time.Hour),
		}}

		w := resolver.Resolve(segment, now)

		assert.InDelta(t, 1.0, w.TrafficFactor, 1e-9)
	})

	t.Run("expired condition falls back to free flow", func(t *testing.T) {
		segment := roadnet.RoadSegment{ID: 1, Traffic: &roadnet.TrafficCondition{
			Level:     roadnet.TrafficBlocked,
			ExpiresAt: now.Add(-time.Minute),
		}}

		w := resolver.Resolve(segment, now)

		assert.Equal(t, 5.0, w.TrafficFactor)
	})
}

func TestWeightResolver_ResolveAll(t *testing.T) {
	resolver := services.NewWeightResolver()
	now := time.Now()

	segments := []roadnet.RoadSegment{
		{ID: 10},
		{ID: 20, Feedback: []roadnet.FeedbackSample{{Severity: roadnet.SeverityMinor}}},
	}

	weights := resolver.ResolveAll(segments, now)

	require.Len(t, weights, 2)
	assert.Nil(t, weights[10].RatingFactor)
	require.NotNil(t, weights[20].RatingFactor)
	assert.InDelta(t, 0.8, *weights[20].RatingFactor, 1e-9)
}
