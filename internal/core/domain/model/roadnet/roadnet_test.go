package roadnet_test

import (
	"testing"
	"time"

	"routing/internal/core/domain/model/roadnet"

	"github.com/stretchr/testify/assert"
)

func TestSeverity_RatingValue(t *testing.T) {
	cases := map[roadnet.Severity]float64{
		roadnet.SeverityMinor:    0.8,
		roadnet.SeverityModerate: 0.6,
		roadnet.SeverityMajor:    0.4,
		roadnet.SeverityCritical: 0.2,
	}
	for severity, want := range cases {
		assert.InDelta(t, want, severity.RatingValue(), 1e-9, "severity %s", severity)
	}

	assert.InDelta(t, 0.5, roadnet.Severity("SOMETHING_NEW").RatingValue(), 1e-9)
	assert.InDelta(t, 0.5, roadnet.Severity("").RatingValue(), 1e-9)
}

func TestTrafficLevel_Factor(t *testing.T) {
	cases := map[roadnet.TrafficLevel]float64{
		roadnet.TrafficFreeFlow:  5.0,
		roadnet.TrafficNormal:    4.0,
		roadnet.TrafficSlow:      2.5,
		roadnet.TrafficCongested: 1.0,
		roadnet.TrafficBlocked:   0.0,
	}
	for level, want := range cases {
		assert.InDelta(t, want, level.Factor(), 1e-9, "level %s", level)
	}

	assert.InDelta(t, roadnet.FreeFlowFactor, roadnet.TrafficLevel("GRIDLOCK").Factor(), 1e-9)
}

func TestHighwayTag_IsTotal(t *testing.T) {
	assert.Equal(t, "primary", roadnet.HighwayTag("PRIMARY"))
	assert.Equal(t, "primary", roadnet.HighwayTag(" primary "))
	assert.Equal(t, "residential", roadnet.HighwayTag("residential"))
	assert.Equal(t, "unclassified", roadnet.HighwayTag("BOULEVARD"))
	assert.Equal(t, "unclassified", roadnet.HighwayTag(""))
}

func TestTrafficCondition_Active(t *testing.T) {
	now := time.Now()
	active := roadnet.TrafficCondition{Level: roadnet.TrafficSlow, ExpiresAt: now.Add(time.Minute)}
	expired := roadnet.TrafficCondition{Level: roadnet.TrafficSlow, ExpiresAt: now.Add(-time.Minute)}

	assert.True(t, active.Active(now))
	assert.False(t, expired.Active(now))
}
