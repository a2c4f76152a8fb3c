package roadnet

// TrafficLevel is the ordinal congestion level of a traffic condition.
type TrafficLevel string

const (
	TrafficFreeFlow  TrafficLevel = "FREE_FLOW"
	TrafficNormal    TrafficLevel = "NORMAL"
	TrafficSlow      TrafficLevel = "SLOW"
	TrafficCongested TrafficLevel = "CONGESTED"
	TrafficBlocked   TrafficLevel = "BLOCKED"
)

// FreeFlowFactor is the best-case traffic factor. It is the default for
// segments without an active condition: absence of traffic data means free
// flow, unlike absence of feedback which means "no rating at all".
const FreeFlowFactor = 5.0

// factorByLevel maps each level to its traffic factor in [0, 5].
var factorByLevel = map[TrafficLevel]float64{
	TrafficFreeFlow:  5.0,
	TrafficNormal:    4.0,
	TrafficSlow:      2.5,
	TrafficCongested: 1.0,
	TrafficBlocked:   0.0,
}

// Factor converts the level to its traffic factor. Unknown levels map to
// free flow so that an unrecognized upstream value never blocks a road.
func (l TrafficLevel) Factor() float64 {
	if v, ok := factorByLevel[l]; ok {
		return v
	}
	return FreeFlowFactor
}
