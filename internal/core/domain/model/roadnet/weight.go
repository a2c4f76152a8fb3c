package roadnet

// DerivedWeight holds the per-segment numeric inputs fed to the exporter.
//
// The asymmetry between the two fields is intentional and load-bearing:
// RatingFactor is nil when a segment has no feedback — "no opinion", never
// defaulted to neutral — while TrafficFactor is always present and defaults
// to FreeFlowFactor when no condition is active. Collapsing the two into one
// convention would change routing behavior.
type DerivedWeight struct {
	RatingFactor  *float64
	TrafficFactor float64
}
