package roadnet

// Severity is the categorical label of a feedback sample, used to derive a
// rating value when the sample carries no explicit numeric adjustment.
type Severity string

const (
	SeverityMinor    Severity = "MINOR"
	SeverityModerate Severity = "MODERATE"
	SeverityMajor    Severity = "MAJOR"
	SeverityCritical Severity = "CRITICAL"
)

// ratingBySeverity maps each severity to a [0, 1] rating value. Lower means
// worse: a CRITICAL report drags the segment's rating factor down hardest.
var ratingBySeverity = map[Severity]float64{
	SeverityMinor:    0.8,
	SeverityModerate: 0.6,
	SeverityMajor:    0.4,
	SeverityCritical: 0.2,
}

const severityRatingUnknown = 0.5

// RatingValue converts the severity to its [0, 1] rating value. The mapping
// is total: unknown labels map to the neutral 0.5 rather than failing, so a
// new label introduced upstream degrades gracefully.
func (s Severity) RatingValue() float64 {
	if v, ok := ratingBySeverity[s]; ok {
		return v
	}
	return severityRatingUnknown
}
