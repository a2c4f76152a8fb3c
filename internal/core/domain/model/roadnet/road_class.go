package roadnet

import "strings"

// highwayByRoadType maps the store's administrative road types to the
// highway tag vocabulary consumed by the external compiler.
var highwayByRoadType = map[string]string{
	"MOTORWAY":    "motorway",
	"TRUNK":       "trunk",
	"PRIMARY":     "primary",
	"SECONDARY":   "secondary",
	"TERTIARY":    "tertiary",
	"RESIDENTIAL": "residential",
	"SERVICE":     "service",
	"TRACK":       "track",
}

// HighwayTag maps an administrative road type to a highway tag. The mapping
// is total: every input, including an unrecognized or empty one, yields a
// value, with unknowns mapping to "unclassified".
func HighwayTag(roadType string) string {
	if tag, ok := highwayByRoadType[strings.ToUpper(strings.TrimSpace(roadType))]; ok {
		return tag
	}
	return "unclassified"
}
