package exportgraph

import (
	"fmt"
	"strconv"
	"strings"

	"routing/internal/core/domain/model/kernel"
)

// ParseGeometry parses a stored polyline of the form
// "lat,lon;lat,lon;…" into geographic points. Whitespace around pairs is
// tolerated; anything else is a parse error, which the builder treats as a
// skippable segment rather than a fatal condition.
func ParseGeometry(geometry string) ([]kernel.GeoPoint, error) {
	trimmed := strings.TrimSpace(geometry)
	if trimmed == "" {
		return nil, fmt.Errorf("geometry is empty")
	}

	pairs := strings.Split(trimmed, ";")
	points := make([]kernel.GeoPoint, 0, len(pairs))
	for _, pair := range pairs {
		lat, lon, err := parsePair(pair)
		if err != nil {
			return nil, err
		}
		point, err := kernel.NewGeoPoint(lat, lon)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, nil
}

func parsePair(pair string) (lat, lon float64, err error) {
	parts := strings.Split(strings.TrimSpace(pair), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed coordinate pair %q", pair)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed latitude in %q: %w", pair, err)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed longitude in %q: %w", pair, err)
	}
	return lat, lon, nil
}
