package kernel

import (
	"fmt"

	"routing/internal/pkg/errs"
)

const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0
)

// GeoPoint is a WGS84 coordinate pair. It is the unit of road geometry:
// segment polylines and road nodes are sequences of GeoPoints.
//
// GeoPoint is an immutable value object; construct with NewGeoPoint.
type GeoPoint struct {
	lat float64
	lon float64
}

// NewGeoPoint creates a GeoPoint, validating that latitude is within
// [-90, 90] and longitude within [-180, 180].
func NewGeoPoint(lat, lon float64) (GeoPoint, error) {
	if lat < minLatitude || lat > maxLatitude {
		return GeoPoint{}, errs.NewValueIsInvalidErrorWithCause("latitude",
			fmt.Errorf("%f is outside [%v, %v]", lat, minLatitude, maxLatitude))
	}
	if lon < minLongitude || lon > maxLongitude {
		return GeoPoint{}, errs.NewValueIsInvalidErrorWithCause("longitude",
			fmt.Errorf("%f is outside [%v, %v]", lon, minLongitude, maxLongitude))
	}
	return GeoPoint{lat: lat, lon: lon}, nil
}

// Lat returns the latitude in decimal degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lon returns the longitude in decimal degrees.
func (p GeoPoint) Lon() float64 {
	return p.lon
}

// IsEqual reports exact coordinate equality. Quantized comparison is the
// exporter's concern, not the value object's.
func (p GeoPoint) IsEqual(other GeoPoint) bool {
	return p.lat == other.lat && p.lon == other.lon
}
