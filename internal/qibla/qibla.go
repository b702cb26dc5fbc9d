// Package qibla computes the direction and distance from an observer to the
// Kaaba in Mecca along the great circle.
package qibla

import (
	"errors"
	"math"

	"github.com/smokyabdulrahman/salat/internal/astro"
	"github.com/smokyabdulrahman/salat/internal/geo"
)

// EarthRadiusKm is the mean Earth radius used for distances.
const EarthRadiusKm = 6371.0

// Kaaba is the fixed position of the Kaaba.
var Kaaba = geo.Coordinate{Latitude: 21.4225, Longitude: 39.8262}

// ErrCoincidentLocation is returned when the observer stands at the Kaaba,
// where the bearing is undefined.
var ErrCoincidentLocation = errors.New("observer is at the Kaaba; qibla bearing is undefined")

// coincidenceKm is the distance under which the bearing is treated as
// undefined. It is well below the precision of any device location.
const coincidenceKm = 1e-6

// Result is the qibla for one observer position.
type Result struct {
	Bearing  float64 `json:"bearing"`     // degrees clockwise from true north, [0, 360)
	Distance float64 `json:"distance_km"` // great-circle distance, km
}

// Bearing returns the initial great-circle bearing from c to the Kaaba and
// the great-circle distance between them.
func Bearing(c geo.Coordinate) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}

	d := Distance(c, Kaaba)
	if d < coincidenceKm {
		return Result{}, ErrCoincidentLocation
	}

	return Result{
		Bearing:  InitialBearing(c, Kaaba),
		Distance: d,
	}, nil
}

// InitialBearing returns the initial great-circle bearing from a to b, in
// degrees within [0, 360).
func InitialBearing(a, b geo.Coordinate) float64 {
	dLon := b.Longitude - a.Longitude
	y := astro.Sin(dLon) * astro.Cos(b.Latitude)
	x := astro.Cos(a.Latitude)*astro.Sin(b.Latitude) -
		astro.Sin(a.Latitude)*astro.Cos(b.Latitude)*astro.Cos(dLon)
	return astro.Normalize360(astro.Atan2(y, x))
}

// Distance returns the haversine great-circle distance between a and b in
// kilometres.
func Distance(a, b geo.Coordinate) float64 {
	dLat := astro.DegToRad(b.Latitude - a.Latitude)
	dLon := astro.DegToRad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		astro.Cos(a.Latitude)*astro.Cos(b.Latitude)*math.Sin(dLon/2)*math.Sin(dLon/2)
	h = math.Min(1, h)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// compassPoints are the 16 named directions, clockwise from north.
var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CompassPoint converts a bearing to its 16-point compass name.
func CompassPoint(bearing float64) string {
	idx := int(math.Floor((astro.Normalize360(bearing)+11.25)/22.5)) % len(compassPoints)
	return compassPoints[idx]
}
