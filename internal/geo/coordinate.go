package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is returned when a latitude or longitude is outside
// its valid range, or an elevation is negative or not a number.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is an observer position on the Earth. It is a value type:
// calculations take it by value and never modify it.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`  // degrees, -90..90, north positive
	Longitude float64 `json:"longitude"` // degrees, -180..180, east positive
	Elevation float64 `json:"elevation"` // metres above sea level, >= 0
}

// Validate checks the coordinate ranges. The returned error wraps
// ErrInvalidCoordinate.
func (c Coordinate) Validate() error {
	switch {
	case math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90:
		return fmt.Errorf("%w: latitude %v must be between -90 and 90", ErrInvalidCoordinate, c.Latitude)
	case math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180:
		return fmt.Errorf("%w: longitude %v must be between -180 and 180", ErrInvalidCoordinate, c.Longitude)
	case math.IsNaN(c.Elevation) || c.Elevation < 0:
		return fmt.Errorf("%w: elevation %v must be zero or positive", ErrInvalidCoordinate, c.Elevation)
	}
	return nil
}

// String formats the coordinate as "lat, lon" with four decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}
