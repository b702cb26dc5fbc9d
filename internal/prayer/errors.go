package prayer

import (
	"errors"
	"fmt"
)

var (
	// ErrPolarDayOrNight means the sun never reaches an angle a prayer needs
	// on the requested date and no high-latitude rule placed it.
	ErrPolarDayOrNight = errors.New("sun does not reach the required angle on this date")

	// ErrInvalidDate is returned for impossible calendar days and UTC offsets
	// outside [-720, 840] minutes.
	ErrInvalidDate = errors.New("invalid prayer date")

	// ErrInvalidMethod is returned for methods with impossible angles or with
	// both or neither of IshaAngle and IshaInterval set.
	ErrInvalidMethod = errors.New("invalid calculation method")

	// ErrOutOfOrder is returned by Schedule.Validate.
	ErrOutOfOrder = errors.New("prayer times out of order")
)

// PolarError reports which prayer could not be placed and why.
type PolarError struct {
	Prayer Name
	// Angle is the solar altitude, in degrees, that the sun never reaches.
	// Negative values are below the horizon.
	Angle float64
	Date  Date
}

func (e *PolarError) Error() string {
	return fmt.Sprintf("%s unavailable on %s: sun never reaches %.2f° altitude",
		e.Prayer, e.Date, e.Angle)
}

func (e *PolarError) Unwrap() error { return ErrPolarDayOrNight }
