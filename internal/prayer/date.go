package prayer

import (
	"fmt"
	"time"
)

// UTC offset bounds in minutes, covering every zone in use.
const (
	MinUTCOffset = -720
	MaxUTCOffset = 840
)

// Date is the Gregorian calendar day the schedule is computed for, together
// with the observer's UTC offset on that day.
type Date struct {
	Year             int        `json:"year"`
	Month            time.Month `json:"month"`
	Day              int        `json:"day"`
	UTCOffsetMinutes int        `json:"utc_offset_minutes"`
}

// DateFor returns the calendar day of t in t's location, with the UTC offset
// in effect at t.
func DateFor(t time.Time) Date {
	_, off := t.Zone()
	return Date{
		Year:             t.Year(),
		Month:            t.Month(),
		Day:              t.Day(),
		UTCOffsetMinutes: off / 60,
	}
}

// Validate checks that the day exists and the offset is in range.
func (d Date) Validate() error {
	if d.UTCOffsetMinutes < MinUTCOffset || d.UTCOffsetMinutes > MaxUTCOffset {
		return fmt.Errorf("%w: utc offset %d minutes outside [%d, %d]",
			ErrInvalidDate, d.UTCOffsetMinutes, MinUTCOffset, MaxUTCOffset)
	}
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != d.Year || t.Month() != d.Month || t.Day() != d.Day {
		return fmt.Errorf("%w: %04d-%02d-%02d does not exist", ErrInvalidDate, d.Year, int(d.Month), d.Day)
	}
	return nil
}

// Location returns a fixed zone for the date's UTC offset.
func (d Date) Location() *time.Location {
	return time.FixedZone(formatOffset(d.UTCOffsetMinutes), d.UTCOffsetMinutes*60)
}

// Midnight returns the start of the local day.
func (d Date) Midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, d.Location())
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d (%s)", d.Year, int(d.Month), d.Day, formatOffset(d.UTCOffsetMinutes))
}

func formatOffset(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, minutes/60, minutes%60)
}
