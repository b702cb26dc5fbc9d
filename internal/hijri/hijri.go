// Package hijri converts between Gregorian and Hijri (Islamic) dates using
// the tabular civil calendar: a 30-year cycle with 11 leap years at fixed
// positions and months alternating between 30 and 29 days.
//
// The tabular calendar is deterministic and works offline, but it is an
// approximation. Dates may differ by one day from those announced by local
// moon-sighting authorities or by the Umm al-Qura calendar. Callers that
// display a Hijri date should say so; see Approximation.
package hijri

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Approximation is a short notice suitable for showing next to a converted
// date.
const Approximation = "tabular calendar, may differ by one day from local moon sighting"

// Supported Hijri year range. 1 Muharram 1343 is 2 August 1924 and the last
// day of 1500 is 16 November 2077.
const (
	MinYear = 1343
	MaxYear = 1500
)

// epoch is the Julian day of 1 Muharram 1 AH (16 July 622, Julian calendar)
// in the civil reckoning.
const epoch = 1948439.5

// ErrInvalidDate is returned for Hijri dates outside the supported range or
// with an impossible month or day.
var ErrInvalidDate = errors.New("invalid hijri date")

// Date is a day in the Hijri calendar.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1..12
	Day   int `json:"day"`   // 1..30
}

// Gregorian is a day in the proleptic Gregorian calendar.
type Gregorian struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// Time returns midnight of the Gregorian day in the given location.
func (g Gregorian) Time(loc *time.Location) time.Time {
	return time.Date(g.Year, g.Month, g.Day, 0, 0, 0, 0, loc)
}

// String formats the day as YYYY-MM-DD.
func (g Gregorian) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", g.Year, int(g.Month), g.Day)
}

// IsLeapYear reports whether the Hijri year has 355 days. Dhu al-Hijjah
// then has 30 days instead of 29.
func IsLeapYear(year int) bool {
	return mod(14+11*year, 30) < 11
}

// MonthLength returns the number of days in the given Hijri month.
func MonthLength(year, month int) int {
	if month%2 == 1 || (month == 12 && IsLeapYear(year)) {
		return 30
	}
	return 29
}

// FromGregorian converts a Gregorian date to the tabular Hijri calendar.
func FromGregorian(year int, month time.Month, day int) Date {
	jd := math.Floor(julian.CalendarGregorianToJD(year, int(month), float64(day))) + 0.5
	return fromJD(jd)
}

// FromTime converts the calendar day of t, in t's location.
func FromTime(t time.Time) Date {
	return FromGregorian(t.Year(), t.Month(), t.Day())
}

// ToGregorian converts a Hijri date back to the Gregorian calendar. It is
// the exact inverse of FromGregorian over the supported range.
func ToGregorian(h Date) (Gregorian, error) {
	if err := h.Validate(); err != nil {
		return Gregorian{}, err
	}
	y, m, d := julian.JDToCalendar(toJD(h))
	return Gregorian{Year: y, Month: time.Month(m), Day: int(math.Floor(d))}, nil
}

// Validate checks that the date lies in the supported range and names a day
// that exists.
func (h Date) Validate() error {
	switch {
	case h.Year < MinYear || h.Year > MaxYear:
		return fmt.Errorf("%w: year %d outside %d..%d", ErrInvalidDate, h.Year, MinYear, MaxYear)
	case h.Month < 1 || h.Month > 12:
		return fmt.Errorf("%w: month %d outside 1..12", ErrInvalidDate, h.Month)
	case h.Day < 1 || h.Day > MonthLength(h.Year, h.Month):
		return fmt.Errorf("%w: day %d outside 1..%d for %s %d",
			ErrInvalidDate, h.Day, MonthLength(h.Year, h.Month), MonthName(h.Month), h.Year)
	}
	return nil
}

// String returns the date as "DD MonthName YYYY AH".
func (h Date) String() string {
	return fmt.Sprintf("%d %s %d AH", h.Day, MonthName(h.Month), h.Year)
}

// DaysBetween returns b - a in days. Day 30 of a 29-day month counts as the
// first of the next, so dates from sighting-based calendars compare sensibly.
func DaysBetween(a, b Date) int {
	return int(toJD(b) - toJD(a))
}

// toJD returns the Julian day of the start (0h UT) of the Hijri date.
func toJD(h Date) float64 {
	return float64(h.Day) +
		math.Ceil(29.5*float64(h.Month-1)) +
		float64((h.Year-1)*354) +
		math.Floor(float64(3+11*h.Year)/30) +
		epoch - 1
}

func fromJD(jd float64) Date {
	year := int(math.Floor((30*(jd-epoch) + 10646) / 10631))
	first := toJD(Date{Year: year, Month: 1, Day: 1})
	month := int(math.Ceil((jd-(29+first))/29.5)) + 1
	if month > 12 {
		month = 12
	}
	if month < 1 {
		month = 1
	}
	day := int(jd-toJD(Date{Year: year, Month: month, Day: 1})) + 1
	return Date{Year: year, Month: month, Day: day}
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
