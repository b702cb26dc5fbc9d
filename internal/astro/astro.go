// Package astro provides the solar geometry shared by the prayer-time and
// Qibla calculations: degree-based trigonometry, solar declination, the
// equation of time, and the horizon hour-angle solver.
//
// Everything here is a pure function of its arguments.
package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Refraction is the standard altitude correction, in degrees, applied to
// sunrise and sunset: 34' of atmospheric refraction plus 16' of solar
// semi-diameter.
const Refraction = 0.833

// DegToRad converts degrees to radians.
func DegToRad(d float64) float64 { return d * math.Pi / 180 }

// RadToDeg converts radians to degrees.
func RadToDeg(r float64) float64 { return r * 180 / math.Pi }

// Degree-based trigonometry.

func Sin(d float64) float64  { return math.Sin(DegToRad(d)) }
func Cos(d float64) float64  { return math.Cos(DegToRad(d)) }
func Tan(d float64) float64  { return math.Tan(DegToRad(d)) }
func Asin(x float64) float64 { return RadToDeg(math.Asin(x)) }
func Acos(x float64) float64 { return RadToDeg(math.Acos(x)) }

// Atan2 returns the angle of (x, y) in degrees, in (-180, 180].
func Atan2(y, x float64) float64 { return RadToDeg(math.Atan2(y, x)) }

// Acot returns the arc-cotangent of x in degrees.
func Acot(x float64) float64 { return RadToDeg(math.Atan(1 / x)) }

// Normalize360 maps any angle into [0, 360).
func Normalize360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	// A tiny negative remainder plus 360 rounds to exactly 360.
	if a >= 360 {
		a -= 360
	}
	return a
}

// Normalize180 maps any angle into [-180, 180].
func Normalize180(a float64) float64 {
	a = Normalize360(a)
	if a > 180 {
		a -= 360
	}
	return a
}

// ShortestDelta returns the signed rotation, in degrees within [-180, 180],
// that takes from onto to.
func ShortestDelta(from, to float64) float64 {
	return Normalize180(to - from)
}

// DayOfYear returns the 1-based ordinal day of the Gregorian date.
func DayOfYear(year int, month time.Month, day int) int {
	return julian.DayOfYearGregorian(year, int(month), day)
}

// J2000 is the Julian day of the J2000.0 epoch.
const J2000 = 2451545.0

// Sun holds the two solar quantities the prayer and Qibla code need.
type Sun struct {
	Declination    float64 // degrees
	EquationOfTime float64 // minutes, apparent minus mean solar time
}

// SunAt returns the solar declination and equation of time at Julian day jd,
// using the USNO low-precision solar coordinates (good to about 0.01 degree
// and a few seconds of time between 1950 and 2050).
func SunAt(jd float64) Sun {
	d := jd - J2000

	g := Normalize360(357.529 + 0.98560028*d)
	q := Normalize360(280.459 + 0.98564736*d)
	l := Normalize360(q + 1.915*Sin(g) + 0.020*Sin(2*g))
	e := 23.439 - 0.00000036*d

	ra := Normalize360(Atan2(Cos(e)*Sin(l), Cos(l)))
	return Sun{
		Declination:    Asin(Sin(e) * Sin(l)),
		EquationOfTime: Normalize180(q-ra) * 4,
	}
}

// JulianDay returns the Julian day of 0h UT on the given Gregorian date.
func JulianDay(year int, month time.Month, day int) float64 {
	return julian.CalendarGregorianToJD(year, int(month), float64(day))
}

// noonOfDay is the Julian day of 12h UT on the given ordinal day.
func noonOfDay(year, dayOfYear int) float64 {
	return julian.CalendarGregorianToJD(year, 1, float64(dayOfYear)+0.5)
}

// Declination returns the solar declination in degrees at noon UT of the
// given ordinal day.
func Declination(year, dayOfYear int) float64 {
	return SunAt(noonOfDay(year, dayOfYear)).Declination
}

// EquationOfTime returns the equation of time in minutes at noon UT of the
// given ordinal day.
func EquationOfTime(year, dayOfYear int) float64 {
	return SunAt(noonOfDay(year, dayOfYear)).EquationOfTime
}

// HourAngle returns the time, in hours, between solar noon and the moment the
// sun's centre reaches the given altitude (degrees, negative below the
// horizon) at latitude lat with solar declination decl.
//
// ok is false when the sun never reaches that altitude on the day, which is
// the polar day or polar night case.
func HourAngle(lat, decl, altitude float64) (hours float64, ok bool) {
	cosH := (Sin(altitude) - Sin(lat)*Sin(decl)) / (Cos(lat) * Cos(decl))
	if cosH < -1 || cosH > 1 || math.IsNaN(cosH) {
		return 0, false
	}
	return Acos(cosH) / 15, true
}

// HourAngleBelow is HourAngle for a depression angle below the horizon.
func HourAngleBelow(lat, decl, depression float64) (float64, bool) {
	return HourAngle(lat, decl, -depression)
}

// HorizonDip returns the extra depression of the visible horizon, in
// degrees, for an observer elevated the given number of metres.
func HorizonDip(elevation float64) float64 {
	if elevation <= 0 {
		return 0
	}
	return 0.0347 * math.Sqrt(elevation)
}
