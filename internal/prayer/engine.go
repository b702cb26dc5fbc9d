// Package prayer computes the daily Islamic prayer schedule for a location
// and date from the position of the sun.
//
// Every event is found by asking when the sun reaches a given altitude. The
// sun's position is evaluated at the event's own time and the result is
// refined once more, so declination and the equation of time track the sun
// through the day.
package prayer

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smokyabdulrahman/salat/internal/astro"
	"github.com/smokyabdulrahman/salat/internal/geo"
)

// refinements is the number of passes over the day's events.
const refinements = 2

type event int

const (
	evFajr event = iota
	evSunrise
	evDhuhr
	evAsr
	evSunset
	evMaghrib
	evIsha
	numEvents
)

// initialGuess is where each event is first looked for, in local solar hours.
var initialGuess = [numEvents]float64{5, 6, 12, 13, 18, 18, 18}

// engine holds the per-call constants. Times are in local mean solar hours
// at the observer's meridian until converted to clock time.
type engine struct {
	coord  geo.Coordinate
	date   Date
	method Method
	jd0    float64 // Julian day of local mean midnight
}

func (e *engine) sun(h float64) astro.Sun {
	return astro.SunAt(e.jd0 + h/24)
}

func (e *engine) noon(h float64) float64 {
	return 12 - e.sun(h).EquationOfTime/60
}

// horizon is the depression of sunrise and sunset, including the dip of the
// visible horizon for elevated observers.
func (e *engine) horizon() float64 {
	return astro.Refraction + astro.HorizonDip(e.coord.Elevation)
}

// at returns the time near h when the sun is at altitude, on the morning or
// the evening side of noon.
func (e *engine) at(altitude, h float64, morning bool) (float64, bool) {
	s := e.sun(h)
	ha, ok := astro.HourAngle(e.coord.Latitude, s.Declination, altitude)
	if !ok {
		return 0, false
	}
	noon := 12 - s.EquationOfTime/60
	if morning {
		return noon - ha, true
	}
	return noon + ha, true
}

// asrAltitude is the altitude at which a shadow reaches the school's length.
func (e *engine) asrAltitude(h float64) float64 {
	decl := e.sun(h).Declination
	return astro.Acot(e.method.Asr.ShadowFactor() + astro.Tan(math.Abs(e.coord.Latitude-decl)))
}

// pass computes every event once, evaluating the sun at the previous
// estimates in t.
func (e *engine) pass(t [numEvents]float64) (out [numEvents]float64, ok [numEvents]bool) {
	m := e.method

	out[evFajr], ok[evFajr] = e.at(-m.FajrAngle, t[evFajr], true)
	out[evSunrise], ok[evSunrise] = e.at(-e.horizon(), t[evSunrise], true)
	out[evDhuhr], ok[evDhuhr] = e.noon(t[evDhuhr]), true
	out[evAsr], ok[evAsr] = e.at(e.asrAltitude(t[evAsr]), t[evAsr], false)
	out[evSunset], ok[evSunset] = e.at(-e.horizon(), t[evSunset], false)

	if m.MaghribAngle > 0 {
		out[evMaghrib], ok[evMaghrib] = e.at(-m.MaghribAngle, t[evMaghrib], false)
	} else {
		out[evMaghrib], ok[evMaghrib] = out[evSunset], ok[evSunset]
	}

	if m.IshaAngle > 0 {
		out[evIsha], ok[evIsha] = e.at(-m.IshaAngle, t[evIsha], false)
	} else {
		// Placed from Maghrib after the passes.
		out[evIsha], ok[evIsha] = t[evIsha], true
	}
	return out, ok
}

func (e *engine) solve() (t [numEvents]float64, ok [numEvents]bool) {
	t = initialGuess
	for i := 0; i < refinements; i++ {
		var next [numEvents]float64
		next, ok = e.pass(t)
		for ev := range next {
			if ok[ev] {
				t[ev] = next[ev]
			}
		}
	}
	return t, ok
}

func (e *engine) polar(n Name, altitude float64) error {
	return &PolarError{Prayer: n, Angle: altitude, Date: e.date}
}

// Compute returns the prayer schedule for coord on date using method m.
//
// A *PolarError is returned when sunrise, sunset or Asr does not occur, and
// when Fajr, Isha or an angle-based Maghrib does not occur and the method's
// HighLatitude rule is None. It is also returned, naming the later event,
// when the final times (after margins and minute adjustments) are not in
// order, as happens near the poles where Asr falls minutes after Dhuhr.
func Compute(coord geo.Coordinate, date Date, m Method) (Schedule, error) {
	if err := coord.Validate(); err != nil {
		return Schedule{}, err
	}
	if err := date.Validate(); err != nil {
		return Schedule{}, err
	}
	if err := m.Validate(); err != nil {
		return Schedule{}, err
	}

	e := &engine{
		coord:  coord,
		date:   date,
		method: m,
		jd0:    astro.JulianDay(date.Year, date.Month, date.Day) - coord.Longitude/360,
	}
	t, ok := e.solve()

	if !ok[evSunrise] {
		return Schedule{}, e.polar(Sunrise, -e.horizon())
	}
	if !ok[evSunset] {
		return Schedule{}, e.polar(Sunset, -e.horizon())
	}
	if !ok[evAsr] {
		return Schedule{}, e.polar(Asr, e.asrAltitude(t[evAsr]))
	}

	night := 24 - (t[evSunset] - t[evSunrise])
	var adjusted []Name

	// fallback places an event that has no solution for its angle.
	fallback := func(ev event, n Name, angle float64, base float64, before bool) error {
		if ok[ev] {
			return nil
		}
		if m.HighLatitude == None {
			return e.polar(n, -angle)
		}
		portion := m.HighLatitude.portion(angle) * night
		if before {
			t[ev] = base - portion
		} else {
			t[ev] = base + portion
		}
		adjusted = append(adjusted, n)
		return nil
	}

	if err := fallback(evFajr, Fajr, m.FajrAngle, t[evSunrise], true); err != nil {
		return Schedule{}, err
	}
	if m.MaghribAngle > 0 {
		if err := fallback(evMaghrib, Maghrib, m.MaghribAngle, t[evSunset], false); err != nil {
			return Schedule{}, err
		}
	}
	if m.IshaAngle > 0 {
		if err := fallback(evIsha, Isha, m.IshaAngle, t[evMaghrib], false); err != nil {
			return Schedule{}, err
		}
	} else {
		t[evIsha] = t[evMaghrib] + m.IshaInterval.Hours()
	}

	t[evDhuhr] += m.DhuhrMargin.Hours()

	midnight := t[evSunset] + night/2
	if m.Midnight == MidnightJafari {
		midnight = t[evSunset] + (t[evFajr]+24-t[evSunset])/2
	}

	// Local solar hours to clock minutes.
	shift := float64(date.UTCOffsetMinutes)/60 - coord.Longitude/15
	minutes := func(h float64, adjust int) float64 {
		return (h+shift)*60 + float64(adjust)
	}

	adj := m.Adjustments
	s := Schedule{
		Date:     date,
		Fajr:     newTimestamp(date, minutes(t[evFajr], adj.Fajr)),
		Sunrise:  newTimestamp(date, minutes(t[evSunrise], adj.Sunrise)),
		Dhuhr:    newTimestamp(date, minutes(t[evDhuhr], adj.Dhuhr)),
		Asr:      newTimestamp(date, minutes(t[evAsr], adj.Asr)),
		Sunset:   newTimestamp(date, minutes(t[evSunset], adj.Sunset)),
		Maghrib:  newTimestamp(date, minutes(t[evMaghrib], adj.Maghrib)),
		Isha:     newTimestamp(date, minutes(t[evIsha], adj.Isha)),
		Midnight: newTimestamp(date, minutes(midnight, adj.Midnight)),
		Adjusted: adjusted,
	}
	if _, next, bad := s.outOfOrder(); bad {
		return Schedule{}, e.polar(next, e.altitude(next, t))
	}
	return s, nil
}

// altitude is the solar altitude that defines event n, for error reports.
func (e *engine) altitude(n Name, t [numEvents]float64) float64 {
	m := e.method
	switch {
	case n == Fajr:
		return -m.FajrAngle
	case n == Asr:
		return e.asrAltitude(t[evAsr])
	case n == Maghrib && m.MaghribAngle > 0:
		return -m.MaghribAngle
	case n == Isha && m.IshaAngle > 0:
		return -m.IshaAngle
	}
	return -e.horizon()
}

// ComputeRange computes consecutive days starting at the calendar day of
// start, in start's location. Each day uses the UTC offset in effect at its
// local noon, so ranges spanning a daylight-saving change stay correct.
//
// Days are computed concurrently. The result is in date order; the first
// failing day's error is returned.
func ComputeRange(ctx context.Context, coord geo.Coordinate, start time.Time, days int, m Method) ([]Schedule, error) {
	if days <= 0 {
		return nil, nil
	}

	loc := start.Location()
	out := make([]Schedule, days)
	errs := make([]error, days)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < days; i++ {
		i := i // per-iteration copy; go.mod targets go1.21 (pre-1.22 loop semantics)
		noon := time.Date(start.Year(), start.Month(), start.Day()+i, 12, 0, 0, 0, loc)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i], errs[i] = Compute(coord, DateFor(noon), m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
