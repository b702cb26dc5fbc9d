package prayer

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Timestamp is one computed event.
type Timestamp struct {
	// Minutes since local midnight of the schedule's date. Values past 1440
	// fall on the next day, which happens for Midnight and for Isha at high
	// latitudes.
	Minutes float64 `json:"minutes"`
	// Time is the absolute instant, rounded to the nearest minute, in the
	// date's fixed UTC offset.
	Time time.Time `json:"time"`
}

func newTimestamp(d Date, minutes float64) Timestamp {
	return Timestamp{
		Minutes: minutes,
		Time:    d.Midnight().Add(time.Duration(math.Round(minutes)) * time.Minute),
	}
}

// Schedule is the result of Compute for one day.
type Schedule struct {
	Date     Date      `json:"date"`
	Fajr     Timestamp `json:"fajr"`
	Sunrise  Timestamp `json:"sunrise"`
	Dhuhr    Timestamp `json:"dhuhr"`
	Asr      Timestamp `json:"asr"`
	Sunset   Timestamp `json:"sunset"`
	Maghrib  Timestamp `json:"maghrib"`
	Isha     Timestamp `json:"isha"`
	Midnight Timestamp `json:"midnight"`
	// Adjusted lists the events placed by a high-latitude rule instead of
	// by their angle.
	Adjusted []Name `json:"adjusted,omitempty"`
}

// Get returns the timestamp of the named event.
func (s Schedule) Get(n Name) (Timestamp, bool) {
	switch n {
	case Fajr:
		return s.Fajr, true
	case Sunrise:
		return s.Sunrise, true
	case Dhuhr:
		return s.Dhuhr, true
	case Asr:
		return s.Asr, true
	case Sunset:
		return s.Sunset, true
	case Maghrib:
		return s.Maghrib, true
	case Isha:
		return s.Isha, true
	case Midnight:
		return s.Midnight, true
	}
	return Timestamp{}, false
}

// IsAdjusted reports whether the named event was placed by a high-latitude
// rule.
func (s Schedule) IsAdjusted(n Name) bool {
	return slices.Contains(s.Adjusted, n)
}

// Prayers returns the named events in the order given.
func (s Schedule) Prayers(names []Name) ([]Prayer, error) {
	prayers := make([]Prayer, 0, len(names))
	for _, n := range names {
		ts, ok := s.Get(n)
		if !ok {
			return nil, fmt.Errorf("unknown prayer name: %s", n)
		}
		prayers = append(prayers, Prayer{Name: n, Time: ts.Time, Adjusted: s.IsAdjusted(n)})
	}
	return prayers, nil
}

// order is the sequence Validate enforces.
var order = []Name{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

// Validate checks fajr < sunrise < dhuhr < asr < maghrib < isha.
func (s Schedule) Validate() error {
	if prev, next, bad := s.outOfOrder(); bad {
		a, _ := s.Get(prev)
		b, _ := s.Get(next)
		return fmt.Errorf("%w on %s: %s (%.1f) is not before %s (%.1f)",
			ErrOutOfOrder, s.Date, prev, a.Minutes, next, b.Minutes)
	}
	return nil
}

// outOfOrder returns the first consecutive pair of order that is not
// strictly increasing.
func (s Schedule) outOfOrder() (prev, next Name, bad bool) {
	for i := 1; i < len(order); i++ {
		a, _ := s.Get(order[i-1])
		b, _ := s.Get(order[i])
		if !(a.Minutes < b.Minutes) {
			return order[i-1], order[i], true
		}
	}
	return "", "", false
}
