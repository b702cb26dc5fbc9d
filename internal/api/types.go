package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smokyabdulrahman/salat/internal/hijri"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

// Response is the top-level Al Adhan response.
type Response struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   Data   `json:"data"`
}

// Data holds the timings, the date and the request metadata.
type Data struct {
	Timings Timings  `json:"timings"`
	Date    DateInfo `json:"date"`
	Meta    Meta     `json:"meta"`
}

// Timings contains event times as "HH:MM", sometimes with a zone suffix
// like " (BST)".
type Timings struct {
	Fajr     string `json:"Fajr"`
	Sunrise  string `json:"Sunrise"`
	Dhuhr    string `json:"Dhuhr"`
	Asr      string `json:"Asr"`
	Sunset   string `json:"Sunset"`
	Maghrib  string `json:"Maghrib"`
	Isha     string `json:"Isha"`
	Midnight string `json:"Midnight"`
}

// Get returns the raw timing for n.
func (t Timings) Get(n prayer.Name) string {
	switch n {
	case prayer.Fajr:
		return t.Fajr
	case prayer.Sunrise:
		return t.Sunrise
	case prayer.Dhuhr:
		return t.Dhuhr
	case prayer.Asr:
		return t.Asr
	case prayer.Sunset:
		return t.Sunset
	case prayer.Maghrib:
		return t.Maghrib
	case prayer.Isha:
		return t.Isha
	case prayer.Midnight:
		return t.Midnight
	}
	return ""
}

// Clock parses the timing for n into minutes after local midnight. Midnight
// readings before noon belong to the following day and get 1440 added.
func (t Timings) Clock(n prayer.Name) (float64, error) {
	raw := t.Get(n)
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	hm, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s timing %q: %w", n, raw, err)
	}
	minutes := float64(hm.Hour()*60 + hm.Minute())
	if n == prayer.Midnight && minutes < 720 {
		minutes += 1440
	}
	return minutes, nil
}

// DateInfo contains date representations.
type DateInfo struct {
	Readable  string    `json:"readable"`
	Timestamp string    `json:"timestamp"`
	Hijri     HijriDate `json:"hijri"`
}

// HijriDate is the API's Hijri date. "salat verify" compares it with the
// local tabular conversion.
type HijriDate struct {
	Date  string     `json:"date"` // "DD-MM-YYYY"
	Day   string     `json:"day"`
	Month HijriMonth `json:"month"`
	Year  string     `json:"year"`
}

// Parse returns the date in the hijri package's terms. The API follows a
// sighting-based calendar, so day 30 is accepted in every month.
func (h HijriDate) Parse() (hijri.Date, error) {
	day, err := strconv.Atoi(h.Day)
	if err != nil {
		return hijri.Date{}, fmt.Errorf("%w: day %q", hijri.ErrInvalidDate, h.Day)
	}
	year, err := strconv.Atoi(h.Year)
	if err != nil {
		return hijri.Date{}, fmt.Errorf("%w: year %q", hijri.ErrInvalidDate, h.Year)
	}
	d := hijri.Date{Year: year, Month: h.Month.Number, Day: day}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 30 {
		return hijri.Date{}, fmt.Errorf("%w: %d-%02d-%02d", hijri.ErrInvalidDate, d.Year, d.Month, d.Day)
	}
	return d, nil
}

// HijriMonth is the month of a HijriDate.
type HijriMonth struct {
	Number int    `json:"number"`
	En     string `json:"en"`
}

// Meta contains the parameters the API actually used.
type Meta struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timezone  string     `json:"timezone"`
	Method    MethodInfo `json:"method"`
	School    string     `json:"school"`
}

// MethodInfo identifies the calculation method used.
type MethodInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
