package prayer

import (
	"fmt"
	"strings"
	"time"
)

// Name identifies a prayer or solar event in a schedule.
type Name string

const (
	Fajr     Name = "Fajr"
	Sunrise  Name = "Sunrise"
	Dhuhr    Name = "Dhuhr"
	Asr      Name = "Asr"
	Sunset   Name = "Sunset"
	Maghrib  Name = "Maghrib"
	Isha     Name = "Isha"
	Midnight Name = "Midnight"
)

// AllNames lists every event a Schedule carries, in chronological order.
var AllNames = []Name{Fajr, Sunrise, Dhuhr, Asr, Sunset, Maghrib, Isha, Midnight}

// DefaultNames are the events shown by default.
var DefaultNames = []Name{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

// ShortNames maps names to one or two character abbreviations.
var ShortNames = map[Name]string{
	Fajr:     "F",
	Sunrise:  "S",
	Dhuhr:    "D",
	Asr:      "A",
	Sunset:   "St",
	Maghrib:  "M",
	Isha:     "I",
	Midnight: "Mi",
}

// ParseName matches a name case-insensitively.
func ParseName(s string) (Name, error) {
	s = strings.TrimSpace(s)
	for _, n := range AllNames {
		if strings.EqualFold(string(n), s) {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown prayer name: %s", s)
}

// ParseNames parses a comma-separated list of names.
func ParseNames(s string) ([]Name, error) {
	var names []Name
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		n, err := ParseName(part)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, nil
}

// Prayer is one event of a schedule at its absolute time.
type Prayer struct {
	Name     Name
	Time     time.Time
	Adjusted bool // placed by a high-latitude rule
}

// NextPrayer finds the next upcoming prayer from the given slice, relative to now.
// If all prayers have passed it returns nil and the caller should look at
// the following day.
func NextPrayer(prayers []Prayer, now time.Time) *Prayer {
	for i := range prayers {
		if prayers[i].Time.After(now) {
			return &prayers[i]
		}
	}
	return nil
}

// CurrentPrayer returns the most recent prayer whose time has come, or nil
// before the first one.
func CurrentPrayer(prayers []Prayer, now time.Time) *Prayer {
	var cur *Prayer
	for i := range prayers {
		if prayers[i].Time.After(now) {
			break
		}
		cur = &prayers[i]
	}
	return cur
}

// TimeRemaining returns the duration until the given prayer time.
func TimeRemaining(p Prayer, now time.Time) time.Duration {
	return p.Time.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
