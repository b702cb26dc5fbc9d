package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/config"
	"github.com/smokyabdulrahman/salat/internal/geo"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

var errNoLocation = errors.New("no location configured; pass --latitude and --longitude, or run 'salat config set latitude <deg>' and 'salat config set longitude <deg>'")

// settings is the effective configuration resolved into domain values.
type settings struct {
	Coord   geo.Coordinate
	Loc     *time.Location
	Method  prayer.Method
	Names   []prayer.Name
	TimeFmt string // Go layout for clock times
	Label   string // "City, Country" or the coordinates
}

// resolveSettings validates cfg and turns it into domain values.
func resolveSettings(cfg *config.Config) (settings, error) {
	var s settings

	if !cfg.HasLocation() {
		return s, errNoLocation
	}
	s.Coord = geo.Coordinate{Latitude: *cfg.Latitude, Longitude: *cfg.Longitude}
	if cfg.Elevation != nil {
		s.Coord.Elevation = *cfg.Elevation
	}
	if err := s.Coord.Validate(); err != nil {
		return s, err
	}

	s.Loc = time.Local
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return s, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
		s.Loc = loc
	}

	m, err := resolveMethod(cfg)
	if err != nil {
		return s, err
	}
	s.Method = m

	s.Names = prayer.DefaultNames
	if cfg.Prayers != "" {
		names, err := prayer.ParseNames(cfg.Prayers)
		if err != nil {
			return s, err
		}
		if len(names) > 0 {
			s.Names = names
		}
	}

	s.TimeFmt, err = goTimeFormat(cfg.TimeFormat)
	if err != nil {
		return s, err
	}

	s.Label = locationLabel(cfg, s.Coord)
	return s, nil
}

// resolveMethod looks up the preset and applies the school, high latitude
// and minute adjustment overrides. User adjustments add to the preset's own.
func resolveMethod(cfg *config.Config) (prayer.Method, error) {
	m, err := prayer.ParseMethod(cfg.Method)
	if err != nil {
		return prayer.Method{}, err
	}
	if cfg.School != "" {
		school, err := prayer.ParseAsrSchool(cfg.School)
		if err != nil {
			return prayer.Method{}, err
		}
		m.Asr = school
	}
	if cfg.HighLatRule != "" {
		rule, err := prayer.ParseHighLatitudeRule(cfg.HighLatRule)
		if err != nil {
			return prayer.Method{}, err
		}
		m.HighLatitude = rule
	}
	if cfg.Adjustments != "" {
		adj, err := prayer.ParseAdjustments(cfg.Adjustments)
		if err != nil {
			return prayer.Method{}, fmt.Errorf("invalid adjustments %q: %w", cfg.Adjustments, err)
		}
		m.Adjustments = m.Adjustments.Add(adj)
	}
	return m, nil
}

// goTimeFormat maps the "12h"/"24h" setting to a Go layout.
func goTimeFormat(tf string) (string, error) {
	switch tf {
	case "24h", "":
		return "15:04", nil
	case "12h":
		return "3:04 PM", nil
	}
	return "", fmt.Errorf("invalid time format %q: must be \"12h\" or \"24h\"", tf)
}

// locationLabel builds a "City, Country" string, falling back to the
// coordinates.
func locationLabel(cfg *config.Config, c geo.Coordinate) string {
	switch {
	case cfg.City != "" && cfg.Country != "":
		return cfg.City + ", " + cfg.Country
	case cfg.City != "":
		return cfg.City
	}
	return c.String()
}

// today returns the current instant in the configured zone.
func (s settings) today() time.Time {
	return now().In(s.Loc)
}

// schedule computes the schedule for the calendar day of t, using the UTC
// offset in effect at local noon.
func (s settings) schedule(t time.Time) (prayer.Schedule, error) {
	t = t.In(s.Loc)
	noon := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, s.Loc)
	return prayer.Compute(s.Coord, prayer.DateFor(noon), s.Method)
}

// settingsFor resolves the effective settings for cmd.
func settingsFor(cmd *cobra.Command) (settings, error) {
	return resolveSettings(effectiveConfig(cmd))
}
