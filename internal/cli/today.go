package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/hijri"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

func runToday(cmd *cobra.Command, args []string) error {
	s, err := settingsFor(cmd)
	if err != nil {
		return err
	}

	t := s.today()
	sched, err := s.schedule(t)
	if err != nil {
		return err
	}
	logger.Debug("computed schedule", "date", sched.Date.String(), "method", s.Method.Key, "adjusted", sched.Adjusted)

	prayers, err := sched.Prayers(s.Names)
	if err != nil {
		return err
	}

	current := prayer.CurrentPrayer(prayers, t)
	next := prayer.NextPrayer(prayers, t)
	h := hijri.FromTime(t)

	out := cmd.OutOrStdout()
	if FlagJSON {
		return printTodayJSON(out, s, sched, prayers, current, next, t, h)
	}

	printTodayRich(out, s, sched, prayers, current, next, t, h)
	return nil
}

// printTodayRich renders the coloured terminal output for today's schedule.
func printTodayRich(w io.Writer, s settings, sched prayer.Schedule, prayers []prayer.Prayer, current, next *prayer.Prayer, t time.Time, h hijri.Date) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Prayer Times"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s\n", s.Label)
	fmt.Fprintf(w, "  %s\n", display.Gray(s.Loc.String()+" · "+s.Method.Name))
	fmt.Fprintf(w, "  %s\n", t.Format("Monday 02 January 2006"))
	fmt.Fprintf(w, "  %s %s\n", formatHijri(h), display.Gray("("+hijri.Approximation+")"))
	fmt.Fprintln(w)

	maxNameLen := 0
	for _, p := range prayers {
		maxNameLen = max(maxNameLen, len(p.Name))
	}

	for _, p := range prayers {
		line := fmt.Sprintf("  %-*s  %s", maxNameLen, p.Name, prayer.FormatTime(p, s.TimeFmt))

		switch {
		case current != nil && p.Name == current.Name:
			fmt.Fprintln(w, display.Dim(line))
		case next != nil && p.Name == next.Name:
			remaining := prayer.FormatRemaining(prayer.TimeRemaining(p, t))
			fmt.Fprintln(w, display.Accent(line)+display.Accent("  <- next in "+remaining))
		default:
			fmt.Fprintln(w, line)
		}
	}

	if note := adjustedNote(sched, s.Method); note != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", display.Yellow(note))
	}
	fmt.Fprintln(w)
}

// adjustedNote explains the adjusted marker, or returns "" when no event
// was placed by a high-latitude rule.
func adjustedNote(sched prayer.Schedule, m prayer.Method) string {
	if len(sched.Adjusted) == 0 {
		return ""
	}
	names := make([]string, len(sched.Adjusted))
	for i, n := range sched.Adjusted {
		names[i] = string(n)
	}
	return fmt.Sprintf("%s %s estimated by the %s rule",
		prayer.AdjustedMarker, strings.Join(names, ", "), m.HighLatitude)
}

// formatHijri returns e.g. "15 Ramadan 1445 AH".
func formatHijri(h hijri.Date) string {
	return fmt.Sprintf("%d %s %d AH", h.Day, hijri.MonthName(h.Month), h.Year)
}

// todayJSON is the JSON output of the root command.
type todayJSON struct {
	Location todayJSONLocation `json:"location"`
	Date     todayJSONDate     `json:"date"`
	Method   string            `json:"method"`
	Timings  map[string]string `json:"timings"`
	Adjusted []prayer.Name     `json:"adjusted,omitempty"`
	Current  string            `json:"current"`
	Next     *todayJSONNext    `json:"next"`
}

type todayJSONLocation struct {
	Label     string  `json:"label"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation,omitempty"`
}

type todayJSONDate struct {
	Gregorian string     `json:"gregorian"`
	Hijri     hijri.Date `json:"hijri"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
}

func jsonLocation(s settings) todayJSONLocation {
	return todayJSONLocation{
		Label:     s.Label,
		Timezone:  s.Loc.String(),
		Latitude:  s.Coord.Latitude,
		Longitude: s.Coord.Longitude,
		Elevation: s.Coord.Elevation,
	}
}

// printTodayJSON renders structured JSON output.
func printTodayJSON(w io.Writer, s settings, sched prayer.Schedule, prayers []prayer.Prayer, current, next *prayer.Prayer, t time.Time, h hijri.Date) error {
	timings := make(map[string]string, len(prayers))
	for _, p := range prayers {
		timings[strings.ToLower(string(p.Name))] = p.Time.Format(s.TimeFmt)
	}

	out := todayJSON{
		Location: jsonLocation(s),
		Date: todayJSONDate{
			Gregorian: t.Format("2006-01-02"),
			Hijri:     h,
		},
		Method:   s.Method.Key,
		Timings:  timings,
		Adjusted: sched.Adjusted,
	}

	if current != nil {
		out.Current = strings.ToLower(string(current.Name))
	}

	if next != nil {
		out.Next = &todayJSONNext{
			Prayer:    strings.ToLower(string(next.Name)),
			Time:      next.Time.Format(s.TimeFmt),
			Remaining: prayer.FormatRemaining(prayer.TimeRemaining(*next, t)),
		}
	}

	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
