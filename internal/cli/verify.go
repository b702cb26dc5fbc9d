package cli

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/api"
	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/hijri"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

// hijriTolerance is how far, in days, the tabular calendar may drift from
// the API's Hijri date.
const hijriTolerance = 1

// newAPIClient is replaced in tests.
var newAPIClient = api.NewClient

var (
	flagVerifyDate      string
	flagVerifyTolerance float64
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare local times with the Al Adhan API",
		Long: "Compute the schedule locally and compare every event with the Al Adhan\n" +
			"reference API for the same method. Sunrise and sunset are also checked\n" +
			"against an independent sunrise algorithm, and the Hijri date against the\n" +
			"API's. Requires network access. User --adjustments are not applied.\n\n" +
			"Exits non-zero when any event differs by more than --tolerance minutes,\n" +
			"or the Hijri date by more than one day.",
		Args: cobra.NoArgs,
		RunE: runVerify,
	}

	cmd.Flags().StringVar(&flagVerifyDate, "date", "", "Date to check, YYYY-MM-DD (default: today)")
	cmd.Flags().Float64Var(&flagVerifyTolerance, "tolerance", 2, "Allowed difference in minutes")

	return cmd
}

// verifyRow is one event compared across sources. Missing references are nil.
type verifyRow struct {
	Name       prayer.Name `json:"name"`
	Local      string      `json:"local"`
	AlAdhan    string      `json:"aladhan"`
	DeltaMin   *float64    `json:"delta_minutes,omitempty"`
	SunriseLib string      `json:"go_sunrise,omitempty"`
	SunDelta   *float64    `json:"go_sunrise_delta_minutes,omitempty"`
	Adjusted   bool        `json:"adjusted,omitempty"`
}

func (r verifyRow) exceeds(tol float64) bool {
	return (r.DeltaMin != nil && math.Abs(*r.DeltaMin) > tol) ||
		(r.SunDelta != nil && math.Abs(*r.SunDelta) > tol)
}

// verifyHijri compares the local Hijri date with the API's.
type verifyHijri struct {
	Local     hijri.Date `json:"local"`
	AlAdhan   hijri.Date `json:"aladhan"`
	DeltaDays int        `json:"delta_days"`
}

func (h *verifyHijri) exceeds() bool {
	return h != nil && (h.DeltaDays > hijriTolerance || h.DeltaDays < -hijriTolerance)
}

type verifyJSON struct {
	Location  todayJSONLocation `json:"location"`
	Date      string            `json:"date"`
	Method    string            `json:"method"`
	Tolerance float64           `json:"tolerance_minutes"`
	Rows      []verifyRow       `json:"events"`
	Hijri     *verifyHijri      `json:"hijri,omitempty"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := *effectiveConfig(cmd)
	if cfg.Adjustments != "" {
		// The API only knows the preset, so user offsets are left out.
		logger.Info("ignoring user adjustments for verification", "adjustments", cfg.Adjustments)
		cfg.Adjustments = ""
	}
	s, err := resolveSettings(&cfg)
	if err != nil {
		return err
	}

	day := s.today()
	if flagVerifyDate != "" {
		day, err = time.ParseInLocation(time.DateOnly, flagVerifyDate, s.Loc)
		if err != nil {
			return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", flagVerifyDate)
		}
	}

	sched, err := s.schedule(day)
	if err != nil {
		return err
	}

	resp, err := newAPIClient().FetchByCoordinates(cmd.Context(), day, s.Coord, s.Method)
	if err != nil {
		return err
	}
	logger.Debug("fetched reference timings", "timezone", resp.Data.Meta.Timezone, "method", resp.Data.Meta.Method.ID)

	refLoc, err := time.LoadLocation(resp.Data.Meta.Timezone)
	if err != nil {
		logger.Warn("unknown reference timezone, using configured zone", "timezone", resp.Data.Meta.Timezone)
		refLoc = s.Loc
	}
	refMidnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, refLoc)

	rise, set := sunrise.SunriseSunset(s.Coord.Latitude, s.Coord.Longitude, day.Year(), day.Month(), day.Day())

	rows := make([]verifyRow, 0, len(prayer.AllNames))
	for _, n := range prayer.AllNames {
		ts, _ := sched.Get(n)
		row := verifyRow{
			Name:     n,
			Local:    ts.Time.In(s.Loc).Format(s.TimeFmt),
			Adjusted: sched.IsAdjusted(n),
		}

		if minutes, err := resp.Data.Timings.Clock(n); err != nil {
			logger.Warn("skipping reference timing", "prayer", n, "error", err)
		} else {
			ref := refMidnight.Add(time.Duration(minutes) * time.Minute)
			row.AlAdhan = ref.In(s.Loc).Format(s.TimeFmt)
			row.DeltaMin = deltaMinutes(ts.Time, ref)
		}

		var lib time.Time
		switch n {
		case prayer.Sunrise:
			lib = rise
		case prayer.Sunset:
			lib = set
		}
		if !lib.IsZero() {
			row.SunriseLib = lib.In(s.Loc).Format(s.TimeFmt)
			row.SunDelta = deltaMinutes(ts.Time, lib)
		}
		rows = append(rows, row)
	}

	var hij *verifyHijri
	if ref, err := resp.Data.Date.Hijri.Parse(); err != nil {
		logger.Warn("skipping reference hijri date", "error", err)
	} else {
		local := hijri.FromTime(day)
		hij = &verifyHijri{Local: local, AlAdhan: ref, DeltaDays: hijri.DaysBetween(ref, local)}
	}

	out := cmd.OutOrStdout()
	if FlagJSON {
		if err := writeJSON(out, verifyJSON{
			Location:  jsonLocation(s),
			Date:      day.Format(time.DateOnly),
			Method:    s.Method.Key,
			Tolerance: flagVerifyTolerance,
			Rows:      rows,
			Hijri:     hij,
		}); err != nil {
			return err
		}
	} else {
		printVerifyTable(out, s, day, rows, hij)
	}

	var problems []string
	var failed int
	for _, r := range rows {
		if r.exceeds(flagVerifyTolerance) {
			failed++
		}
	}
	if failed > 0 {
		problems = append(problems, fmt.Sprintf("%d events differ by more than %g minutes", failed, flagVerifyTolerance))
	}
	if hij.exceeds() {
		problems = append(problems, fmt.Sprintf("hijri date differs by %d days", hij.DeltaDays))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func printVerifyTable(w io.Writer, s settings, day time.Time, rows []verifyRow, hij *verifyHijri) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Verify - "+day.Format("Mon 02 Jan 2006")))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.Label)
	fmt.Fprintf(w, "  %s\n", display.Gray(s.Method.Name))
	fmt.Fprintln(w)

	tbl := display.NewTable([]string{"Event", "salat", "Al Adhan", "Δ min", "go-sunrise", "Δ min"})
	for _, r := range rows {
		local := r.Local
		if r.Adjusted {
			local += prayer.AdjustedMarker
		}
		tbl.AddRow([]string{
			string(r.Name), local,
			r.AlAdhan, formatDelta(r.DeltaMin, flagVerifyTolerance),
			r.SunriseLib, formatDelta(r.SunDelta, flagVerifyTolerance),
		})
	}

	if hij != nil {
		delta := fmt.Sprintf("%+d days", hij.DeltaDays)
		if hij.exceeds() {
			delta = display.Red(delta)
		} else {
			delta = display.Green(delta)
		}
		tbl.AddFooter(fmt.Sprintf("Hijri: %s, Al Adhan %s (%s)", hij.Local, hij.AlAdhan, delta))
	}

	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
}

// deltaMinutes returns a - b in minutes, or nil when b is unknown.
func deltaMinutes(a, b time.Time) *float64 {
	if b.IsZero() {
		return nil
	}
	d := a.Sub(b).Minutes()
	return &d
}

func formatDelta(d *float64, tol float64) string {
	if d == nil {
		return ""
	}
	r := math.Round(*d)
	s := strconv.FormatFloat(math.Abs(r), 'f', 0, 64)
	switch {
	case r > 0:
		s = "+" + s
	case r < 0:
		s = "-" + s
	}
	if math.Abs(*d) > tol {
		return display.Red(s)
	}
	return display.Green(s)
}
