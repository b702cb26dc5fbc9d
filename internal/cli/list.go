package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/hijri"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

// maxDays bounds list and query ranges.
const maxDays = 366

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  "Display a grid of prayer times for N days starting today (default: 7).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 7
			if len(args) > 0 {
				n, err := parseDays(args[0])
				if err != nil {
					return err
				}
				days = n
			}
			return runList(cmd, days)
		},
	}
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Long:  "Alias for 'list 7'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, 7)
		},
	}
}

func newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Long:  "Alias for 'list 30'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, 30)
		},
	}
}

// parseDays accepts a positive integer, "week" or "month".
func parseDays(s string) (int, error) {
	switch s {
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxDays {
		return 0, fmt.Errorf("invalid number of days %q: must be 1-%d, 'week' or 'month'", s, maxDays)
	}
	return n, nil
}

// computeDays returns the schedules for days consecutive days from today.
func computeDays(cmd *cobra.Command, s settings, days int) ([]prayer.Schedule, error) {
	start := s.today()
	scheds, err := prayer.ComputeRange(cmd.Context(), s.Coord, start, days, s.Method)
	if err != nil {
		return nil, err
	}
	logger.Debug("computed range", "start", start.Format(time.DateOnly), "days", days, "method", s.Method.Key)
	return scheds, nil
}

func runList(cmd *cobra.Command, days int) error {
	s, err := settingsFor(cmd)
	if err != nil {
		return err
	}

	scheds, err := computeDays(cmd, s, days)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if FlagJSON {
		return printListJSON(out, s, scheds)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", display.Bold(fmt.Sprintf("Prayer Times - %d Days", days)))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", s.Label)
	fmt.Fprintf(out, "  %s\n", display.Gray(s.Method.Name))
	fmt.Fprintln(out)

	headers := []string{"Date", "Hijri"}
	for _, n := range s.Names {
		headers = append(headers, string(n))
	}
	tbl := display.NewTable(headers)

	var adjusted bool
	for i, sched := range scheds {
		prayers, err := sched.Prayers(s.Names)
		if err != nil {
			return err
		}

		day := sched.Date.Midnight()
		h := hijri.FromGregorian(day.Year(), day.Month(), day.Day())
		row := []string{day.Format("Mon 02 Jan"), shortHijri(h)}
		for _, p := range prayers {
			row = append(row, prayer.FormatTime(p, s.TimeFmt))
		}
		tbl.AddRow(row)

		if i == 0 {
			tbl.SetHighlightRow(i)
		}
		adjusted = adjusted || len(sched.Adjusted) > 0
	}

	if adjusted {
		tbl.AddFooter(fmt.Sprintf("%s estimated by the %s rule", prayer.AdjustedMarker, s.Method.HighLatitude))
	}
	tbl.AddFooter("Hijri dates: " + hijri.Approximation)

	fmt.Fprint(out, tbl.Render())
	fmt.Fprintln(out)
	return nil
}

// shortHijri returns e.g. "15-09-1445".
func shortHijri(h hijri.Date) string {
	return fmt.Sprintf("%02d-%02d-%d", h.Day, h.Month, h.Year)
}

// listJSONOutput is the JSON structure for the list command.
type listJSONOutput struct {
	Location todayJSONLocation `json:"location"`
	Method   string            `json:"method"`
	Days     []listJSONDay     `json:"days"`
}

type listJSONDay struct {
	Date     string            `json:"date"`
	Hijri    hijri.Date        `json:"hijri"`
	Timings  map[string]string `json:"timings"`
	Adjusted []prayer.Name     `json:"adjusted,omitempty"`
}

func printListJSON(w io.Writer, s settings, scheds []prayer.Schedule) error {
	out := listJSONOutput{
		Location: jsonLocation(s),
		Method:   s.Method.Key,
		Days:     make([]listJSONDay, 0, len(scheds)),
	}

	for _, sched := range scheds {
		prayers, err := sched.Prayers(s.Names)
		if err != nil {
			return err
		}

		timings := make(map[string]string, len(prayers))
		for _, p := range prayers {
			timings[strings.ToLower(string(p.Name))] = p.Time.Format(s.TimeFmt)
		}

		d := sched.Date
		out.Days = append(out.Days, listJSONDay{
			Date:     d.Midnight().Format(time.DateOnly),
			Hijri:    hijri.FromGregorian(d.Year, d.Month, d.Day),
			Timings:  timings,
			Adjusted: sched.Adjusted,
		})
	}

	return writeJSON(w, out)
}
