package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/hijri"
)

var flagToGregorian string

func newHijriCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hijri [YYYY-MM-DD]",
		Short: "Convert between Gregorian and Hijri dates",
		Long: "Convert a Gregorian date (default: today) to the tabular Hijri calendar,\n" +
			"or a Hijri date to Gregorian with --to-gregorian.\n\n" +
			"Note: " + hijri.Approximation + ".",
		Args: cobra.MaximumNArgs(1),
		RunE: runHijri,
	}

	cmd.Flags().StringVar(&flagToGregorian, "to-gregorian", "", "Hijri date YYYY-MM-DD to convert to Gregorian")

	return cmd
}

type hijriJSON struct {
	Gregorian hijri.Gregorian `json:"gregorian"`
	Hijri     hijri.Date      `json:"hijri"`
	MonthName string          `json:"month_name"`
	Note      string          `json:"note"`
}

func runHijri(cmd *cobra.Command, args []string) error {
	var (
		g hijri.Gregorian
		h hijri.Date
	)

	switch {
	case flagToGregorian != "":
		if len(args) > 0 {
			return fmt.Errorf("pass either a Gregorian date or --to-gregorian, not both")
		}
		var err error
		if h, err = parseHijri(flagToGregorian); err != nil {
			return err
		}
		if g, err = hijri.ToGregorian(h); err != nil {
			return err
		}
	default:
		day := now()
		if len(args) > 0 {
			t, err := time.Parse(time.DateOnly, args[0])
			if err != nil {
				return fmt.Errorf("invalid date %q: want YYYY-MM-DD", args[0])
			}
			day = t
		} else if loc, err := effectiveLocation(cmd); err == nil {
			day = day.In(loc)
		}
		g = hijri.Gregorian{Year: day.Year(), Month: day.Month(), Day: day.Day()}
		h = hijri.FromGregorian(g.Year, g.Month, g.Day)
		if err := h.Validate(); err != nil {
			return fmt.Errorf("%s is outside the supported range: %w", g, err)
		}
	}

	out := cmd.OutOrStdout()
	if FlagJSON {
		return writeJSON(out, hijriJSON{Gregorian: g, Hijri: h, MonthName: hijri.MonthName(h.Month), Note: hijri.Approximation})
	}

	fmt.Fprintf(out, "%s  =  %s\n", g.Time(time.UTC).Format("Monday 02 January 2006"), display.Bold(h.String()))
	fmt.Fprintln(out, display.Gray(hijri.Approximation))
	return nil
}

// parseHijri parses "YYYY-MM-DD" without interpreting it as a Gregorian day.
func parseHijri(s string) (hijri.Date, error) {
	var h hijri.Date
	if n, err := fmt.Sscanf(s, "%d-%d-%d", &h.Year, &h.Month, &h.Day); err != nil || n != 3 {
		return h, fmt.Errorf("invalid hijri date %q: want YYYY-MM-DD", s)
	}
	return h, h.Validate()
}

// effectiveLocation returns the configured timezone without requiring
// coordinates.
func effectiveLocation(cmd *cobra.Command) (*time.Location, error) {
	cfg := effectiveConfig(cmd)
	if cfg.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(cfg.Timezone)
}
