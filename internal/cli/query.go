package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

var flagQueryDays string

func newQueryCmd() *cobra.Command {
	names := make([]string, len(prayer.AllNames))
	for i, n := range prayer.AllNames {
		names[i] = string(n)
	}

	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long: "Query a specific prayer time for today, or across multiple days with --days.\n\n" +
			"Valid prayer names: " + strings.Join(names, ", "),
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().StringVar(&flagQueryDays, "days", "1", "Number of days to show (or 'week'/'month')")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	name, err := prayer.ParseName(args[0])
	if err != nil {
		return err
	}

	days, err := parseDays(flagQueryDays)
	if err != nil {
		return fmt.Errorf("invalid --days value: %w", err)
	}

	s, err := settingsFor(cmd)
	if err != nil {
		return err
	}
	s.Names = []prayer.Name{name}

	scheds, err := computeDays(cmd, s, days)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if days == 1 {
		return printQuerySingle(out, s, scheds[0], name)
	}
	if FlagJSON {
		return printQueryJSON(out, s, scheds, name)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", display.Bold(fmt.Sprintf("%s Times - %d Days", name, days)))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", s.Label)
	fmt.Fprintln(out)

	tbl := display.NewTable([]string{"Date", string(name)})
	for _, sched := range scheds {
		p, err := queryPrayer(sched, name)
		if err != nil {
			return err
		}
		tbl.AddRow([]string{sched.Date.Midnight().Format("Mon 02 Jan"), prayer.FormatTime(p, s.TimeFmt)})
	}
	tbl.SetHighlightRow(0)

	fmt.Fprint(out, tbl.Render())
	fmt.Fprintln(out)
	return nil
}

func queryPrayer(sched prayer.Schedule, name prayer.Name) (prayer.Prayer, error) {
	prayers, err := sched.Prayers([]prayer.Name{name})
	if err != nil {
		return prayer.Prayer{}, err
	}
	return prayers[0], nil
}

type queryJSONSingle struct {
	Prayer   string `json:"prayer"`
	Time     string `json:"time"`
	Date     string `json:"date"`
	Adjusted bool   `json:"adjusted,omitempty"`
}

func printQuerySingle(w io.Writer, s settings, sched prayer.Schedule, name prayer.Name) error {
	p, err := queryPrayer(sched, name)
	if err != nil {
		return err
	}

	if FlagJSON {
		return writeJSON(w, queryJSONSingle{
			Prayer:   strings.ToLower(string(name)),
			Time:     p.Time.Format(s.TimeFmt),
			Date:     sched.Date.Midnight().Format(time.DateOnly),
			Adjusted: p.Adjusted,
		})
	}

	fmt.Fprintf(w, "%s %s\n", name, prayer.FormatTime(p, s.TimeFmt))
	return nil
}

type queryJSONMulti struct {
	Location todayJSONLocation `json:"location"`
	Prayer   string            `json:"prayer"`
	Days     []queryJSONSingle `json:"days"`
}

func printQueryJSON(w io.Writer, s settings, scheds []prayer.Schedule, name prayer.Name) error {
	out := queryJSONMulti{
		Location: jsonLocation(s),
		Prayer:   strings.ToLower(string(name)),
	}

	for _, sched := range scheds {
		p, err := queryPrayer(sched, name)
		if err != nil {
			return err
		}
		out.Days = append(out.Days, queryJSONSingle{
			Prayer:   out.Prayer,
			Time:     p.Time.Format(s.TimeFmt),
			Date:     sched.Date.Midnight().Format(time.DateOnly),
			Adjusted: p.Adjusted,
		})
	}

	return writeJSON(w, out)
}
