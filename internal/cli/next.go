package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/prayer"
)

var (
	flagFormat  string
	flagPrayers string
)

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long: "Print the next upcoming prayer on one line, without a trailing newline,\n" +
			"for status bars such as tmux.",
		RunE: runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull,
		"Display format: "+strings.Join(prayer.Formats, ", ")+", or a custom Go template")
	cmd.Flags().StringVar(&flagPrayers, "prayers", "", "Comma-separated list of prayers to track (overrides config)")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	s, err := settingsFor(cmd)
	if err != nil {
		return err
	}

	// --prayers flag > config > defaults.
	if cmd.Flags().Changed("prayers") && flagPrayers != "" {
		names, err := prayer.ParseNames(flagPrayers)
		if err != nil {
			return err
		}
		if len(names) > 0 {
			s.Names = names
		}
	}

	t := s.today()
	next, err := nextPrayer(s, t)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), prayer.FormatOutput(*next, t, flagFormat, s.TimeFmt))
	return nil
}

// nextPrayer returns the first tracked prayer after t, looking into
// tomorrow once today's prayers have passed.
func nextPrayer(s settings, t time.Time) (*prayer.Prayer, error) {
	for day := 0; day < 2; day++ {
		sched, err := s.schedule(t.AddDate(0, 0, day))
		if err != nil {
			return nil, err
		}
		prayers, err := sched.Prayers(s.Names)
		if err != nil {
			return nil, err
		}
		if next := prayer.NextPrayer(prayers, t); next != nil {
			return next, nil
		}
	}
	return nil, errors.New("could not determine next prayer")
}
