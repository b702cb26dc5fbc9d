package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/qibla"
)

func newQiblaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "qibla",
		Short: "Show the Qibla direction and distance to the Kaaba",
		Long: "Print the initial great-circle bearing from your location to the Kaaba,\n" +
			"in degrees clockwise from true north, and the distance along the great circle.",
		Args: cobra.NoArgs,
		RunE: runQibla,
	}
}

type qiblaJSON struct {
	Location todayJSONLocation `json:"location"`
	qibla.Result
	CompassPoint string `json:"compass_point"`
}

func runQibla(cmd *cobra.Command, args []string) error {
	s, err := settingsFor(cmd)
	if err != nil {
		return err
	}

	res, err := qibla.Bearing(s.Coord)
	if err != nil {
		return err
	}
	point := qibla.CompassPoint(res.Bearing)

	out := cmd.OutOrStdout()
	if FlagJSON {
		return writeJSON(out, qiblaJSON{Location: jsonLocation(s), Result: res, CompassPoint: point})
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", display.Bold("Qibla"))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", s.Label)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Bearing   %s %s %s\n",
		display.Accent(display.Degrees(res.Bearing)), point, display.Accent(display.Arrow(res.Bearing)))
	fmt.Fprintf(out, "  Distance  %.0f km\n", res.Distance)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", display.Gray("Bearing is from true north. Add your magnetic declination for a compass."))
	fmt.Fprintln(out)
	return nil
}
