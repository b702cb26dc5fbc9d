package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/config"
	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/heading"
	"github.com/smokyabdulrahman/salat/internal/qibla"
	"github.com/smokyabdulrahman/salat/internal/sensor"
)

// Compass sources.
const (
	sourceStdin = "stdin"
	sourceMQTT  = "mqtt"
)

var (
	flagSource    string
	flagBroker    string
	flagTopic     string
	flagTrueNorth bool
	flagSmoothing time.Duration
)

func newCompassCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compass",
		Short: "Live Qibla needle from a heading sensor",
		Long: "Smooth a stream of compass headings and show how far to turn to face\n" +
			"the Qibla. Samples are JSON objects like\n\n" +
			`  {"heading": 12.3, "declination": 4.1, "ts": 1718000000000}` + "\n\n" +
			"read one per line from stdin, or received on an MQTT topic.",
		Args: cobra.NoArgs,
		RunE: runCompass,
	}

	f := cmd.Flags()
	f.StringVar(&flagSource, "source", sourceStdin, "Sample source: stdin or mqtt")
	f.StringVar(&flagBroker, "broker", "", "MQTT broker URL, e.g. tcp://localhost:1883 (overrides config)")
	f.StringVar(&flagTopic, "topic", "", "MQTT topic (overrides config)")
	f.BoolVar(&flagTrueNorth, "true-north", false, "Add each sample's declination to its heading")
	f.DurationVar(&flagSmoothing, "smoothing", heading.DefaultTimeConstant, "Smoothing time constant")

	return cmd
}

func runCompass(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig(cmd)
	s, err := resolveSettings(cfg)
	if err != nil {
		return err
	}

	q, err := qibla.Bearing(s.Coord)
	if err != nil {
		return err
	}

	opts := []heading.Option{heading.WithQiblaBearing(q.Bearing)}
	trueNorth := *cfg.TrueNorth
	if cmd.Flags().Changed("true-north") {
		trueNorth = flagTrueNorth
	}
	if trueNorth {
		opts = append(opts, heading.WithTrueNorth())
	}

	tc := time.Duration(*cfg.SmoothingMs) * time.Millisecond
	if cmd.Flags().Changed("smoothing") {
		tc = flagSmoothing
	}
	filter := heading.New(tc, opts...)

	session := uuid.NewString()
	log := logger.With("session", session)

	src, err := newSampleSource(cmd, cfg, session, log)
	if err != nil {
		return err
	}

	log.Info("compass started",
		"source", flagSource,
		"qibla", q.Bearing,
		"true_north", trueNorth,
		"time_constant", filter.TimeConstant())

	filter.Subscribe()
	defer filter.Unsubscribe()

	out := cmd.OutOrStdout()
	render := newCompassRenderer(out)
	if err := src.Run(cmd.Context(), func(sample heading.Sample) {
		render(filter.UpdateSample(sample))
	}); err != nil {
		return err
	}

	final := filter.Current()
	log.Info("compass stopped", "samples", final.Samples, "heading", final.Heading)
	if !FlagJSON && display.Enabled() && final.Samples > 0 {
		fmt.Fprintln(out)
	}
	return nil
}

// newSampleSource builds the source selected by --source.
func newSampleSource(cmd *cobra.Command, cfg *config.Config, session string, log *slog.Logger) (sensor.Source, error) {
	switch flagSource {
	case sourceStdin:
		return sensor.NewReaderSource(cmd.InOrStdin(), log), nil
	case sourceMQTT:
		mc := sensor.MQTTConfig{
			Broker:   cfg.MQTTBroker,
			Topic:    cfg.MQTTTopic,
			ClientID: "salat-" + session[:8],
		}
		if cmd.Flags().Changed("broker") {
			mc.Broker = flagBroker
		}
		if cmd.Flags().Changed("topic") {
			mc.Topic = flagTopic
		}
		log.Info("using mqtt source", "broker", mc.Broker, "topic", mc.Topic)
		return sensor.NewMQTTSource(mc, log)
	}
	return nil, fmt.Errorf("invalid --source %q: must be %q or %q", flagSource, sourceStdin, sourceMQTT)
}

// newCompassRenderer returns the per-sample printer. JSON mode writes one
// object per line; a terminal gets a single line redrawn in place.
func newCompassRenderer(w io.Writer) func(heading.Smoothed) {
	if FlagJSON {
		enc := json.NewEncoder(w)
		return func(sm heading.Smoothed) {
			_ = enc.Encode(sm)
		}
	}
	if display.Enabled() {
		return func(sm heading.Smoothed) {
			fmt.Fprint(w, "\r\033[K"+display.Needle(sm.Heading, sm.Rotation, sm.Samples))
		}
	}
	return func(sm heading.Smoothed) {
		fmt.Fprintln(w, display.Needle(sm.Heading, sm.Rotation, sm.Samples))
	}
}
