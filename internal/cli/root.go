// Package cli wires the salat commands together with cobra.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/salat/internal/config"
	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/logging"
)

// Global flags shared across all subcommands.
var (
	FlagLatitude   float64
	FlagLongitude  float64
	FlagElevation  float64
	FlagTimezone   string
	FlagMethod     string
	FlagSchool     string
	FlagHighLat    string
	FlagAdjust     string
	FlagJSON       bool
	FlagTimeFormat string
	FlagLogLevel   string
	FlagLogFormat  string
)

// loadedConfig holds the config loaded during PersistentPreRunE.
var loadedConfig *config.Config

// logger is built in PersistentPreRunE from --log-level and --log-format.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// now is replaced in tests.
var now = time.Now

// NewRootCmd creates the root command. The version is set by the calling
// binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "salat",
		Short: "Offline Islamic prayer times, Hijri dates and Qibla",
		Long: "salat computes prayer times from the position of the sun, converts\n" +
			"between Gregorian and Hijri dates and points to the Qibla, all offline.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			loadedConfig = cfg

			if FlagJSON {
				display.SetEnabled(false)
			}

			eff := effectiveConfig(cmd)
			level, err := logging.ParseLevel(eff.LogLevel)
			if err != nil {
				return err
			}
			l, err := logging.New(cmd.ErrOrStderr(), level, FlagLogFormat)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Latitude in degrees, north positive (overrides config)")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Longitude in degrees, east positive (overrides config)")
	pf.Float64Var(&FlagElevation, "elevation", 0, "Elevation in metres above sea level")
	pf.StringVar(&FlagTimezone, "timezone", "", "IANA timezone, e.g. Europe/London (default: system zone)")
	pf.StringVar(&FlagMethod, "method", "", "Calculation method key or number (see 'salat methods')")
	pf.StringVar(&FlagSchool, "school", "", "Asr school: standard or hanafi")
	pf.StringVar(&FlagHighLat, "high-lat", "", "High latitude rule: none, middle-of-night, seventh-of-night, twilight-angle")
	pf.StringVar(&FlagAdjust, "adjustments", "", "Minute offsets for fajr,sunrise,dhuhr,asr,sunset,maghrib,isha,midnight")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&FlagLogLevel, "log-level", "", "Diagnostics level: debug, info, warn, error")
	pf.StringVar(&FlagLogFormat, "log-format", logging.FormatText, "Diagnostics format: text or json")

	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMethodsCmd())
	rootCmd.AddCommand(newQiblaCmd())
	rootCmd.AddCommand(newHijriCmd())
	rootCmd.AddCommand(newCompassCmd())
	rootCmd.AddCommand(newVerifyCmd())

	return rootCmd
}

// effectiveConfig returns the merged configuration,
// applying the priority: CLI flags > config file > defaults.
// It uses pflag's Changed to detect whether a flag was explicitly set.
func effectiveConfig(cmd *cobra.Command) *config.Config {
	var cfg config.Config
	if loadedConfig != nil {
		cfg = *loadedConfig
	}
	defaults := config.Defaults()

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	if flagWasSet(flags, root, "latitude") {
		v := FlagLatitude
		cfg.Latitude = &v
	}
	if flagWasSet(flags, root, "longitude") {
		v := FlagLongitude
		cfg.Longitude = &v
	}
	if flagWasSet(flags, root, "elevation") {
		v := FlagElevation
		cfg.Elevation = &v
	}
	if flagWasSet(flags, root, "timezone") {
		cfg.Timezone = FlagTimezone
	}

	cfg.Method = pick(flags, root, "method", FlagMethod, cfg.Method, defaults.Method)
	cfg.School = pick(flags, root, "school", FlagSchool, cfg.School, defaults.School)
	cfg.HighLatRule = pick(flags, root, "high-lat", FlagHighLat, cfg.HighLatRule, defaults.HighLatRule)
	cfg.Adjustments = pick(flags, root, "adjustments", FlagAdjust, cfg.Adjustments, "")
	cfg.TimeFormat = pick(flags, root, "time-format", FlagTimeFormat, cfg.TimeFormat, defaults.TimeFormat)
	cfg.LogLevel = pick(flags, root, "log-level", FlagLogLevel, cfg.LogLevel, defaults.LogLevel)

	if cfg.SmoothingMs == nil {
		cfg.SmoothingMs = defaults.SmoothingMs
	}
	if cfg.TrueNorth == nil {
		cfg.TrueNorth = defaults.TrueNorth
	}
	if cfg.MQTTTopic == "" {
		cfg.MQTTTopic = defaults.MQTTTopic
	}

	return &cfg
}

// pick returns the flag value when the flag was set, otherwise the config
// value, otherwise the default.
func pick(local, persistent *pflag.FlagSet, name, flagValue, configValue, defaultValue string) string {
	switch {
	case flagWasSet(local, persistent, name):
		return flagValue
	case configValue != "":
		return configValue
	default:
		return defaultValue
	}
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
