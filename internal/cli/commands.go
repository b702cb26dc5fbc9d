package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/config"
	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long:  "Display current configuration, or use subcommands to modify it.\nWhen run without subcommands, shows the current configuration.",
		RunE:  runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n"+
			"  salat config set latitude 21.4225\n"+
			"  salat config set longitude 39.8262\n"+
			"  salat config set timezone Asia/Riyadh\n"+
			"  salat config set method umm-al-qura\n"+
			"  salat config set school hanafi\n"+
			"  salat config set prayers Fajr,Dhuhr,Asr,Maghrib,Isha",
			strings.Join(config.ValidKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one config value",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigGet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		Long:  "Delete the config file and restore all settings to defaults.",
		RunE:  runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		RunE:  runConfigPath,
	})

	return cmd
}

// runConfigShow displays the stored configuration next to the defaults.
func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	defaults := config.Defaults()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  Configuration (%s)\n\n", path)

	for _, key := range config.ValidKeys {
		val, _ := cfg.Get(key)
		shown := val
		if shown == "" {
			shown = display.Gray("(not set)")
			if def, _ := defaults.Get(key); def != "" {
				shown = display.Gray("(default: " + def + ")")
			}
		} else if key == "method" {
			shown = formatMethodValue(val)
		}
		fmt.Fprintf(out, "  %-14s %s\n", key, shown)
	}
	return nil
}

// runConfigSet sets a config key to the given value.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return err
	}
	logger.Info("config updated", "key", key)

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet prints the stored value of one key.
func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	val, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}

// runConfigReset deletes the config file.
func runConfigReset(cmd *cobra.Command, args []string) error {
	if err := config.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
	return nil
}

// runConfigPath prints the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// formatMethodValue adds the method name to the stored key or number.
func formatMethodValue(val string) string {
	m, err := prayer.ParseMethod(val)
	if err != nil {
		return val
	}
	return fmt.Sprintf("%s (%s)", val, m.Name)
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List all calculation methods",
		Long:  "Print the table of calculation method presets with their twilight angles.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			methods := prayer.Methods()
			out := cmd.OutOrStdout()

			if FlagJSON {
				return writeJSON(out, methodsJSON(methods))
			}

			tbl := display.NewTable([]string{"ID", "Key", "Fajr", "Isha", "Name"})
			for _, m := range methods {
				tbl.AddRow([]string{strconv.Itoa(m.ID), m.Key, angle(m.FajrAngle), ishaRule(m), m.Name})
			}

			fmt.Fprintln(out, "Supported calculation methods:")
			fmt.Fprintln(out)
			fmt.Fprint(out, tbl.Render())
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Use --method <key|ID> to select a method (default: %s).\n", prayer.DefaultMethod.Key)
			return nil
		},
	}
}

func angle(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64) + "°"
}

// ishaRule describes how a method places Isha.
func ishaRule(m prayer.Method) string {
	if m.IshaAngle > 0 {
		return angle(m.IshaAngle)
	}
	return fmt.Sprintf("%d min", int(m.IshaInterval/time.Minute))
}

type methodJSON struct {
	ID           int     `json:"id"`
	Key          string  `json:"key"`
	Name         string  `json:"name"`
	FajrAngle    float64 `json:"fajr_angle"`
	IshaAngle    float64 `json:"isha_angle,omitempty"`
	IshaInterval int     `json:"isha_interval_minutes,omitempty"`
	MaghribAngle float64 `json:"maghrib_angle,omitempty"`
}

func methodsJSON(methods []prayer.Method) []methodJSON {
	out := make([]methodJSON, len(methods))
	for i, m := range methods {
		out[i] = methodJSON{
			ID:           m.ID,
			Key:          m.Key,
			Name:         m.Name,
			FajrAngle:    m.FajrAngle,
			IshaAngle:    m.IshaAngle,
			IshaInterval: int(m.IshaInterval / time.Minute),
			MaghribAngle: m.MaghribAngle,
		}
	}
	return out
}
