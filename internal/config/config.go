// Package config provides persistent configuration for the salat CLI.
//
// Configuration is stored as JSON at ~/.config/salat/config.json
// (XDG-compliant). The merge priority is: CLI flags > config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/smokyabdulrahman/salat/internal/logging"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

const (
	configDirName  = "salat"
	configFileName = "config.json"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"city", "country",
	"latitude", "longitude", "elevation",
	"timezone",
	"method", "school", "high_lat_rule", "adjustments",
	"time_format",
	"prayers",
	"smoothing_ms", "true_north",
	"mqtt_broker", "mqtt_topic",
	"log_level",
}

// Config holds all user-configurable settings.
// Nil pointers and empty strings mean "not set".
type Config struct {
	City        string   `json:"city,omitempty"`    // display label only
	Country     string   `json:"country,omitempty"` // display label only
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Elevation   *float64 `json:"elevation,omitempty"`
	Timezone    string   `json:"timezone,omitempty"`      // IANA name, e.g. "Europe/London"
	Method      string   `json:"method,omitempty"`        // preset key or Al Adhan number
	School      string   `json:"school,omitempty"`        // "standard" or "hanafi"
	HighLatRule string   `json:"high_lat_rule,omitempty"` // see prayer.ParseHighLatitudeRule
	Adjustments string   `json:"adjustments,omitempty"`   // eight comma-separated minute offsets
	TimeFormat  string   `json:"time_format,omitempty"`   // "12h" or "24h"
	Prayers     string   `json:"prayers,omitempty"`       // comma-separated list
	SmoothingMs *int     `json:"smoothing_ms,omitempty"`
	TrueNorth   *bool    `json:"true_north,omitempty"`
	MQTTBroker  string   `json:"mqtt_broker,omitempty"`
	MQTTTopic   string   `json:"mqtt_topic,omitempty"`
	LogLevel    string   `json:"log_level,omitempty"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	smoothing := 300
	trueNorth := false
	return Config{
		Method:      prayer.DefaultMethod.Key,
		School:      prayer.Standard.String(),
		HighLatRule: prayer.TwilightAngle.String(),
		TimeFormat:  "24h",
		SmoothingMs: &smoothing,
		TrueNorth:   &trueNorth,
		MQTTTopic:   "salat/compass",
		LogLevel:    "warn",
	}
}

// HasLocation reports whether both coordinates are set.
func (c *Config) HasLocation() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
func (c *Config) Set(key, value string) error {
	switch key {
	case "city":
		c.City = value
	case "country":
		c.Country = value
	case "latitude":
		v, err := parseRange(key, value, -90, 90)
		if err != nil {
			return err
		}
		c.Latitude = &v
	case "longitude":
		v, err := parseRange(key, value, -180, 180)
		if err != nil {
			return err
		}
		c.Longitude = &v
	case "elevation":
		v, err := parseRange(key, value, 0, 9000)
		if err != nil {
			return err
		}
		c.Elevation = &v
	case "timezone":
		if _, err := time.LoadLocation(value); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", value, err)
		}
		c.Timezone = value
	case "method":
		if _, err := prayer.ParseMethod(value); err != nil {
			return err
		}
		c.Method = value
	case "school":
		s, err := prayer.ParseAsrSchool(value)
		if err != nil {
			return err
		}
		c.School = s.String()
	case "high_lat_rule":
		r, err := prayer.ParseHighLatitudeRule(value)
		if err != nil {
			return err
		}
		c.HighLatRule = r.String()
	case "adjustments":
		if _, err := prayer.ParseAdjustments(value); err != nil {
			return fmt.Errorf("invalid adjustments %q: %w", value, err)
		}
		c.Adjustments = value
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
		c.TimeFormat = value
	case "prayers":
		names, err := prayer.ParseNames(value)
		if err != nil {
			return fmt.Errorf("invalid prayers list: %w", err)
		}
		if len(names) == 0 {
			return fmt.Errorf("invalid prayers list %q: no names given", value)
		}
		c.Prayers = value
	case "smoothing_ms":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid smoothing_ms %q: must be an integer", value)
		}
		if v < 1 || v > 10000 {
			return fmt.Errorf("invalid smoothing_ms %q: must be between 1 and 10000", value)
		}
		c.SmoothingMs = &v
	case "true_north":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid true_north %q: must be true or false", value)
		}
		c.TrueNorth = &v
	case "mqtt_broker":
		c.MQTTBroker = value
	case "mqtt_topic":
		c.MQTTTopic = value
	case "log_level":
		if _, err := logging.ParseLevel(value); err != nil {
			return err
		}
		c.LogLevel = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "city":
		return c.City, nil
	case "country":
		return c.Country, nil
	case "latitude":
		return formatFloat(c.Latitude), nil
	case "longitude":
		return formatFloat(c.Longitude), nil
	case "elevation":
		return formatFloat(c.Elevation), nil
	case "timezone":
		return c.Timezone, nil
	case "method":
		return c.Method, nil
	case "school":
		return c.School, nil
	case "high_lat_rule":
		return c.HighLatRule, nil
	case "adjustments":
		return c.Adjustments, nil
	case "time_format":
		return c.TimeFormat, nil
	case "prayers":
		return c.Prayers, nil
	case "smoothing_ms":
		if c.SmoothingMs == nil {
			return "", nil
		}
		return strconv.Itoa(*c.SmoothingMs), nil
	case "true_north":
		if c.TrueNorth == nil {
			return "", nil
		}
		return strconv.FormatBool(*c.TrueNorth), nil
	case "mqtt_broker":
		return c.MQTTBroker, nil
	case "mqtt_topic":
		return c.MQTTTopic, nil
	case "log_level":
		return c.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

func parseRange(key, value string, lo, hi float64) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a number", key, value)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("invalid %s %q: must be between %g and %g", key, value, lo, hi)
	}
	return v, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
