package prayer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/smokyabdulrahman/salat/internal/astro"
)

// AsrSchool selects the shadow length that defines the start of Asr.
type AsrSchool int

const (
	// Standard (Shafi'i, Maliki, Hanbali): shadow equals object length.
	Standard AsrSchool = iota
	// Hanafi: shadow equals twice the object length.
	Hanafi
)

// ShadowFactor returns the shadow multiplier for the school.
func (s AsrSchool) ShadowFactor() float64 {
	if s == Hanafi {
		return 2
	}
	return 1
}

func (s AsrSchool) String() string {
	switch s {
	case Standard:
		return "standard"
	case Hanafi:
		return "hanafi"
	}
	return fmt.Sprintf("AsrSchool(%d)", int(s))
}

// ParseAsrSchool accepts "standard", "shafi", "hanafi" or the Al Adhan
// school numbers 0 and 1.
func ParseAsrSchool(s string) (AsrSchool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "shafi", "0":
		return Standard, nil
	case "hanafi", "1":
		return Hanafi, nil
	}
	return 0, fmt.Errorf("unknown asr school %q (valid: standard, hanafi)", s)
}

// HighLatitudeRule places Fajr and Isha on days the sun never gets deep
// enough below the horizon for the method's angles.
type HighLatitudeRule int

const (
	// None reports a *PolarError instead of guessing.
	None HighLatitudeRule = iota
	// MiddleOfNight puts both at the midpoint of the night.
	MiddleOfNight
	// SeventhOfNight puts Isha a seventh of the night after Maghrib and Fajr
	// a seventh of the night before sunrise.
	SeventhOfNight
	// TwilightAngle uses angle/60 of the night, so 18° gives 0.3 of it.
	TwilightAngle
)

var highLatitudeNames = map[HighLatitudeRule]string{
	None:           "none",
	MiddleOfNight:  "middle-of-night",
	SeventhOfNight: "seventh-of-night",
	TwilightAngle:  "twilight-angle",
}

func (r HighLatitudeRule) String() string {
	if s, ok := highLatitudeNames[r]; ok {
		return s
	}
	return fmt.Sprintf("HighLatitudeRule(%d)", int(r))
}

// ParseHighLatitudeRule parses the names returned by String. The Al Adhan
// spellings ("middle", "seventh", "angle") are accepted too.
func ParseHighLatitudeRule(s string) (HighLatitudeRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return None, nil
	case "middle-of-night", "middle":
		return MiddleOfNight, nil
	case "seventh-of-night", "seventh":
		return SeventhOfNight, nil
	case "twilight-angle", "angle":
		return TwilightAngle, nil
	}
	return 0, fmt.Errorf("unknown high latitude rule %q (valid: none, middle-of-night, seventh-of-night, twilight-angle)", s)
}

// portion is the fraction of the night used for an event at the given angle.
func (r HighLatitudeRule) portion(angle float64) float64 {
	switch r {
	case MiddleOfNight:
		return 1.0 / 2
	case SeventhOfNight:
		return 1.0 / 7
	case TwilightAngle:
		return angle / 60
	}
	return 0
}

// MidnightMode selects how the end of Isha is computed.
type MidnightMode int

const (
	// MidnightStandard is halfway from sunset to sunrise.
	MidnightStandard MidnightMode = iota
	// MidnightJafari is halfway from sunset to Fajr.
	MidnightJafari
)

func (m MidnightMode) String() string {
	if m == MidnightJafari {
		return "jafari"
	}
	return "standard"
}

// Adjustments are per-prayer offsets in minutes, applied after all other
// rules. They correspond to the "tune" parameter of the Al Adhan API.
type Adjustments struct {
	Fajr     int `json:"fajr,omitempty"`
	Sunrise  int `json:"sunrise,omitempty"`
	Dhuhr    int `json:"dhuhr,omitempty"`
	Asr      int `json:"asr,omitempty"`
	Sunset   int `json:"sunset,omitempty"`
	Maghrib  int `json:"maghrib,omitempty"`
	Isha     int `json:"isha,omitempty"`
	Midnight int `json:"midnight,omitempty"`
}

// ParseAdjustments parses a comma-separated list of eight minute offsets in
// the order fajr, sunrise, dhuhr, asr, sunset, maghrib, isha, midnight.
func ParseAdjustments(s string) (Adjustments, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 8 {
		return Adjustments{}, fmt.Errorf("adjustments need 8 comma-separated values, got %d", len(parts))
	}
	vals := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Adjustments{}, fmt.Errorf("adjustment %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return Adjustments{
		Fajr: vals[0], Sunrise: vals[1], Dhuhr: vals[2], Asr: vals[3],
		Sunset: vals[4], Maghrib: vals[5], Isha: vals[6], Midnight: vals[7],
	}, nil
}

// Add returns the field-wise sum of a and b.
func (a Adjustments) Add(b Adjustments) Adjustments {
	return Adjustments{
		Fajr:     a.Fajr + b.Fajr,
		Sunrise:  a.Sunrise + b.Sunrise,
		Dhuhr:    a.Dhuhr + b.Dhuhr,
		Asr:      a.Asr + b.Asr,
		Sunset:   a.Sunset + b.Sunset,
		Maghrib:  a.Maghrib + b.Maghrib,
		Isha:     a.Isha + b.Isha,
		Midnight: a.Midnight + b.Midnight,
	}
}

// Method is a complete calculation configuration.
type Method struct {
	ID   int    `json:"id"`   // Al Adhan method number; -1 for custom methods
	Key  string `json:"key"`  // short name used on the command line
	Name string `json:"name"` // display name

	FajrAngle    float64       `json:"fajr_angle"`
	IshaAngle    float64       `json:"isha_angle,omitempty"`
	IshaInterval time.Duration `json:"isha_interval,omitempty"`
	// MaghribAngle moves Maghrib from sunset to the moment the sun is this far
	// below the horizon. Zero keeps Maghrib at sunset.
	MaghribAngle float64 `json:"maghrib_angle,omitempty"`

	Asr          AsrSchool        `json:"asr_school"`
	HighLatitude HighLatitudeRule `json:"high_latitude_rule"`
	Midnight     MidnightMode     `json:"midnight_mode"`
	DhuhrMargin  time.Duration    `json:"dhuhr_margin,omitempty"`
	Adjustments  Adjustments      `json:"adjustments"`
}

// Validate checks the method's invariants.
func (m Method) Validate() error {
	switch {
	case !validAngle(m.FajrAngle) || m.FajrAngle == 0:
		return fmt.Errorf("%w: fajr angle %v outside (0, 90)", ErrInvalidMethod, m.FajrAngle)
	case !validAngle(m.IshaAngle):
		return fmt.Errorf("%w: isha angle %v outside [0, 90)", ErrInvalidMethod, m.IshaAngle)
	case !validAngle(m.MaghribAngle):
		return fmt.Errorf("%w: maghrib angle %v outside [0, 90)", ErrInvalidMethod, m.MaghribAngle)
	case m.FajrAngle <= astro.Refraction:
		return fmt.Errorf("%w: fajr angle %v must be below the horizon (more than %v)", ErrInvalidMethod, m.FajrAngle, astro.Refraction)
	case m.IshaAngle > 0 && m.IshaAngle <= astro.Refraction:
		return fmt.Errorf("%w: isha angle %v must be below the horizon (more than %v)", ErrInvalidMethod, m.IshaAngle, astro.Refraction)
	case m.MaghribAngle > 0 && m.MaghribAngle <= astro.Refraction:
		return fmt.Errorf("%w: maghrib angle %v must be below the horizon (more than %v)", ErrInvalidMethod, m.MaghribAngle, astro.Refraction)
	case m.MaghribAngle > 0 && m.IshaAngle > 0 && m.MaghribAngle >= m.IshaAngle:
		return fmt.Errorf("%w: maghrib angle %v must be less than isha angle %v", ErrInvalidMethod, m.MaghribAngle, m.IshaAngle)
	case m.IshaInterval < 0:
		return fmt.Errorf("%w: negative isha interval %s", ErrInvalidMethod, m.IshaInterval)
	case (m.IshaAngle > 0) == (m.IshaInterval > 0):
		return fmt.Errorf("%w: exactly one of isha angle and isha interval must be set", ErrInvalidMethod)
	case m.Asr != Standard && m.Asr != Hanafi:
		return fmt.Errorf("%w: unknown asr school %d", ErrInvalidMethod, int(m.Asr))
	case m.HighLatitude < None || m.HighLatitude > TwilightAngle:
		return fmt.Errorf("%w: unknown high latitude rule %d", ErrInvalidMethod, int(m.HighLatitude))
	case m.Midnight != MidnightStandard && m.Midnight != MidnightJafari:
		return fmt.Errorf("%w: unknown midnight mode %d", ErrInvalidMethod, int(m.Midnight))
	case m.DhuhrMargin < 0:
		return fmt.Errorf("%w: negative dhuhr margin %s", ErrInvalidMethod, m.DhuhrMargin)
	}
	return nil
}

func validAngle(a float64) bool {
	return !math.IsNaN(a) && a >= 0 && a < 90
}

// Custom returns a method with the given twilight angles and the defaults of
// the other fields.
func Custom(fajrAngle, ishaAngle float64) Method {
	return Method{
		ID:           -1,
		Key:          "custom",
		Name:         fmt.Sprintf("Custom (%.1f°, %.1f°)", fajrAngle, ishaAngle),
		FajrAngle:    fajrAngle,
		IshaAngle:    ishaAngle,
		HighLatitude: TwilightAngle,
	}
}

// Preset methods, keyed by their Al Adhan method numbers.
var (
	Jafari       = preset(0, "jafari", "Shia Ithna-Ashari, Leva Institute, Qum", 16, 14, 0, func(m *Method) { m.MaghribAngle = 4; m.Midnight = MidnightJafari })
	Karachi      = preset(1, "karachi", "University of Islamic Sciences, Karachi", 18, 18, 0, nil)
	ISNA         = preset(2, "isna", "Islamic Society of North America", 15, 15, 0, nil)
	MWL          = preset(3, "mwl", "Muslim World League", 18, 17, 0, nil)
	UmmAlQura    = preset(4, "umm-al-qura", "Umm Al-Qura University, Makkah", 18.5, 0, 90*time.Minute, nil)
	Egyptian     = preset(5, "egypt", "Egyptian General Authority of Survey", 19.5, 17.5, 0, nil)
	Tehran       = preset(7, "tehran", "Institute of Geophysics, University of Tehran", 17.7, 14, 0, func(m *Method) { m.MaghribAngle = 4.5; m.Midnight = MidnightJafari })
	Gulf         = preset(8, "gulf", "Gulf Region", 19.5, 0, 90*time.Minute, nil)
	Kuwait       = preset(9, "kuwait", "Kuwait", 18, 17.5, 0, nil)
	Qatar        = preset(10, "qatar", "Qatar", 18, 0, 90*time.Minute, nil)
	Singapore    = preset(11, "singapore", "Majlis Ugama Islam Singapura, Singapore", 20, 18, 0, nil)
	France       = preset(12, "france", "Union Organization Islamic de France", 12, 12, 0, nil)
	Turkey       = preset(13, "turkey", "Diyanet İşleri Başkanlığı, Turkey", 18, 17, 0, func(m *Method) { m.Adjustments = Adjustments{Sunrise: -7, Dhuhr: 5, Asr: 4, Maghrib: 7} })
	Russia       = preset(14, "russia", "Spiritual Administration of Muslims of Russia", 16, 15, 0, nil)
	Moonsighting = preset(15, "moonsighting", "Moonsighting Committee Worldwide", 18, 18, 0, func(m *Method) { m.Adjustments = Adjustments{Dhuhr: 5, Maghrib: 3} })
	Dubai        = preset(16, "dubai", "Dubai", 18.2, 18.2, 0, func(m *Method) { m.Adjustments = Adjustments{Sunrise: -3, Dhuhr: 3, Asr: 3, Maghrib: 3} })
	JAKIM        = preset(17, "jakim", "Jabatan Kemajuan Islam Malaysia", 20, 18, 0, nil)
	Tunisia      = preset(18, "tunisia", "Tunisia", 18, 18, 0, nil)
	Algeria      = preset(19, "algeria", "Algeria", 18, 17, 0, nil)
	KEMENAG      = preset(20, "kemenag", "Kementerian Agama Republik Indonesia", 20, 18, 0, nil)
	Morocco      = preset(21, "morocco", "Morocco", 19, 17, 0, nil)
	Portugal     = preset(22, "portugal", "Comunidade Islamica de Lisboa", 18, 0, 77*time.Minute, nil)
	Jordan       = preset(23, "jordan", "Ministry of Awqaf, Islamic Affairs and Holy Places, Jordan", 18, 18, 0, nil)
)

// DefaultMethod is used when no method is configured.
var DefaultMethod = MWL

func preset(id int, key, name string, fajr, isha float64, interval time.Duration, extra func(*Method)) Method {
	m := Method{
		ID:           id,
		Key:          key,
		Name:         name,
		FajrAngle:    fajr,
		IshaAngle:    isha,
		IshaInterval: interval,
		HighLatitude: TwilightAngle,
	}
	if extra != nil {
		extra(&m)
	}
	return m
}

var presets = []Method{
	Jafari, Karachi, ISNA, MWL, UmmAlQura, Egyptian, Tehran, Gulf, Kuwait,
	Qatar, Singapore, France, Turkey, Russia, Moonsighting, Dubai, JAKIM,
	Tunisia, Algeria, KEMENAG, Morocco, Portugal, Jordan,
}

// Methods returns every preset ordered by ID.
func Methods() []Method {
	out := make([]Method, len(presets))
	copy(out, presets)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MethodByID returns the preset with the given Al Adhan number.
func MethodByID(id int) (Method, bool) {
	for _, m := range presets {
		if m.ID == id {
			return m, true
		}
	}
	return Method{}, false
}

// ParseMethod resolves a preset from its key or its numeric ID.
func ParseMethod(s string) (Method, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if id, err := strconv.Atoi(s); err == nil {
		if m, ok := MethodByID(id); ok {
			return m, nil
		}
		return Method{}, fmt.Errorf("%w: no preset with id %d", ErrInvalidMethod, id)
	}
	for _, m := range presets {
		if m.Key == s {
			return m, nil
		}
	}
	return Method{}, fmt.Errorf("%w: unknown method %q (run 'salat methods' for the list)", ErrInvalidMethod, s)
}
