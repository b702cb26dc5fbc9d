package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/smokyabdulrahman/salat/internal/api"
	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/hijri"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

var (
	meccaFlags  = []string{"--latitude", "21.3891", "--longitude", "39.8579", "--elevation", "10", "--timezone", "Asia/Riyadh"}
	londonFlags = []string{"--latitude", "51.5074", "--longitude", "-0.1278", "--timezone", "Europe/London"}
)

// setup isolates the config directory and pins the clock.
func setup(t *testing.T, at time.Time) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	old := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = old })

	display.SetEnabled(false)
}

// run executes the root command in-process and returns stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func with(base []string, args ...string) []string {
	return append(append([]string{}, args...), base...)
}

func riyadh(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Riyadh")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	return time.Date(2024, 6, 21, hour, minute, 0, 0, loc)
}

// --- today ---

func TestToday_JSON(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	out, _, err := run(t, "", with(meccaFlags, "--json")...)
	if err != nil {
		t.Fatalf("today error: %v", err)
	}

	var got todayJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	want := map[string]string{
		"fajr":    "04:14",
		"sunrise": "05:39",
		"asr":     "15:42",
		"maghrib": "19:06",
		"isha":    "20:26",
	}
	for k, v := range want {
		if got.Timings[k] != v {
			t.Errorf("timings[%s] = %q, want %q", k, got.Timings[k], v)
		}
	}
	if got.Current != "sunrise" {
		t.Errorf("current = %q, want sunrise", got.Current)
	}
	if got.Next == nil || got.Next.Prayer != "dhuhr" {
		t.Errorf("next = %+v, want dhuhr", got.Next)
	}
	if got.Method != "mwl" {
		t.Errorf("method = %q, want mwl", got.Method)
	}
	if got.Date.Gregorian != "2024-06-21" {
		t.Errorf("gregorian = %q, want 2024-06-21", got.Date.Gregorian)
	}
	if got.Date.Hijri != hijri.FromGregorian(2024, time.June, 21) {
		t.Errorf("hijri = %+v, want %+v", got.Date.Hijri, hijri.FromGregorian(2024, time.June, 21))
	}
	if len(got.Adjusted) != 0 {
		t.Errorf("adjusted = %v, want none", got.Adjusted)
	}
}

func TestToday_Rich(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	out, _, err := run(t, "", with(meccaFlags, "--time-format", "12h")...)
	if err != nil {
		t.Fatalf("today error: %v", err)
	}

	for _, want := range []string{"Prayer Times", "Asia/Riyadh", "Muslim World League", "7:06 PM", "<- next in", hijri.Approximation} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestToday_HighLatitudeMarker(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	setup(t, time.Date(2024, 6, 21, 9, 0, 0, 0, loc))

	out, _, err := run(t, "", londonFlags...)
	if err != nil {
		t.Fatalf("today error: %v", err)
	}
	if !strings.Contains(out, prayer.AdjustedMarker+" Fajr, Isha estimated by the twilight-angle rule") {
		t.Errorf("missing adjusted note:\n%s", out)
	}
}

func TestToday_PolarWithoutRule(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	setup(t, time.Date(2024, 6, 21, 9, 0, 0, 0, loc))

	_, _, err = run(t, "", with(londonFlags, "--high-lat", "none")...)
	if !errors.Is(err, prayer.ErrPolarDayOrNight) {
		t.Fatalf("error = %v, want ErrPolarDayOrNight", err)
	}
	var pe *prayer.PolarError
	if !errors.As(err, &pe) || pe.Prayer != prayer.Fajr {
		t.Errorf("error = %#v, want PolarError for Fajr", err)
	}
}

func TestToday_NoLocation(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	_, _, err := run(t, "")
	if !errors.Is(err, errNoLocation) {
		t.Errorf("error = %v, want errNoLocation", err)
	}
}

func TestToday_InvalidInputs(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	tests := []struct {
		name string
		args []string
	}{
		{"latitude", []string{"--latitude", "95", "--longitude", "0"}},
		{"method", with(meccaFlags, "--method", "nope")},
		{"school", with(meccaFlags, "--school", "maliki")},
		{"high-lat", with(meccaFlags, "--high-lat", "sometimes")},
		{"timezone", []string{"--latitude", "0", "--longitude", "0", "--timezone", "Mars/Olympus"}},
		{"time-format", with(meccaFlags, "--time-format", "36h")},
		{"log-level", with(meccaFlags, "--log-level", "loud")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := run(t, "", tt.args...); err == nil {
				t.Errorf("expected error for %v", tt.args)
			}
		})
	}
}

func TestToday_ConfigFile(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	for _, kv := range [][2]string{
		{"latitude", "21.3891"},
		{"longitude", "39.8579"},
		{"elevation", "10"},
		{"timezone", "Asia/Riyadh"},
		{"method", "umm-al-qura"},
	} {
		if _, _, err := run(t, "", "config", "set", kv[0], kv[1]); err != nil {
			t.Fatalf("config set %s: %v", kv[0], err)
		}
	}

	out, _, err := run(t, "", "--json")
	if err != nil {
		t.Fatalf("today error: %v", err)
	}
	var got todayJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Method != "umm-al-qura" {
		t.Errorf("method = %q, want umm-al-qura", got.Method)
	}
	// Isha is 90 minutes after Maghrib.
	if got.Timings["isha"] != "20:36" {
		t.Errorf("isha = %q, want 20:36", got.Timings["isha"])
	}

	// Flags win over the config file.
	out, _, err = run(t, "", "--json", "--method", "mwl")
	if err != nil {
		t.Fatalf("today error: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Method != "mwl" {
		t.Errorf("method = %q, want mwl", got.Method)
	}
}

func TestToday_Adjustments(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	check := func(out string) {
		t.Helper()
		var got todayJSON
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		want := map[string]string{
			"fajr":    "04:12",
			"sunrise": "05:39",
			"maghrib": "19:08",
			"isha":    "20:26",
		}
		for k, v := range want {
			if got.Timings[k] != v {
				t.Errorf("timings[%s] = %q, want %q", k, got.Timings[k], v)
			}
		}
	}

	out, _, err := run(t, "", with(meccaFlags, "--json", "--adjustments", "-2,0,0,0,0,2,0,0")...)
	if err != nil {
		t.Fatalf("today error: %v", err)
	}
	check(out)

	if _, _, err := run(t, "", "config", "set", "adjustments", "-2,0,0,0,0,2,0,0"); err != nil {
		t.Fatalf("config set adjustments: %v", err)
	}
	out, _, err = run(t, "", with(meccaFlags, "--json")...)
	if err != nil {
		t.Fatalf("today error: %v", err)
	}
	check(out)

	if _, _, err := run(t, "", with(meccaFlags, "--adjustments", "1,2,3")...); err == nil {
		t.Error("expected error for a short adjustments list")
	}
}

func TestToday_DebugLogging(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	_, stderr, err := run(t, "", with(meccaFlags, "--log-level", "debug", "--log-format", "json")...)
	if err != nil {
		t.Fatalf("today error: %v", err)
	}
	if !strings.Contains(stderr, `"msg":"computed schedule"`) || !strings.Contains(stderr, `"app":"salat"`) {
		t.Errorf("stderr missing debug record:\n%s", stderr)
	}
}

// --- next ---

func TestNext(t *testing.T) {
	tests := []struct {
		name   string
		hour   int
		args   []string
		prefix string
	}{
		{"before dhuhr", 10, []string{"--format", "{{.Name}}"}, "Dhuhr"},
		{"before maghrib", 17, []string{"--format", prayer.FormatNameAndTime}, "Maghrib 19:06"},
		{"after isha rolls over", 23, []string{"--format", prayer.FormatShortNameAndTime}, "F 04:1"},
		{"custom prayers", 10, []string{"--format", "{{.Name}}", "--prayers", "Asr,Isha"}, "Asr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t, riyadh(t, tt.hour, 0))

			out, _, err := run(t, "", append(with(meccaFlags, "next"), tt.args...)...)
			if err != nil {
				t.Fatalf("next error: %v", err)
			}
			if !strings.HasPrefix(out, tt.prefix) {
				t.Errorf("next = %q, want prefix %q", out, tt.prefix)
			}
			if strings.HasSuffix(out, "\n") {
				t.Error("next output should not end with a newline")
			}
		})
	}
}

// --- list / week / month ---

func TestList_JSON(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	out, _, err := run(t, "", with(meccaFlags, "--json", "list", "3")...)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}

	var got listJSONOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(got.Days) != 3 {
		t.Fatalf("len(days) = %d, want 3", len(got.Days))
	}
	for i, want := range []string{"2024-06-21", "2024-06-22", "2024-06-23"} {
		if got.Days[i].Date != want {
			t.Errorf("days[%d].date = %q, want %q", i, got.Days[i].Date, want)
		}
		if len(got.Days[i].Timings) != len(prayer.DefaultNames) {
			t.Errorf("days[%d] has %d timings, want %d", i, len(got.Days[i].Timings), len(prayer.DefaultNames))
		}
	}
}

func TestList_Aliases(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	tests := []struct {
		args []string
		rows int
	}{
		{[]string{"list"}, 7},
		{[]string{"week"}, 7},
		{[]string{"month"}, 30},
		{[]string{"list", "2"}, 2},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, "_"), func(t *testing.T) {
			out, _, err := run(t, "", append(with(meccaFlags), tt.args...)...)
			if err != nil {
				t.Fatalf("%v error: %v", tt.args, err)
			}
			// One row per day, each starting with the weekday.
			rows := 0
			for _, line := range strings.Split(out, "\n") {
				for _, wd := range []string{"Mon ", "Tue ", "Wed ", "Thu ", "Fri ", "Sat ", "Sun "} {
					if strings.HasPrefix(strings.TrimSpace(line), wd) {
						rows++
					}
				}
			}
			if rows != tt.rows {
				t.Errorf("rows = %d, want %d\n%s", rows, tt.rows, out)
			}
		})
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"week", 7, false},
		{"month", 30, false},
		{"366", 366, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"367", 0, true},
		{"lots", 0, true},
	}

	for _, tt := range tests {
		got, err := parseDays(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDays(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseDays(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// --- query ---

func TestQuery_Single(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	out, _, err := run(t, "", with(meccaFlags, "query", "maghrib")...)
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	if out != "Maghrib 19:06\n" {
		t.Errorf("query = %q, want %q", out, "Maghrib 19:06\n")
	}
}

func TestQuery_MultiJSON(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	out, _, err := run(t, "", with(meccaFlags, "--json", "query", "Isha", "--days", "week")...)
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	var got queryJSONMulti
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Prayer != "isha" || len(got.Days) != 7 {
		t.Errorf("got prayer %q with %d days, want isha with 7", got.Prayer, len(got.Days))
	}
}

func TestQuery_Invalid(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	if _, _, err := run(t, "", with(meccaFlags, "query", "brunch")...); err == nil {
		t.Error("expected error for unknown prayer")
	}
	if _, _, err := run(t, "", with(meccaFlags, "query", "fajr", "--days", "0")...); err == nil {
		t.Error("expected error for --days 0")
	}
}

// --- qibla ---

func TestQibla_JSON(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	out, _, err := run(t, "", with(londonFlags, "--json", "qibla")...)
	if err != nil {
		t.Fatalf("qibla error: %v", err)
	}

	var got struct {
		Bearing      float64 `json:"bearing"`
		Distance     float64 `json:"distance_km"`
		CompassPoint string  `json:"compass_point"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if math.Abs(got.Bearing-118.99) > 0.5 {
		t.Errorf("bearing = %.2f, want 118.99 ±0.5", got.Bearing)
	}
	if got.Distance < 4700 || got.Distance > 4900 {
		t.Errorf("distance = %.0f km, want about 4794", got.Distance)
	}
	if got.CompassPoint != "ESE" {
		t.Errorf("compass point = %q, want ESE", got.CompassPoint)
	}
}

func TestQibla_AtKaaba(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	_, _, err := run(t, "", "--latitude", "21.4225", "--longitude", "39.8262", "qibla")
	if err == nil || !strings.Contains(err.Error(), "Kaaba") {
		t.Errorf("error = %v, want coincident location error", err)
	}
}

// --- hijri ---

func TestHijri_FromGregorian(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	out, _, err := run(t, "", "--json", "hijri", "2024-03-11")
	if err != nil {
		t.Fatalf("hijri error: %v", err)
	}
	var got hijriJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	want := hijri.FromGregorian(2024, time.March, 11)
	if got.Hijri != want {
		t.Errorf("hijri = %+v, want %+v", got.Hijri, want)
	}
	if got.MonthName != hijri.MonthName(want.Month) {
		t.Errorf("month name = %q, want %q", got.MonthName, hijri.MonthName(want.Month))
	}
}

func TestHijri_ToGregorian(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	out, _, err := run(t, "", "--json", "hijri", "--to-gregorian", "1445-09-01")
	if err != nil {
		t.Fatalf("hijri error: %v", err)
	}
	var got hijriJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	want, err := hijri.ToGregorian(hijri.Date{Year: 1445, Month: 9, Day: 1})
	if err != nil {
		t.Fatal(err)
	}
	if got.Gregorian != want {
		t.Errorf("gregorian = %+v, want %+v", got.Gregorian, want)
	}
}

func TestHijri_Today(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	out, _, err := run(t, "", "--timezone", "Asia/Riyadh", "hijri")
	if err != nil {
		t.Fatalf("hijri error: %v", err)
	}
	want := hijri.FromGregorian(2024, time.June, 21).String()
	if !strings.Contains(out, want) {
		t.Errorf("output = %q, want it to contain %q", out, want)
	}
}

func TestHijri_Invalid(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	tests := [][]string{
		{"hijri", "2100-01-01"},
		{"hijri", "21-06-2024"},
		{"hijri", "--to-gregorian", "1445-13-01"},
		{"hijri", "--to-gregorian", "1200-01-01"},
		{"hijri", "--to-gregorian", "Ramadan"},
		{"hijri", "2024-06-21", "--to-gregorian", "1445-09-01"},
	}
	for _, args := range tests {
		if _, _, err := run(t, "", args...); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

// --- compass ---

func TestCompass_StdinJSON(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	stdin := strings.Join([]string{
		`{"heading": 100, "ts": 1000}`,
		`not json`,
		`{"heading": 100, "ts": 1100}`,
		``,
	}, "\n")

	out, stderr, err := run(t, stdin, with(londonFlags, "--json", "--log-level", "warn", "compass")...)
	if err != nil {
		t.Fatalf("compass error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}

	var last struct {
		Heading  float64 `json:"heading"`
		Rotation float64 `json:"rotation"`
		Samples  int     `json:"samples"`
		State    string  `json:"state"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &last); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if last.Heading != 100 || last.Samples != 2 || last.State != "sampling" {
		t.Errorf("last = %+v, want heading 100 after 2 samples", last)
	}
	if math.Abs(last.Rotation-18.99) > 0.5 {
		t.Errorf("rotation = %.2f, want about 18.99", last.Rotation)
	}
	if !strings.Contains(stderr, "skipping malformed sample") {
		t.Errorf("stderr missing malformed sample warning:\n%s", stderr)
	}
}

func TestCompass_TrueNorthText(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	stdin := `{"heading": 110, "declination": 9, "ts": 5}` + "\n"

	out, _, err := run(t, stdin, with(londonFlags, "compass", "--true-north", "--smoothing", "1s")...)
	if err != nil {
		t.Fatalf("compass error: %v", err)
	}
	if !strings.Contains(out, "facing qibla") || !strings.Contains(out, "(1 samples)") {
		t.Errorf("output = %q, want facing qibla after 1 sample", out)
	}
}

func TestCompass_InvalidSource(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	_, _, err := run(t, "", with(londonFlags, "compass", "--source", "serial")...)
	if err == nil || !strings.Contains(err.Error(), "--source") {
		t.Errorf("error = %v, want invalid source", err)
	}
}

func TestCompass_MQTTRequiresBroker(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	_, _, err := run(t, "", with(londonFlags, "compass", "--source", "mqtt")...)
	if err == nil || !strings.Contains(err.Error(), "broker") {
		t.Errorf("error = %v, want missing broker", err)
	}
}

// --- verify ---

func TestVerify(t *testing.T) {
	tests := []struct {
		name       string
		fajr       string
		hijriShift int    // days added to the API's Hijri date
		adjust     string // --adjustments, which verify leaves out
		wantErr    bool
	}{
		{"agree", "04:14", 0, "", false},
		{"hijri one day ahead", "04:14", 1, "", false},
		{"fajr off by 16 minutes", "04:30", 0, "", true},
		{"hijri two days behind", "04:14", -2, "", true},
		{"user adjustments ignored", "04:14", 0, "10,0,0,0,0,10,0,0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t, riyadh(t, 10, 0))

			ref := hijri.FromGregorian(2024, time.June, 21)
			ref.Day += tt.hijriShift

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/timings/21-06-2024" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				if r.URL.Query().Get("method") != "3" {
					t.Errorf("method = %q, want 3", r.URL.Query().Get("method"))
				}
				json.NewEncoder(w).Encode(api.Response{
					Code:   200,
					Status: "OK",
					Data: api.Data{
						Timings: api.Timings{
							Fajr: tt.fajr, Sunrise: "05:39", Dhuhr: "12:22", Asr: "15:42",
							Sunset: "19:06", Maghrib: "19:06", Isha: "20:26", Midnight: "00:22",
						},
						Date: api.DateInfo{Hijri: api.HijriDate{
							Day:   strconv.Itoa(ref.Day),
							Month: api.HijriMonth{Number: ref.Month},
							Year:  strconv.Itoa(ref.Year),
						}},
						Meta: api.Meta{Timezone: "Asia/Riyadh"},
					},
				})
			}))
			defer server.Close()

			old := newAPIClient
			newAPIClient = func() *api.Client {
				c := api.NewClient()
				c.BaseURL = server.URL
				return c
			}
			t.Cleanup(func() { newAPIClient = old })

			args := []string{"--json", "verify", "--tolerance", "3"}
			if tt.adjust != "" {
				args = append(args, "--adjustments", tt.adjust)
			}
			out, _, err := run(t, "", with(meccaFlags, args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("verify error = %v, wantErr %v", err, tt.wantErr)
			}

			var got verifyJSON
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("invalid JSON: %v\n%s", err, out)
			}
			if len(got.Rows) != len(prayer.AllNames) {
				t.Fatalf("rows = %d, want %d", len(got.Rows), len(prayer.AllNames))
			}
			for _, r := range got.Rows {
				if r.DeltaMin == nil {
					t.Errorf("%s has no Al Adhan delta", r.Name)
				}
				hasLib := r.Name == prayer.Sunrise || r.Name == prayer.Sunset
				if (r.SunDelta != nil) != hasLib {
					t.Errorf("%s go-sunrise delta = %v, want present=%v", r.Name, r.SunDelta, hasLib)
				}
			}
			if got.Hijri == nil {
				t.Fatal("missing hijri comparison")
			}
			if got.Hijri.AlAdhan != ref || got.Hijri.DeltaDays != -tt.hijriShift {
				t.Errorf("hijri = %+v, want Al Adhan %v and delta %d", got.Hijri, ref, -tt.hijriShift)
			}
		})
	}
}

func TestFormatDelta(t *testing.T) {
	display.SetEnabled(false)

	f := func(v float64) *float64 { return &v }
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, ""},
		{f(0), "0"},
		{f(-0.3), "0"},
		{f(1.6), "+2"},
		{f(-4), "-4"},
	}
	for _, tt := range tests {
		if got := formatDelta(tt.in, 2); got != tt.want {
			t.Errorf("formatDelta(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- config / methods ---

func TestConfigCommands(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	if _, _, err := run(t, "", "config", "set", "latitude", "21.4225"); err != nil {
		t.Fatalf("config set error: %v", err)
	}

	out, _, err := run(t, "", "config", "get", "latitude")
	if err != nil {
		t.Fatalf("config get error: %v", err)
	}
	if out != "21.4225\n" {
		t.Errorf("config get = %q, want %q", out, "21.4225\n")
	}

	out, _, err = run(t, "", "config")
	if err != nil {
		t.Fatalf("config show error: %v", err)
	}
	if !strings.Contains(out, "21.4225") || !strings.Contains(out, "(default: mwl)") {
		t.Errorf("config show output:\n%s", out)
	}

	out, _, err = run(t, "", "config", "path")
	if err != nil {
		t.Fatalf("config path error: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), filepath.Join("salat", "config.json")) {
		t.Errorf("config path = %q", out)
	}

	if _, _, err := run(t, "", "config", "reset"); err != nil {
		t.Fatalf("config reset error: %v", err)
	}
	out, _, _ = run(t, "", "config", "get", "latitude")
	if out != "\n" {
		t.Errorf("after reset latitude = %q, want empty", out)
	}

	if _, _, err := run(t, "", "config", "set", "cache_dir", "/tmp"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestMethodsCommand(t *testing.T) {
	setup(t, riyadh(t, 10, 0))

	out, _, err := run(t, "", "methods")
	if err != nil {
		t.Fatalf("methods error: %v", err)
	}
	for _, want := range []string{"mwl", "Muslim World League", "umm-al-qura", "90 min", "Holy Places, Jordan"} {
		if !strings.Contains(out, want) {
			t.Errorf("methods output missing %q", want)
		}
	}

	out, _, err = run(t, "", "--json", "methods")
	if err != nil {
		t.Fatalf("methods --json error: %v", err)
	}
	var got []methodJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != len(prayer.Methods()) {
		t.Errorf("got %d methods, want %d", len(got), len(prayer.Methods()))
	}
}

// --- binary ---

// TestVersionFlag builds the binary and checks the ldflags version.
func TestVersionFlag(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	binPath := filepath.Join(t.TempDir(), "salat")

	build := exec.Command("go", "build", "-ldflags", "-X main.version=v1.2.3-test", "-o", binPath, "../../cmd/salat")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}

	out, err := exec.Command(binPath, "--version").Output()
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}

	got := strings.TrimSpace(string(out))
	if want := "salat version v1.2.3-test"; got != want {
		t.Errorf("--version = %q, want %q", got, want)
	}
}
