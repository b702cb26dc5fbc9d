package prayer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Named modes for the one-line output of "salat next".
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatFull               = "full"
)

// Formats lists the built-in modes for help text and validation.
var Formats = []string{
	FormatTimeRemaining, FormatNextPrayerTime, FormatNameAndTime,
	FormatNameAndRemaining, FormatShortNameAndTime, FormatShortNameAndRemain,
	FormatFull,
}

// AdjustedMarker is appended to times placed by a high-latitude rule.
const AdjustedMarker = "*"

// FormatData is what a --format template sees.
type FormatData struct {
	Name      string        // "Asr"
	ShortName string        // "A"
	Time      string        // "15:02", or "3:02 PM" with a 12h layout
	Remaining string        // "2h 15m"
	Hours     int           // whole hours left
	Minutes   int           // minutes left after Hours
	Adjusted  bool          // placed by a high-latitude rule
	Until     time.Duration // raw time left
}

// builtin maps each named mode to its template.
var builtin = map[string]*template.Template{
	FormatTimeRemaining:      mustParse("{{.Remaining}}"),
	FormatNextPrayerTime:     mustParse("{{.Time}}"),
	FormatNameAndTime:        mustParse("{{.Name}} {{.Time}}"),
	FormatNameAndRemaining:   mustParse("{{.Name}} {{.Remaining}}"),
	FormatShortNameAndTime:   mustParse("{{.ShortName}} {{.Time}}"),
	FormatShortNameAndRemain: mustParse("{{.ShortName}} {{.Remaining}}"),
	FormatFull:               mustParse("{{.Name}} {{.Time}} ({{.Remaining}})"),
}

func mustParse(text string) *template.Template {
	return template.Must(template.New("").Parse(text))
}

// FormatTime formats the prayer's time, marking high-latitude estimates.
func FormatTime(p Prayer, timeFormat string) string {
	s := p.Time.Format(timeFormat)
	if p.Adjusted {
		s += AdjustedMarker
	}
	return s
}

// NewFormatData describes p as seen at now.
func NewFormatData(p Prayer, now time.Time, timeFormat string) FormatData {
	d := TimeRemaining(p, now)
	return FormatData{
		Name:      string(p.Name),
		ShortName: ShortNames[p.Name],
		Time:      FormatTime(p, timeFormat),
		Remaining: FormatRemaining(d),
		Hours:     int(d.Hours()),
		Minutes:   int(d.Minutes()) % 60,
		Adjusted:  p.Adjusted,
		Until:     d,
	}
}

// FormatOutput renders p for a status line. mode is one of Formats or, when
// it contains "{{", a Go template over FormatData such as
// "{{.Name}} in {{.Remaining}}". Unknown modes fall back to name-and-time.
// Template errors are returned in the output as "template-err: ...".
func FormatOutput(p Prayer, now time.Time, mode string, timeFormat string) string {
	tmpl, ok := builtin[mode]
	switch {
	case strings.Contains(mode, "{{"):
		var err error
		if tmpl, err = template.New("custom").Parse(mode); err != nil {
			return fmt.Sprintf("template-err: %v", err)
		}
	case !ok:
		tmpl = builtin[FormatNameAndTime]
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, NewFormatData(p, now, timeFormat)); err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}
	return buf.String()
}
