// Package display renders terminal output for the salat commands: colour,
// aligned tables and the compass needle.
//
// Colour follows NO_COLOR (https://no-color.org/) and FORCE_COLOR, and is
// off when stdout is not a terminal.
package display

import (
	"fmt"
	"os"
)

// style is an ANSI SGR sequence.
type style string

const (
	reset  style = "\033[0m"
	bold   style = "\033[1m"
	dim    style = "\033[2m"
	red    style = "\033[31m"
	green  style = "\033[32m"
	yellow style = "\033[33m"
	cyan   style = "\033[36m"
	gray   style = "\033[90m"
)

var enabled = shouldEnable()

func shouldEnable() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	return isTerminal(os.Stdout)
}

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// SetEnabled overrides the detected colour state. --json output turns it off.
func SetEnabled(b bool) {
	enabled = b
}

// Enabled reports whether colour output is active.
func Enabled() bool {
	return enabled
}

func paint(text string, styles ...style) string {
	if !enabled || len(styles) == 0 {
		return text
	}
	var prefix string
	for _, s := range styles {
		prefix += string(s)
	}
	return prefix + text + string(reset)
}

// Bold returns text rendered in bold.
func Bold(text string) string { return paint(text, bold) }

// Dim returns text rendered faint.
func Dim(text string) string { return paint(text, dim) }

// Red returns text rendered in red.
func Red(text string) string { return paint(text, red) }

// Green returns text rendered in green.
func Green(text string) string { return paint(text, green) }

// Yellow returns text rendered in yellow.
func Yellow(text string) string { return paint(text, yellow) }

// Cyan returns text rendered in cyan.
func Cyan(text string) string { return paint(text, cyan) }

// Gray returns text rendered in gray.
func Gray(text string) string { return paint(text, gray) }

// Accent highlights the next prayer and the qibla needle.
func Accent(text string) string { return paint(text, bold, cyan) }

// Boldf formats and bolds a string.
func Boldf(format string, a ...any) string {
	return Bold(fmt.Sprintf(format, a...))
}
