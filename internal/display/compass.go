package display

import (
	"fmt"
	"math"
	"strings"
)

// arrows are indexed by rotation in 45° steps, clockwise from straight ahead.
var arrows = [8]string{"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"}

// Arrow returns the arrow pointing rotation degrees clockwise from the top
// of the screen. Any real angle is accepted.
func Arrow(rotation float64) string {
	if math.IsNaN(rotation) || math.IsInf(rotation, 0) {
		return "?"
	}
	r := math.Mod(rotation, 360)
	if r < 0 {
		r += 360
	}
	return arrows[int(math.Round(r/45))%8]
}

// Degrees formats an angle with one decimal and a degree sign.
func Degrees(angle float64) string {
	return fmt.Sprintf("%.1f°", angle)
}

// Turn describes a signed rotation in words, e.g. "turn right 12.0°".
// Rotations within tolerance of zero read "facing qibla".
func Turn(rotation, tolerance float64) string {
	switch {
	case math.Abs(rotation) <= tolerance:
		return Green("facing qibla")
	case rotation > 0:
		return "turn right " + Degrees(rotation)
	default:
		return "turn left " + Degrees(-rotation)
	}
}

// Needle renders one status line for the live compass.
func Needle(heading, rotation float64, samples int) string {
	var sb strings.Builder
	sb.WriteString(Accent(Arrow(rotation)))
	sb.WriteString("  heading ")
	sb.WriteString(Bold(fmt.Sprintf("%5.1f°", heading)))
	sb.WriteString("  ")
	sb.WriteString(Turn(rotation, 2))
	sb.WriteString(Gray(fmt.Sprintf("  (%d samples)", samples)))
	return sb.String()
}
