package layout

import "math"

// layoutUnitScale is the fixed-point resolution offsets are snapped to:
// 1/64 of a CSS pixel, the same granularity the reference browser uses.
const layoutUnitScale = 64.0

// snapRound snaps v to the nearest layout unit.
func snapRound(v float64) float64 {
	return math.Round(v*layoutUnitScale) / layoutUnitScale
}

// snapFloor snaps v down to a layout unit boundary.
func snapFloor(v float64) float64 {
	return math.Floor(v*layoutUnitScale) / layoutUnitScale
}

func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
