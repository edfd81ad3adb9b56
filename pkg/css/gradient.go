package css

import (
	"math"
	"strconv"
	"strings"
)

// ColorStop is one colour of a gradient. Offset is a fraction of the
// gradient line once Resolve has run; before that a stop given in pixels
// carries its pixel value and Pixels is set.
type ColorStop struct {
	Color  Color
	Offset float64
	Pixels bool
	// Unset marks a stop without a position.
	Unset bool
}

// Gradient is a parsed linear-gradient() background image.
type Gradient struct {
	// Direction is "to right", "to bottom", "to left", "to top" or "<n>deg".
	Direction string
	Stops     []ColorStop
}

// ParseLinearGradient parses values such as
// "linear-gradient(to right, blue 0, blue 150px, red 150px)".
func ParseLinearGradient(value string) (*Gradient, bool) {
	value = strings.TrimSpace(value)
	start := strings.Index(value, "linear-gradient(")
	if start < 0 || !strings.HasSuffix(value, ")") {
		return nil, false
	}
	parts := splitTopLevel(value[start+len("linear-gradient(") : len(value)-1])
	if len(parts) < 2 {
		return nil, false
	}

	g := &Gradient{Direction: "to bottom"}
	first := strings.TrimSpace(parts[0])
	if strings.HasPrefix(first, "to ") || strings.HasSuffix(first, "deg") {
		g.Direction = first
		parts = parts[1:]
	}
	for _, p := range parts {
		stop, ok := parseColorStop(p)
		if !ok {
			return nil, false
		}
		g.Stops = append(g.Stops, stop)
	}
	if len(g.Stops) < 2 {
		return nil, false
	}
	return g, true
}

func parseColorStop(src string) (ColorStop, bool) {
	fields := strings.Fields(src)
	if len(fields) == 0 {
		return ColorStop{}, false
	}
	c, ok := ParseColor(fields[0])
	if !ok {
		return ColorStop{}, false
	}
	stop := ColorStop{Color: c, Unset: true}
	if len(fields) < 2 {
		return stop, true
	}
	l, ok := ParseLengthValue(fields[1])
	switch {
	case !ok:
		return ColorStop{}, false
	case l.Unit == UnitPx:
		stop.Offset, stop.Pixels, stop.Unset = l.Value, true, false
	case l.Unit == UnitPercent:
		stop.Offset, stop.Unset = l.Value/100, false
	}
	return stop, true
}

// splitTopLevel splits on commas outside parentheses, so rgb() arguments stay
// together.
func splitTopLevel(src string) []string {
	var parts []string
	depth, start := 0, 0
	for i, ch := range src {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, src[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, src[start:])
}

// Length returns the gradient line length for a box of the given size.
func (g *Gradient) Length(width, height float64) float64 {
	switch g.Direction {
	case "to right", "to left":
		return width
	case "to bottom", "to top":
		return height
	}
	rad := g.Angle() * math.Pi / 180
	return math.Abs(width*math.Sin(rad)) + math.Abs(height*math.Cos(rad))
}

// Resolve returns the stops with every offset expressed as a fraction of the
// gradient line: pixel stops are divided by the line length and missing
// positions are spread evenly between their neighbours.
func (g *Gradient) Resolve(width, height float64) []ColorStop {
	stops := append([]ColorStop(nil), g.Stops...)
	size := g.Length(width, height)
	for i := range stops {
		if stops[i].Pixels {
			if size > 0 {
				stops[i].Offset /= size
			} else {
				stops[i].Offset = 0
			}
			stops[i].Pixels = false
		}
	}
	last := len(stops) - 1
	if stops[0].Unset {
		stops[0].Offset, stops[0].Unset = 0, false
	}
	if stops[last].Unset {
		stops[last].Offset, stops[last].Unset = 1, false
	}
	for i := 1; i < last; i++ {
		if !stops[i].Unset {
			continue
		}
		next := i + 1
		for stops[next].Unset {
			next++
		}
		prev := stops[i-1].Offset
		step := (stops[next].Offset - prev) / float64(next-i+1)
		stops[i].Offset, stops[i].Unset = prev+step, false
	}
	return stops
}

// Angle returns the gradient direction in degrees, CSS style: 0 points up
// and 90 points right.
func (g *Gradient) Angle() float64 {
	switch g.Direction {
	case "to top":
		return 0
	case "to right":
		return 90
	case "to bottom":
		return 180
	case "to left":
		return 270
	}
	if v, err := strconv.ParseFloat(strings.TrimSuffix(g.Direction, "deg"), 64); err == nil {
		return v
	}
	return 180
}
