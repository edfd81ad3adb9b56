package css

import (
	"strconv"
	"strings"
)

type LengthUnit uint8

const (
	// UnitAuto doubles as "none" for max-width/max-height.
	UnitAuto LengthUnit = iota
	UnitPx
	UnitPercent
	// UnitContent is only meaningful for flex-basis.
	UnitContent
)

// Length is a computed length-percentage or one of the auto keywords.
type Length struct {
	Value float64
	Unit  LengthUnit
}

func Auto() Length                { return Length{Unit: UnitAuto} }
func Px(v float64) Length         { return Length{Value: v, Unit: UnitPx} }
func Percent(v float64) Length    { return Length{Value: v, Unit: UnitPercent} }
func (l Length) IsAuto() bool     { return l.Unit == UnitAuto }
func (l Length) IsPercent() bool  { return l.Unit == UnitPercent }
func (l Length) IsContent() bool  { return l.Unit == UnitContent }

// Resolve returns the pixel value of l. Percentages need a definite base
// (hasBase); auto and content never resolve.
func (l Length) Resolve(base float64, hasBase bool) (float64, bool) {
	switch l.Unit {
	case UnitPx:
		return l.Value, true
	case UnitPercent:
		if !hasBase {
			return 0, false
		}
		return base * l.Value / 100, true
	}
	return 0, false
}

// ResolveOr is Resolve with a fallback for the unresolvable cases.
func (l Length) ResolveOr(base float64, hasBase bool, fallback float64) float64 {
	if v, ok := l.Resolve(base, hasBase); ok {
		return v
	}
	return fallback
}

func (l Length) String() string {
	switch l.Unit {
	case UnitPx:
		return strconv.FormatFloat(l.Value, 'f', -1, 64) + "px"
	case UnitPercent:
		return strconv.FormatFloat(l.Value, 'f', -1, 64) + "%"
	case UnitContent:
		return "content"
	}
	return "auto"
}

// ParseLengthValue parses "auto", "none", "content", "12px", "12", "50%",
// and the em/rem units against the default 16px font size.
func ParseLengthValue(val string) (Length, bool) {
	val = strings.ToLower(strings.TrimSpace(val))
	switch val {
	case "auto", "none", "normal":
		return Auto(), true
	case "content":
		return Length{Unit: UnitContent}, true
	case "":
		return Length{}, false
	}
	if strings.HasSuffix(val, "%") {
		n, err := strconv.ParseFloat(strings.TrimSuffix(val, "%"), 64)
		if err != nil {
			return Length{}, false
		}
		return Percent(n), true
	}
	scale := 1.0
	switch {
	case strings.HasSuffix(val, "px"):
		val = strings.TrimSuffix(val, "px")
	case strings.HasSuffix(val, "rem"):
		val = strings.TrimSuffix(val, "rem")
		scale = DefaultFontSize
	case strings.HasSuffix(val, "em"):
		val = strings.TrimSuffix(val, "em")
		scale = DefaultFontSize
	}
	n, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return Length{}, false
	}
	return Px(n * scale), true
}

// ParseLength parses a pixel length (e.g., "100px" or "100")
func ParseLength(val string) (float64, bool) {
	l, ok := ParseLengthValue(val)
	if !ok || l.Unit != UnitPx {
		return 0, false
	}
	return l.Value, true
}

func isNumber(v string) bool {
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

// BoxEdge represents the four sides of a box (top, right, bottom, left)
type BoxEdge struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

func (e BoxEdge) Horizontal() float64 { return e.Left + e.Right }
func (e BoxEdge) Vertical() float64   { return e.Top + e.Bottom }

// LengthEdges is BoxEdge before percentage and auto resolution.
type LengthEdges struct {
	Top    Length
	Right  Length
	Bottom Length
	Left   Length
}

// Resolve resolves all four sides against the containing block width
// (CSS resolves vertical margin and padding percentages against width too).
// Auto sides resolve to zero.
func (e LengthEdges) Resolve(containingWidth float64) BoxEdge {
	return BoxEdge{
		Top:    e.Top.ResolveOr(containingWidth, true, 0),
		Right:  e.Right.ResolveOr(containingWidth, true, 0),
		Bottom: e.Bottom.ResolveOr(containingWidth, true, 0),
		Left:   e.Left.ResolveOr(containingWidth, true, 0),
	}
}

type Color struct {
	R, G, B uint8
	A       float64
}

var namedColors = map[string]Color{
	"red":         {255, 0, 0, 1},
	"green":       {0, 128, 0, 1},
	"blue":        {0, 0, 255, 1},
	"yellow":      {255, 255, 0, 1},
	"cyan":        {0, 255, 255, 1},
	"aqua":        {0, 255, 255, 1},
	"magenta":     {255, 0, 255, 1},
	"fuchsia":     {255, 0, 255, 1},
	"white":       {255, 255, 255, 1},
	"black":       {0, 0, 0, 1},
	"gray":        {128, 128, 128, 1},
	"grey":        {128, 128, 128, 1},
	"orange":      {255, 165, 0, 1},
	"purple":      {128, 0, 128, 1},
	"pink":        {255, 192, 203, 1},
	"brown":       {165, 42, 42, 1},
	"lime":        {0, 255, 0, 1},
	"navy":        {0, 0, 128, 1},
	"teal":        {0, 128, 128, 1},
	"silver":      {192, 192, 192, 1},
	"maroon":      {128, 0, 0, 1},
	"olive":       {128, 128, 0, 1},
	"lightblue":   {173, 216, 230, 1},
	"lightgreen":  {144, 238, 144, 1},
	"lightgray":   {211, 211, 211, 1},
	"transparent": {0, 0, 0, 0},
}

// ParseColor understands named colours, #rgb and #rrggbb.
func ParseColor(colorStr string) (Color, bool) {
	colorStr = strings.ToLower(strings.TrimSpace(colorStr))
	if c, ok := namedColors[colorStr]; ok {
		return c, true
	}
	if !strings.HasPrefix(colorStr, "#") {
		return Color{}, false
	}
	hex := colorStr[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, true
}
