package css

import (
	"strconv"
	"strings"
)

// DefaultFontSize is the initial font-size in pixels.
const DefaultFontSize = 16.0

type DisplayType string

const (
	DisplayBlock       DisplayType = "block"
	DisplayInline      DisplayType = "inline"
	DisplayInlineBlock DisplayType = "inline-block"
	DisplayFlex        DisplayType = "flex"
	DisplayInlineFlex  DisplayType = "inline-flex"
	DisplayFlowRoot    DisplayType = "flow-root"
	DisplayNone        DisplayType = "none"
)

type PositionType string

const (
	PositionStatic   PositionType = "static"
	PositionRelative PositionType = "relative"
	PositionAbsolute PositionType = "absolute"
	PositionFixed    PositionType = "fixed"
	PositionSticky   PositionType = "sticky"
)

type FloatType string

const (
	FloatNone  FloatType = "none"
	FloatLeft  FloatType = "left"
	FloatRight FloatType = "right"
)

type ClearType string

const (
	ClearNone  ClearType = "none"
	ClearLeft  ClearType = "left"
	ClearRight ClearType = "right"
	ClearBoth  ClearType = "both"
)

type OverflowType string

const (
	OverflowVisible OverflowType = "visible"
	OverflowHidden  OverflowType = "hidden"
	OverflowScroll  OverflowType = "scroll"
	OverflowAuto    OverflowType = "auto"
	OverflowClip    OverflowType = "clip"
)

type BoxSizing string

const (
	ContentBox BoxSizing = "content-box"
	BorderBox  BoxSizing = "border-box"
)

type FlexDirection string

const (
	FlexRow           FlexDirection = "row"
	FlexRowReverse    FlexDirection = "row-reverse"
	FlexColumn        FlexDirection = "column"
	FlexColumnReverse FlexDirection = "column-reverse"
)

type FlexWrap string

const (
	FlexNoWrap      FlexWrap = "nowrap"
	FlexWrapOn      FlexWrap = "wrap"
	FlexWrapReverse FlexWrap = "wrap-reverse"
)

type JustifyContent string

const (
	JustifyFlexStart    JustifyContent = "flex-start"
	JustifyFlexEnd      JustifyContent = "flex-end"
	JustifyCenter       JustifyContent = "center"
	JustifySpaceBetween JustifyContent = "space-between"
	JustifySpaceAround  JustifyContent = "space-around"
	JustifySpaceEvenly  JustifyContent = "space-evenly"
)

// AlignItems is used for both align-items and align-self; AlignAuto is only
// valid for align-self.
type AlignItems string

const (
	AlignAuto      AlignItems = "auto"
	AlignStretch   AlignItems = "stretch"
	AlignFlexStart AlignItems = "flex-start"
	AlignFlexEnd   AlignItems = "flex-end"
	AlignCenter    AlignItems = "center"
	AlignBaseline  AlignItems = "baseline"
)

// ComputedStyle is the per-node snapshot the layout engine consumes. Every
// field holds a valid value; unknown or missing declarations fall back to the
// CSS initial value.
type ComputedStyle struct {
	Display   DisplayType
	Position  PositionType
	Float     FloatType
	Clear     ClearType
	Overflow  OverflowType
	BoxSizing BoxSizing

	Margin  LengthEdges
	Padding LengthEdges
	Border  BoxEdge
	Inset   LengthEdges

	Width     Length
	Height    Length
	MinWidth  Length
	MinHeight Length
	MaxWidth  Length
	MaxHeight Length

	FlexDirection  FlexDirection
	FlexWrap       FlexWrap
	FlexGrow       float64
	FlexShrink     float64
	FlexBasis      Length
	Order          int
	JustifyContent JustifyContent
	AlignItems     AlignItems
	AlignSelf      AlignItems
	RowGap         Length
	ColumnGap      Length

	FontSize        float64
	BackgroundColor Color
	BackgroundImage *Gradient
	BorderColor     Color
}

// InitialStyle returns the CSS initial values. Note that the initial display
// is inline; element defaults come from DefaultDisplay.
func InitialStyle() ComputedStyle {
	return ComputedStyle{
		Display:        DisplayInline,
		Position:       PositionStatic,
		Float:          FloatNone,
		Clear:          ClearNone,
		Overflow:       OverflowVisible,
		BoxSizing:      ContentBox,
		Margin:         LengthEdges{Px(0), Px(0), Px(0), Px(0)},
		Padding:        LengthEdges{Px(0), Px(0), Px(0), Px(0)},
		Inset:          LengthEdges{Auto(), Auto(), Auto(), Auto()},
		Width:          Auto(),
		Height:         Auto(),
		MinWidth:       Auto(),
		MinHeight:      Auto(),
		MaxWidth:       Auto(),
		MaxHeight:      Auto(),
		FlexDirection:  FlexRow,
		FlexWrap:       FlexNoWrap,
		FlexGrow:       0,
		FlexShrink:     1,
		FlexBasis:      Auto(),
		JustifyContent: JustifyFlexStart,
		AlignItems:     AlignStretch,
		AlignSelf:      AlignAuto,
		RowGap:         Px(0),
		ColumnGap:      Px(0),
		FontSize:       DefaultFontSize,
		BorderColor:    Color{A: 1},
	}
}

// Block returns the initial style with display:block, handy for trees built
// in code.
func Block() ComputedStyle {
	cs := InitialStyle()
	cs.Display = DisplayBlock
	return cs
}

// IsFlexContainer reports whether the box lays out its children as flex items.
func (cs ComputedStyle) IsFlexContainer() bool {
	return cs.Display == DisplayFlex || cs.Display == DisplayInlineFlex
}

// IsOutOfFlow reports absolute and fixed positioning.
func (cs ComputedStyle) IsOutOfFlow() bool {
	return cs.Position == PositionAbsolute || cs.Position == PositionFixed
}

// IsFloat reports float:left|right on an in-flow box.
func (cs ComputedStyle) IsFloat() bool {
	return cs.Float != FloatNone && !cs.IsOutOfFlow()
}

// Compute converts specified declarations into a computed snapshot for an
// element with the given tag.
func Compute(tag string, specified *Style) ComputedStyle {
	cs := InitialStyle()
	cs.Display = DefaultDisplay(tag)

	if v, ok := specified.Get("display"); ok {
		if d, ok := parseDisplay(v); ok {
			cs.Display = d
		}
	}
	if v, ok := specified.Get("position"); ok {
		switch PositionType(strings.TrimSpace(v)) {
		case PositionRelative, PositionAbsolute, PositionFixed, PositionSticky, PositionStatic:
			cs.Position = PositionType(strings.TrimSpace(v))
		}
	}
	if v, ok := specified.Get("float"); ok {
		switch FloatType(strings.TrimSpace(v)) {
		case FloatLeft, FloatRight, FloatNone:
			cs.Float = FloatType(strings.TrimSpace(v))
		}
	}
	if v, ok := specified.Get("clear"); ok {
		switch ClearType(strings.TrimSpace(v)) {
		case ClearLeft, ClearRight, ClearBoth, ClearNone:
			cs.Clear = ClearType(strings.TrimSpace(v))
		}
	}
	cs.Overflow = computeOverflow(specified)
	if v, ok := specified.Get("box-sizing"); ok && BoxSizing(strings.TrimSpace(v)) == BorderBox {
		cs.BoxSizing = BorderBox
	}

	cs.Margin = lengthEdges(specified, "margin", "", cs.Margin)
	cs.Padding = lengthEdges(specified, "padding", "", cs.Padding)
	cs.Inset = LengthEdges{
		Top:    lengthOr(specified, "top", cs.Inset.Top),
		Right:  lengthOr(specified, "right", cs.Inset.Right),
		Bottom: lengthOr(specified, "bottom", cs.Inset.Bottom),
		Left:   lengthOr(specified, "left", cs.Inset.Left),
	}
	cs.Border = BoxEdge{
		Top:    borderWidth(specified, "top"),
		Right:  borderWidth(specified, "right"),
		Bottom: borderWidth(specified, "bottom"),
		Left:   borderWidth(specified, "left"),
	}

	cs.Width = lengthOr(specified, "width", cs.Width)
	cs.Height = lengthOr(specified, "height", cs.Height)
	cs.MinWidth = lengthOr(specified, "min-width", cs.MinWidth)
	cs.MinHeight = lengthOr(specified, "min-height", cs.MinHeight)
	cs.MaxWidth = lengthOr(specified, "max-width", cs.MaxWidth)
	cs.MaxHeight = lengthOr(specified, "max-height", cs.MaxHeight)

	if v, ok := specified.Get("flex-direction"); ok {
		switch FlexDirection(strings.TrimSpace(v)) {
		case FlexRow, FlexRowReverse, FlexColumn, FlexColumnReverse:
			cs.FlexDirection = FlexDirection(strings.TrimSpace(v))
		}
	}
	if v, ok := specified.Get("flex-wrap"); ok {
		switch FlexWrap(strings.TrimSpace(v)) {
		case FlexNoWrap, FlexWrapOn, FlexWrapReverse:
			cs.FlexWrap = FlexWrap(strings.TrimSpace(v))
		}
	}
	cs.FlexGrow = nonNegativeNumber(specified, "flex-grow", cs.FlexGrow)
	cs.FlexShrink = nonNegativeNumber(specified, "flex-shrink", cs.FlexShrink)
	cs.FlexBasis = lengthOr(specified, "flex-basis", cs.FlexBasis)
	if v, ok := specified.Get("order"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cs.Order = n
		}
	}
	if v, ok := specified.Get("justify-content"); ok {
		cs.JustifyContent = parseJustify(v, cs.JustifyContent)
	}
	if v, ok := specified.Get("align-items"); ok {
		if a, ok := parseAlign(v); ok && a != AlignAuto {
			cs.AlignItems = a
		}
	}
	if v, ok := specified.Get("align-self"); ok {
		if a, ok := parseAlign(v); ok {
			cs.AlignSelf = a
		}
	}
	cs.RowGap = lengthOr(specified, "row-gap", cs.RowGap)
	cs.ColumnGap = lengthOr(specified, "column-gap", cs.ColumnGap)
	if cs.RowGap.IsAuto() {
		cs.RowGap = Px(0)
	}
	if cs.ColumnGap.IsAuto() {
		cs.ColumnGap = Px(0)
	}

	if v, ok := specified.Get("font-size"); ok {
		if px, ok := ParseLength(v); ok && px > 0 {
			cs.FontSize = px
		}
	}
	if v, ok := specified.Get("background-color"); ok {
		if c, ok := ParseColor(v); ok {
			cs.BackgroundColor = c
		}
	}
	if v, ok := specified.Get("background-image"); ok {
		if g, ok := ParseLinearGradient(v); ok {
			cs.BackgroundImage = g
		}
	}
	if v, ok := specified.Get("border-color"); ok {
		if c, ok := ParseColor(v); ok {
			cs.BorderColor = c
		}
	}

	blockify(&cs)
	return cs
}

// blockify applies the display fixups CSS 2.2 §9.7 requires for floats and
// absolutely positioned boxes.
func blockify(cs *ComputedStyle) {
	if cs.Display == DisplayNone {
		return
	}
	if cs.Float != FloatNone || cs.IsOutOfFlow() {
		cs.Display = BlockifyDisplay(cs.Display)
	}
	if cs.IsOutOfFlow() {
		cs.Float = FloatNone
	}
}

// BlockifyDisplay maps inline-level display values to their block-level
// equivalents. Flex items are blockified the same way.
func BlockifyDisplay(d DisplayType) DisplayType {
	switch d {
	case DisplayInline, DisplayInlineBlock:
		return DisplayBlock
	case DisplayInlineFlex:
		return DisplayFlex
	}
	return d
}

func parseDisplay(v string) (DisplayType, bool) {
	switch strings.TrimSpace(v) {
	case "block", "list-item", "table", "contents":
		return DisplayBlock, true
	case "inline":
		return DisplayInline, true
	case "inline-block", "inline-table":
		return DisplayInlineBlock, true
	case "flex":
		return DisplayFlex, true
	case "inline-flex":
		return DisplayInlineFlex, true
	case "flow-root":
		return DisplayFlowRoot, true
	case "none":
		return DisplayNone, true
	}
	return "", false
}

func computeOverflow(s *Style) OverflowType {
	out := OverflowVisible
	for _, prop := range []string{"overflow-x", "overflow-y"} {
		v, ok := s.Get(prop)
		if !ok {
			continue
		}
		switch o := OverflowType(strings.TrimSpace(v)); o {
		case OverflowHidden, OverflowScroll, OverflowAuto, OverflowClip:
			out = o
		}
	}
	return out
}

func parseJustify(v string, fallback JustifyContent) JustifyContent {
	switch strings.TrimSpace(v) {
	case "flex-start", "start", "left", "normal", "stretch":
		return JustifyFlexStart
	case "flex-end", "end", "right":
		return JustifyFlexEnd
	case "center":
		return JustifyCenter
	case "space-between":
		return JustifySpaceBetween
	case "space-around":
		return JustifySpaceAround
	case "space-evenly":
		return JustifySpaceEvenly
	}
	return fallback
}

func parseAlign(v string) (AlignItems, bool) {
	switch strings.TrimSpace(v) {
	case "auto":
		return AlignAuto, true
	case "stretch", "normal":
		return AlignStretch, true
	case "flex-start", "start", "self-start":
		return AlignFlexStart, true
	case "flex-end", "end", "self-end":
		return AlignFlexEnd, true
	case "center":
		return AlignCenter, true
	case "baseline", "first baseline", "last baseline":
		return AlignBaseline, true
	}
	return "", false
}

func lengthOr(s *Style, property string, fallback Length) Length {
	v, ok := s.Get(property)
	if !ok {
		return fallback
	}
	l, ok := ParseLengthValue(v)
	if !ok {
		return fallback
	}
	return l
}

func lengthEdges(s *Style, prefix, suffix string, fallback LengthEdges) LengthEdges {
	return LengthEdges{
		Top:    lengthOr(s, prefix+"-top"+suffix, fallback.Top),
		Right:  lengthOr(s, prefix+"-right"+suffix, fallback.Right),
		Bottom: lengthOr(s, prefix+"-bottom"+suffix, fallback.Bottom),
		Left:   lengthOr(s, prefix+"-left"+suffix, fallback.Left),
	}
}

// borderWidth resolves border-<side>-width, honouring the keyword widths.
// Negative and percentage widths are invalid and compute to zero.
func borderWidth(s *Style, side string) float64 {
	v, ok := s.Get("border-" + side + "-width")
	if !ok {
		return 0
	}
	switch strings.TrimSpace(v) {
	case "thin":
		return 1
	case "medium":
		return 3
	case "thick":
		return 5
	}
	px, ok := ParseLength(v)
	if !ok || px < 0 {
		return 0
	}
	return px
}

func nonNegativeNumber(s *Style, property string, fallback float64) float64 {
	v, ok := s.Get(property)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
