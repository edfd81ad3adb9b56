package css

import (
	"sort"
	"strings"
)

// Style is a bag of specified declarations (property -> raw value) for one
// element. Shorthands are expanded on the way in, so lookups only ever see
// longhand names.
type Style struct {
	Properties map[string]string
}

func NewStyle() *Style {
	return &Style{Properties: make(map[string]string)}
}

func (s *Style) Get(property string) (string, bool) {
	if s == nil {
		return "", false
	}
	val, ok := s.Properties[property]
	return val, ok
}

func (s *Style) Set(property, value string) {
	s.Properties[property] = value
}

// Merge copies every declaration of other into s, overwriting existing ones.
func (s *Style) Merge(other *Style) {
	if other == nil {
		return
	}
	for k, v := range other.Properties {
		s.Properties[k] = v
	}
}

// String renders the declarations in a stable order, mostly for logs.
func (s *Style) String() string {
	keys := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(s.Properties[k])
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}

// ParseInlineStyle parses the contents of a style attribute.
func ParseInlineStyle(styleAttr string) *Style {
	style := NewStyle()
	for _, d := range parseDeclarationList(styleAttr) {
		expandShorthand(style, d.property, d.value)
	}
	return style
}

type declaration struct {
	property string
	value    string
}

// parseDeclarationList splits "a: b; c: d" pairs in source order, so a
// longhand after its shorthand still wins. A trailing !important is dropped
// since there is no cascade origin to honour.
func parseDeclarationList(src string) []declaration {
	out := make([]declaration, 0)
	for _, decl := range strings.Split(src, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		property := strings.TrimSpace(strings.ToLower(parts[0]))
		value := strings.TrimSpace(parts[1])
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		if property == "" || value == "" {
			continue
		}
		out = append(out, declaration{property: property, value: value})
	}
	return out
}

// expandShorthand expands shorthand CSS properties into individual properties
func expandShorthand(style *Style, property, value string) {
	switch property {
	case "margin", "padding":
		expandBoxProperty(style, property, "", value)
	case "border-width":
		expandBoxProperty(style, "border", "-width", value)
	case "inset":
		expandInset(style, value)
	case "border", "border-top", "border-right", "border-bottom", "border-left":
		expandBorderProperty(style, property, value)
	case "flex":
		expandFlex(style, value)
	case "flex-flow":
		for _, part := range strings.Fields(value) {
			switch part {
			case "row", "row-reverse", "column", "column-reverse":
				style.Set("flex-direction", part)
			default:
				style.Set("flex-wrap", part)
			}
		}
	case "gap":
		parts := strings.Fields(value)
		if len(parts) == 0 {
			return
		}
		style.Set("row-gap", parts[0])
		if len(parts) > 1 {
			style.Set("column-gap", parts[1])
		} else {
			style.Set("column-gap", parts[0])
		}
	case "overflow":
		parts := strings.Fields(value)
		if len(parts) == 0 {
			return
		}
		style.Set("overflow-x", parts[0])
		if len(parts) > 1 {
			style.Set("overflow-y", parts[1])
		} else {
			style.Set("overflow-y", parts[0])
		}
	case "background":
		if strings.Contains(value, "linear-gradient(") {
			style.Set("background-image", value)
			return
		}
		for _, part := range strings.Fields(value) {
			if _, ok := ParseColor(part); ok {
				style.Set("background-color", part)
			}
		}
	default:
		style.Set(property, value)
	}
}

// expandBoxProperty expands margin/padding/border-width shorthand.
// Supports: "10px" (all), "10px 20px" (vertical horizontal),
// "10px 20px 30px" (top h bottom), "10px 20px 30px 40px" (t r b l)
func expandBoxProperty(style *Style, prefix, suffix, value string) {
	parts := strings.Fields(value)
	var top, right, bottom, left string
	switch len(parts) {
	case 1:
		top, right, bottom, left = parts[0], parts[0], parts[0], parts[0]
	case 2:
		top, right, bottom, left = parts[0], parts[1], parts[0], parts[1]
	case 3:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[1]
	case 4:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[3]
	default:
		return
	}
	style.Set(prefix+"-top"+suffix, top)
	style.Set(prefix+"-right"+suffix, right)
	style.Set(prefix+"-bottom"+suffix, bottom)
	style.Set(prefix+"-left"+suffix, left)
}

func expandInset(style *Style, value string) {
	tmp := NewStyle()
	expandBoxProperty(tmp, "x", "", value)
	style.Set("top", tmp.Properties["x-top"])
	style.Set("right", tmp.Properties["x-right"])
	style.Set("bottom", tmp.Properties["x-bottom"])
	style.Set("left", tmp.Properties["x-left"])
}

// expandBorderProperty expands border shorthand
// Format: "1px solid black" or "2px dotted #FF0000"
func expandBorderProperty(style *Style, property, value string) {
	sides := []string{"top", "right", "bottom", "left"}
	if property != "border" {
		sides = []string{strings.TrimPrefix(property, "border-")}
	}
	width := ""
	hasStyle := false
	for _, part := range strings.Fields(value) {
		switch {
		case part == "none" || part == "hidden":
			width = "0"
			hasStyle = true
		case part == "solid" || part == "dotted" || part == "dashed" || part == "double":
			hasStyle = true
		case isBorderWidthKeyword(part):
			width = part
		default:
			if _, ok := ParseLengthValue(part); ok {
				width = part
			} else if _, ok := ParseColor(part); ok {
				style.Set("border-color", part)
			}
		}
	}
	if width == "" && hasStyle {
		width = "medium"
	}
	if width == "" {
		return
	}
	for _, side := range sides {
		style.Set("border-"+side+"-width", width)
	}
}

func isBorderWidthKeyword(v string) bool {
	return v == "thin" || v == "medium" || v == "thick"
}

// expandFlex handles the flex shorthand keywords and the one/two/three
// value forms. A lone number means "<grow> 1 0".
func expandFlex(style *Style, value string) {
	parts := strings.Fields(value)
	switch {
	case len(parts) == 1 && parts[0] == "none":
		style.Set("flex-grow", "0")
		style.Set("flex-shrink", "0")
		style.Set("flex-basis", "auto")
		return
	case len(parts) == 1 && parts[0] == "auto":
		style.Set("flex-grow", "1")
		style.Set("flex-shrink", "1")
		style.Set("flex-basis", "auto")
		return
	case len(parts) == 1 && parts[0] == "initial":
		style.Set("flex-grow", "0")
		style.Set("flex-shrink", "1")
		style.Set("flex-basis", "auto")
		return
	}

	grow, shrink, basis := "", "", ""
	for _, part := range parts {
		if isNumber(part) {
			if grow == "" {
				grow = part
			} else if shrink == "" {
				shrink = part
			} else {
				basis = part
			}
			continue
		}
		basis = part
	}
	if grow == "" {
		grow = "1"
	}
	if shrink == "" {
		shrink = "1"
	}
	if basis == "" {
		basis = "0px"
	}
	style.Set("flex-grow", grow)
	style.Set("flex-shrink", shrink)
	style.Set("flex-basis", basis)
}
