package css

import (
	"sort"
	"strings"
)

// DefaultDisplay returns the user-agent display value for an element.
func DefaultDisplay(tag string) DisplayType {
	switch strings.ToLower(tag) {
	case "head", "script", "style", "title", "meta", "link", "base", "template":
		return DisplayNone
	case "span", "a", "b", "i", "em", "strong", "code", "small", "label", "img", "br", "sub", "sup", "u", "s":
		return DisplayInline
	case "":
		return DisplayInline
	}
	return DisplayBlock
}

// Element describes the parts of an element the simple selector matcher
// looks at.
type Element struct {
	Tag     string
	ID      string
	Classes []string
	Inline  string // raw style attribute
}

// ClassList splits a class attribute into names.
func ClassList(attr string) []string {
	return strings.Fields(attr)
}

// Cascade collects the specified style of an element: matching sheet rules
// in (specificity, source order) order, then the inline style on top.
func Cascade(el Element, sheets []*Stylesheet) *Style {
	type match struct {
		rule  Rule
		sheet int
	}
	matches := make([]match, 0)
	for si, sheet := range sheets {
		if sheet == nil {
			continue
		}
		for _, r := range sheet.Rules {
			if r.Selector.Matches(el.Tag, el.ID, el.Classes) {
				matches = append(matches, match{rule: r, sheet: si})
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.rule.Selector.Specificity != b.rule.Selector.Specificity {
			return a.rule.Selector.Specificity < b.rule.Selector.Specificity
		}
		if a.sheet != b.sheet {
			return a.sheet < b.sheet
		}
		return a.rule.Index < b.rule.Index
	})

	style := NewStyle()
	for _, m := range matches {
		for _, d := range m.rule.Declarations {
			expandShorthand(style, d.property, d.value)
		}
	}
	if el.Inline != "" {
		style.Merge(ParseInlineStyle(el.Inline))
	}
	return style
}

// ComputeElement runs the cascade and computes the result in one step.
func ComputeElement(el Element, sheets []*Stylesheet) ComputedStyle {
	return Compute(el.Tag, Cascade(el, sheets))
}
