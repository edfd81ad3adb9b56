package layout

import (
	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/css"
)

// CollapseMargins returns the collapsed value of two adjoining vertical
// margins: the larger of two positives, the more negative of two negatives,
// and the sum of the extremes for mixed signs.
func CollapseMargins(a, b float64) float64 {
	return MarginStrut{}.Add(a).Add(b).Sum()
}

// MarginStrut accumulates any number of adjoining margins. The collapsed
// value only depends on the largest positive and the most negative member,
// so the order margins are added in never matters.
type MarginStrut struct {
	Positive float64
	Negative float64
}

// Add returns s with margin m adjoined.
func (s MarginStrut) Add(m float64) MarginStrut {
	if m > s.Positive {
		s.Positive = m
	}
	if m < s.Negative {
		s.Negative = m
	}
	return s
}

// Merge adjoins every margin of o.
func (s MarginStrut) Merge(o MarginStrut) MarginStrut {
	return s.Add(o.Positive).Add(o.Negative)
}

// Sum is the collapsed margin.
func (s MarginStrut) Sum() float64 {
	return s.Positive + s.Negative
}

// marginContext is threaded through sibling iteration in one container.
type marginContext struct {
	// strut holds margins that are adjoining but not yet resolved into a
	// position.
	strut MarginStrut
	// atTop is true while nothing separates the current position from the
	// container's collapsible top edge. Margins seen in that state have
	// already escaped through the container's own top margin.
	atTop bool
}

// EstablishesBFC reports whether a box starts a new block formatting
// context. Flex items also do, which the caller decides from the parent.
func EstablishesBFC(cs css.ComputedStyle) bool {
	if cs.Overflow != css.OverflowVisible || cs.Float != css.FloatNone || cs.IsOutOfFlow() {
		return true
	}
	switch cs.Display {
	case css.DisplayFlowRoot, css.DisplayFlex, css.DisplayInlineFlex, css.DisplayInlineBlock:
		return true
	}
	return false
}

// isInlineLevel is true for boxes that sit on a line in their parent.
func isInlineLevel(cs css.ComputedStyle) bool {
	switch cs.Display {
	case css.DisplayInline, css.DisplayInlineBlock, css.DisplayInlineFlex:
		return true
	}
	return false
}

// verticalMargins returns the top and bottom margins that take part in
// block layout. Vertical margins of non-replaced inline boxes have no effect.
func verticalMargins(cs css.ComputedStyle, containingWidth float64) (top, bottom float64) {
	if cs.Display == css.DisplayInline {
		return 0, 0
	}
	return cs.Margin.Top.ResolveOr(containingWidth, true, 0), cs.Margin.Bottom.ResolveOr(containingWidth, true, 0)
}

// IsStructurallyEmpty reports a box whose top and bottom margins collapse
// through it: no border or padding on either vertical side, no height, no
// line content, no BFC, and only structurally empty in-flow children.
//
// This is an approximation of the CSS emptiness test and is kept as its own
// predicate so it can be refined without touching the collapse code.
func IsStructurallyEmpty(t *boxtree.Tree, key boxtree.NodeKey) bool {
	n := t.Node(key)
	if n == nil {
		return false
	}
	if n.Kind == boxtree.KindText {
		return n.IsWhitespace()
	}
	cs := n.Style
	if cs.Display == css.DisplayNone || EstablishesBFC(cs) || cs.Clear != css.ClearNone {
		return false
	}
	if cs.Display == css.DisplayInlineBlock || cs.Display == css.DisplayInlineFlex {
		return false
	}
	if cs.Border.Top > 0 || cs.Border.Bottom > 0 {
		return false
	}
	if nonZero(cs.Padding.Top) || nonZero(cs.Padding.Bottom) {
		return false
	}
	if nonZero(cs.Height) || nonZero(cs.MinHeight) {
		return false
	}
	for _, c := range n.Children {
		if !inFlow(t, c) {
			continue
		}
		if !IsStructurallyEmpty(t, c) {
			return false
		}
	}
	return true
}

// inFlow filters out children that never take part in block placement or
// margin collapsing of their parent.
func inFlow(t *boxtree.Tree, key boxtree.NodeKey) bool {
	n := t.Node(key)
	if n == nil {
		return false
	}
	if n.Kind == boxtree.KindText {
		return true
	}
	cs := n.Style
	return cs.Display != css.DisplayNone && !cs.IsOutOfFlow() && cs.Float == css.FloatNone
}

func nonZero(l css.Length) bool {
	return (l.Unit == css.UnitPx || l.Unit == css.UnitPercent) && l.Value != 0
}

// collapseThroughStrut gathers every margin of a structurally empty box and
// its descendants into one strut.
func collapseThroughStrut(t *boxtree.Tree, key boxtree.NodeKey, containingWidth float64) MarginStrut {
	n := t.Node(key)
	if n == nil || n.Kind != boxtree.KindElement {
		return MarginStrut{}
	}
	top, bottom := verticalMargins(n.Style, containingWidth)
	s := MarginStrut{}.Add(top).Add(bottom)
	inner := ResolveMetrics(n.Style, containingWidth).ContentWidth
	for _, c := range n.Children {
		if inFlow(t, c) {
			s = s.Merge(collapseThroughStrut(t, c, inner))
		}
	}
	return s
}

// topStrut is the set of margins adjoining the top border edge of a block:
// its own top margin, plus, when nothing separates it from its content, the
// margins of leading empty children and the top strut of the first child
// with content. Margins of BFC roots and cleared boxes stay with their own
// box.
func topStrut(t *boxtree.Tree, key boxtree.NodeKey, containingWidth float64) MarginStrut {
	n := t.Node(key)
	if n == nil || n.Kind != boxtree.KindElement {
		return MarginStrut{}
	}
	cs := n.Style
	top, _ := verticalMargins(cs, containingWidth)
	s := MarginStrut{}.Add(top)
	m := ResolveMetrics(cs, containingWidth)
	if !topCollapsible(cs, m, false) {
		return s
	}
	for _, c := range n.Children {
		if !inFlow(t, c) {
			continue
		}
		child := t.Node(c)
		if child.Kind == boxtree.KindText {
			if child.IsWhitespace() {
				continue
			}
			break
		}
		if IsStructurallyEmpty(t, c) {
			s = s.Merge(collapseThroughStrut(t, c, m.ContentWidth))
			continue
		}
		// Clearance may move a cleared child, so its margins stay with it.
		if child.Style.Clear == css.ClearNone && !EstablishesBFC(child.Style) && !isInlineLevel(child.Style) {
			s = s.Merge(topStrut(t, c, m.ContentWidth))
		}
		break
	}
	return s
}

// topCollapsible reports whether a box's top margin adjoins its first child's.
func topCollapsible(cs css.ComputedStyle, m ContainerMetrics, forcedBFC bool) bool {
	if forcedBFC || EstablishesBFC(cs) || isInlineLevel(cs) {
		return false
	}
	return m.Padding.Top == 0 && m.Border.Top == 0
}

// bottomCollapsible reports whether a box's bottom margin adjoins its last
// child's. A box with a specified or minimum height keeps them apart.
func bottomCollapsible(cs css.ComputedStyle, m ContainerMetrics, cbHeight AvailableSize, forcedBFC bool) bool {
	if forcedBFC || EstablishesBFC(cs) || isInlineLevel(cs) {
		return false
	}
	if m.Padding.Bottom != 0 || m.Border.Bottom != 0 {
		return false
	}
	if _, ok := SpecifiedHeight(cs, m, cbHeight); ok {
		return false
	}
	return !minHeightPositive(cs, cbHeight)
}
