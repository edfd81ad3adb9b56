package layout

import (
	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/css"
	"github.com/BigBadE/valor-sub000/pkg/text"
)

type intrinsicSizes struct {
	min, max float64
}

// intrinsicWidths returns the min-content and max-content border-box widths
// of a node. Percentages have no base during intrinsic sizing and count as
// zero. Results are cached for the pass.
func (p *pass) intrinsicWidths(key boxtree.NodeKey) (minContent, maxContent float64) {
	if s, ok := p.intrinsic[key]; ok {
		return s.min, s.max
	}
	minContent, maxContent = p.computeIntrinsic(key)
	p.intrinsic[key] = intrinsicSizes{min: minContent, max: maxContent}
	return minContent, maxContent
}

func (p *pass) computeIntrinsic(key boxtree.NodeKey) (float64, float64) {
	n := p.tree.Node(key)
	if n == nil {
		return 0, 0
	}
	if n.Kind == boxtree.KindText {
		return text.MinMax(p.measurer, n.Text, p.tree.Style(n.Parent).FontSize)
	}
	cs := n.Style
	if cs.Display == css.DisplayNone {
		return 0, 0
	}
	pad := nonNegativeEdges(cs.Padding.Resolve(0))
	pb := pad.Horizontal() + cs.Border.Horizontal()
	if w, ok := cs.Width.Resolve(0, false); ok {
		bb := clampIntrinsic(cs, toBorderBox(w, pb, cs.BoxSizing), pb)
		return bb, bb
	}

	minContent, maxContent := p.contentIntrinsic(n)
	return clampIntrinsic(cs, minContent, pb), clampIntrinsic(cs, maxContent, pb)
}

// contentIntrinsic sizes a box from its children alone, ignoring its own
// width and min/max width. The result includes padding and border.
func (p *pass) contentIntrinsic(n *boxtree.Node) (float64, float64) {
	cs := n.Style
	pad := nonNegativeEdges(cs.Padding.Resolve(0))
	pb := pad.Horizontal() + cs.Border.Horizontal()
	rowFlex := cs.IsFlexContainer() && resolveAxes(cs.FlexDirection).row
	var minContent, maxContent float64
	count := 0
	for _, c := range n.Children {
		child := p.tree.Node(c)
		if child == nil || child.IsWhitespace() {
			continue
		}
		if child.Kind == boxtree.KindElement && (child.Style.Display == css.DisplayNone || child.Style.IsOutOfFlow()) {
			continue
		}
		cmin, cmax := p.contribution(child)
		count++
		if rowFlex {
			// A single-line row sums its items in both modes.
			minContent += cmin
			maxContent += cmax
			continue
		}
		if cmin > minContent {
			minContent = cmin
		}
		if cmax > maxContent {
			maxContent = cmax
		}
	}
	if rowFlex && count > 1 {
		gap := cs.ColumnGap.ResolveOr(0, false, 0) * float64(count-1)
		minContent += gap
		maxContent += gap
	}
	return minContent + pb, maxContent + pb
}

// contribution is a child's intrinsic outer width: its border-box plus
// definite horizontal margins.
func (p *pass) contribution(n *boxtree.Node) (float64, float64) {
	minContent, maxContent := p.intrinsicWidths(n.Key)
	if n.Kind != boxtree.KindElement {
		return minContent, maxContent
	}
	margins := n.Style.Margin.Left.ResolveOr(0, false, 0) + n.Style.Margin.Right.ResolveOr(0, false, 0)
	return nonNegative(minContent + margins), nonNegative(maxContent + margins)
}

func clampIntrinsic(cs css.ComputedStyle, bb, pb float64) float64 {
	if v, ok := cs.MaxWidth.Resolve(0, false); ok {
		if mx := toBorderBox(v, pb, cs.BoxSizing); bb > mx {
			bb = mx
		}
	}
	if v, ok := cs.MinWidth.Resolve(0, false); ok {
		if mn := toBorderBox(v, pb, cs.BoxSizing); bb < mn {
			bb = mn
		}
	}
	if bb < pb {
		bb = pb
	}
	return bb
}

// shrinkToFit is the CSS fit-content width: min(max(min-content, available),
// max-content), clamped by min/max width.
func (p *pass) shrinkToFit(key boxtree.NodeKey, cs css.ComputedStyle, m ContainerMetrics, available, containingWidth float64) float64 {
	minContent, maxContent := p.intrinsicWidths(key)
	bb := available
	if bb < minContent {
		bb = minContent
	}
	if bb > maxContent {
		bb = maxContent
	}
	return clampWidth(cs, bb, containingWidth, m.PaddingBorderWidth())
}
