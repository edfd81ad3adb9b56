package layout

import (
	"github.com/BigBadE/valor-sub000/pkg/css"
)

// ContainerMetrics is the resolved box model of one box against its
// containing block. It is created fresh for every placement and never stored.
type ContainerMetrics struct {
	Margin  css.BoxEdge
	Padding css.BoxEdge
	Border  css.BoxEdge

	// BorderBoxWidth is the used border-box width after min/max clamping.
	BorderBoxWidth float64
	// ContentWidth is BorderBoxWidth minus padding and border, never negative.
	ContentWidth float64

	WidthAuto       bool
	AutoMarginLeft  bool
	AutoMarginRight bool
}

// ContentX is the offset of the content box from the border-box left edge.
func (m ContainerMetrics) ContentX() float64 { return m.Border.Left + m.Padding.Left }

// ContentY is the offset of the content box from the border-box top edge.
func (m ContainerMetrics) ContentY() float64 { return m.Border.Top + m.Padding.Top }

// PaddingBorderWidth is the horizontal padding plus border.
func (m ContainerMetrics) PaddingBorderWidth() float64 {
	return m.Padding.Horizontal() + m.Border.Horizontal()
}

// PaddingBorderHeight is the vertical padding plus border.
func (m ContainerMetrics) PaddingBorderHeight() float64 {
	return m.Padding.Vertical() + m.Border.Vertical()
}

// OuterWidth is the margin-box width.
func (m ContainerMetrics) OuterWidth() float64 {
	return m.BorderBoxWidth + m.Margin.Horizontal()
}

// ResolveMetrics resolves padding, border and margins against the containing
// block width and computes the used border-box width. An auto width fills the
// containing block minus margins; a definite width honours box-sizing.
func ResolveMetrics(cs css.ComputedStyle, containingWidth float64) ContainerMetrics {
	m := ContainerMetrics{
		Margin:  cs.Margin.Resolve(containingWidth),
		Padding: nonNegativeEdges(cs.Padding.Resolve(containingWidth)),
		Border:  nonNegativeEdges(cs.Border),
	}
	m.AutoMarginLeft = cs.Margin.Left.IsAuto()
	m.AutoMarginRight = cs.Margin.Right.IsAuto()
	pb := m.PaddingBorderWidth()

	var bb float64
	if w, ok := cs.Width.Resolve(containingWidth, true); ok {
		bb = toBorderBox(w, pb, cs.BoxSizing)
	} else {
		m.WidthAuto = true
		bb = containingWidth - m.Margin.Horizontal()
	}
	bb = clampWidth(cs, bb, containingWidth, pb)
	m.setBorderBoxWidth(bb)

	if m.AutoMarginLeft || m.AutoMarginRight {
		m.resolveAutoMargins(containingWidth)
	}
	return m
}

// withBorderBoxWidth returns m resized to a caller-chosen border-box width,
// used for shrink-to-fit boxes and flex items.
func (m ContainerMetrics) withBorderBoxWidth(bb float64) ContainerMetrics {
	m.setBorderBoxWidth(bb)
	return m
}

func (m *ContainerMetrics) setBorderBoxWidth(bb float64) {
	pb := m.PaddingBorderWidth()
	if bb < pb {
		bb = pb
	}
	m.BorderBoxWidth = bb
	m.ContentWidth = nonNegative(bb - pb)
}

// resolveAutoMargins centres or pushes a block whose width leaves free
// space. Negative free space leaves auto margins at zero.
func (m *ContainerMetrics) resolveAutoMargins(containingWidth float64) {
	free := containingWidth - m.BorderBoxWidth - m.Margin.Horizontal()
	if free <= 0 {
		return
	}
	switch {
	case m.AutoMarginLeft && m.AutoMarginRight:
		m.Margin.Left = free / 2
		m.Margin.Right = free / 2
	case m.AutoMarginLeft:
		m.Margin.Left = free
	default:
		m.Margin.Right = free
	}
}

// ResolveHeight returns the used border-box height: the specified height
// when it resolves against cbHeight, otherwise contentHeight plus padding and
// border. Min/max heights apply in both cases.
func ResolveHeight(cs css.ComputedStyle, m ContainerMetrics, contentHeight float64, cbHeight AvailableSize) float64 {
	pb := m.PaddingBorderHeight()
	bb := nonNegative(contentHeight) + pb
	if h, ok := SpecifiedHeight(cs, m, cbHeight); ok {
		bb = h
	}
	return clampHeight(cs, bb, cbHeight, pb)
}

// SpecifiedHeight is the border-box height given by the height property, if
// it resolves. Percentages need a definite containing block height.
func SpecifiedHeight(cs css.ComputedStyle, m ContainerMetrics, cbHeight AvailableSize) (float64, bool) {
	h, ok := cs.Height.Resolve(cbHeight.Value, cbHeight.IsDefinite())
	if !ok {
		return 0, false
	}
	pb := m.PaddingBorderHeight()
	return clampHeight(cs, toBorderBox(h, pb, cs.BoxSizing), cbHeight, pb), true
}

func toBorderBox(v, paddingBorder float64, sizing css.BoxSizing) float64 {
	if sizing == css.BorderBox {
		if v < paddingBorder {
			return paddingBorder
		}
		return v
	}
	return nonNegative(v) + paddingBorder
}

// toContentBox converts a specified size to a content-box size.
func toContentBox(v, paddingBorder float64, sizing css.BoxSizing) float64 {
	if sizing == css.BorderBox {
		return nonNegative(v - paddingBorder)
	}
	return nonNegative(v)
}

// clampWidth applies max-width then min-width, both in border-box space.
func clampWidth(cs css.ComputedStyle, bb, containingWidth, pb float64) float64 {
	if v, ok := cs.MaxWidth.Resolve(containingWidth, true); ok {
		if mx := toBorderBox(v, pb, cs.BoxSizing); bb > mx {
			bb = mx
		}
	}
	if v, ok := cs.MinWidth.Resolve(containingWidth, true); ok {
		if mn := toBorderBox(v, pb, cs.BoxSizing); bb < mn {
			bb = mn
		}
	}
	return bb
}

func clampHeight(cs css.ComputedStyle, bb float64, cbHeight AvailableSize, pb float64) float64 {
	if v, ok := cs.MaxHeight.Resolve(cbHeight.Value, cbHeight.IsDefinite()); ok {
		if mx := toBorderBox(v, pb, cs.BoxSizing); bb > mx {
			bb = mx
		}
	}
	if v, ok := cs.MinHeight.Resolve(cbHeight.Value, cbHeight.IsDefinite()); ok {
		if mn := toBorderBox(v, pb, cs.BoxSizing); bb < mn {
			bb = mn
		}
	}
	if bb < pb {
		bb = pb
	}
	return bb
}

// minHeightPositive reports a min-height that would keep an otherwise empty
// box open.
func minHeightPositive(cs css.ComputedStyle, cbHeight AvailableSize) bool {
	v, ok := cs.MinHeight.Resolve(cbHeight.Value, cbHeight.IsDefinite())
	return ok && v > 0
}

func nonNegativeEdges(e css.BoxEdge) css.BoxEdge {
	return css.BoxEdge{
		Top:    nonNegative(e.Top),
		Right:  nonNegative(e.Right),
		Bottom: nonNegative(e.Bottom),
		Left:   nonNegative(e.Left),
	}
}
