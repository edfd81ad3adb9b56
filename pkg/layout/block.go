package layout

import (
	"math"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/css"
	"github.com/BigBadE/valor-sub000/pkg/text"
)

// boxInput is where a caller has put a box and what it may size against.
type boxInput struct {
	// x, y is the border-box origin.
	x, y float64
	// m carries the used width; the caller has already decided it.
	m ContainerMetrics

	cbWidth  float64
	cbHeight AvailableSize

	// forcedHeight is a border-box height imposed by a flex container.
	forcedHeight    float64
	hasForcedHeight bool
	// forceBFC makes the box a formatting context root regardless of its
	// style, as flex items are.
	forceBFC bool
	// contentHeight sizes the box from its content alone, ignoring its
	// height properties.
	contentHeight bool

	// tracker is the float tracker of the enclosing BFC.
	tracker *FloatTracker
}

type boxOutput struct {
	height float64
	// endStrut holds the margins adjoining the box's bottom margin edge:
	// its own bottom margin plus, when the bottom edge collapses, the
	// trailing margins of its last children.
	endStrut MarginStrut
}

// blockContext describes the content box children are placed into.
type blockContext struct {
	x, y     float64
	width    float64
	cbHeight AvailableSize
	tracker  *FloatTracker

	topCollapsible    bool
	bottomCollapsible bool
	bfcRoot           bool
}

// metrics resolves a block-flow child against its container.
func (p *pass) metrics(cs css.ComputedStyle, containingWidth float64) ContainerMetrics {
	m := ResolveMetrics(cs, containingWidth)
	if cs.Display == css.DisplayInline {
		m.Margin.Top, m.Margin.Bottom = 0, 0
	}
	return m
}

// layoutBox lays out one element at a position its parent chose, records its
// rect and returns its height.
func (p *pass) layoutBox(key boxtree.NodeKey, in boxInput) boxOutput {
	cs := p.tree.Style(key)
	m := in.m
	bfc := in.forceBFC || EstablishesBFC(cs)

	height, definite := in.forcedHeight, in.hasForcedHeight
	if !definite && !in.contentHeight {
		height, definite = SpecifiedHeight(cs, m, in.cbHeight)
	}
	childCB := Indefinite
	if definite {
		childCB = Definite(height - m.PaddingBorderHeight())
	}

	contentX := in.x + m.ContentX()
	contentY := in.y + m.ContentY()
	collapseBottom := !in.hasForcedHeight && bottomCollapsible(cs, m, in.cbHeight, in.forceBFC)

	var contentHeight float64
	var trailing MarginStrut
	if cs.IsFlexContainer() {
		contentHeight = p.layoutFlex(key, cs, flexInput{
			x:        contentX,
			y:        contentY,
			width:    m.ContentWidth,
			height:   childCB,
			m:        m,
			cbHeight: in.cbHeight,
		})
	} else {
		tracker := in.tracker
		if bfc || tracker == nil {
			tracker = NewFloatTracker()
		}
		contentHeight, trailing = p.layoutChildren(key, blockContext{
			x:                 contentX,
			y:                 contentY,
			width:             m.ContentWidth,
			cbHeight:          childCB,
			tracker:           tracker,
			topCollapsible:    topCollapsible(cs, m, in.forceBFC),
			bottomCollapsible: collapseBottom,
			bfcRoot:           bfc,
		})
	}
	switch {
	case in.contentHeight:
		height = contentHeight + m.PaddingBorderHeight()
	case !definite:
		height = ResolveHeight(cs, m, contentHeight, in.cbHeight)
	}
	p.setRect(key, Rect{X: in.x, Y: in.y, Width: m.BorderBoxWidth, Height: height})

	out := boxOutput{height: height, endStrut: MarginStrut{}.Add(m.Margin.Bottom)}
	if collapseBottom {
		out.endStrut = trailing.Add(m.Margin.Bottom)
	}
	p.applyRelative(key, cs, in.cbWidth, in.cbHeight)
	return out
}

// layoutChildren places the children of key in block flow and returns the
// content height plus the margins still pending at the bottom edge when
// that edge collapses.
func (p *pass) layoutChildren(key boxtree.NodeKey, ctx blockContext) (float64, MarginStrut) {
	mc := marginContext{atTop: ctx.topCollapsible}
	cursor := ctx.y
	fontSize := p.tree.Style(key).FontSize

	for _, c := range p.tree.Children(key) {
		n := p.tree.Node(c)
		if n == nil {
			continue
		}
		if n.Kind == boxtree.KindText {
			if n.IsWhitespace() {
				p.setRect(c, Rect{X: ctx.x, Y: cursor})
				continue
			}
			cursor = p.placeTextRun(n, ctx, cursor+pending(mc), fontSize)
			mc = marginContext{}
			continue
		}

		cs := n.Style
		switch {
		case cs.Display == css.DisplayNone:
			p.hideSubtree(c, ctx.x, cursor)
		case cs.IsOutOfFlow():
			p.layoutOutOfFlow(c, ctx, cursor+pending(mc))
		case cs.Float != css.FloatNone:
			p.layoutFloat(c, ctx, cursor+pending(mc))
		case EstablishesBFC(cs):
			cursor = p.placeRootChild(c, ctx, cursor, mc)
			mc = marginContext{}
		case IsStructurallyEmpty(p.tree, c):
			// Checked before inline-level so an empty inline box is
			// classified the same way topStrut sees it.
			mc = p.placeEmptyChild(c, ctx, cursor, mc)
		case isInlineLevel(cs):
			cursor = p.placeRootChild(c, ctx, cursor, mc)
			mc = marginContext{}
		default:
			cursor, mc = p.placeBlockChild(c, ctx, cursor, mc)
		}
	}

	var height float64
	var trailing MarginStrut
	if ctx.bottomCollapsible {
		height = cursor - ctx.y
		trailing = mc.strut
	} else {
		height = cursor + mc.strut.Sum() - ctx.y
	}
	if ctx.bfcRoot {
		if bottom, ok := ctx.tracker.MaxBottom(); ok && bottom-ctx.y > height {
			height = bottom - ctx.y
		}
	}
	return nonNegative(height), trailing
}

// pending is the collapsed margin between the cursor and the next thing
// placed, unless those margins already escaped through the container's top.
func pending(mc marginContext) float64 {
	if mc.atTop {
		return 0
	}
	return mc.strut.Sum()
}

// placeTextRun lays a text node out as one anonymous line beside any floats.
func (p *pass) placeTextRun(n *boxtree.Node, ctx blockContext, y, fontSize float64) float64 {
	lineHeight := text.LineHeight(fontSize)
	left, right := ctx.tracker.Band(y, lineHeight, ctx.x, ctx.x+ctx.width)
	_, maxContent := text.MinMax(p.measurer, n.Text, fontSize)
	p.setRect(n.Key, Rect{
		X:      left,
		Y:      y,
		Width:  math.Min(maxContent, nonNegative(right-left)),
		Height: lineHeight,
	})
	return y + lineHeight
}

// placeRootChild places a child that keeps its margins to itself: a BFC root
// or an atomic inline-level box. Its margins are plain spacing, it ignores
// clearance and it is narrowed to avoid floats.
func (p *pass) placeRootChild(key boxtree.NodeKey, ctx blockContext, cursor float64, mc marginContext) float64 {
	cs := p.tree.Style(key)
	m := p.metrics(cs, ctx.width)
	y := cursor + pending(mc) + m.Margin.Top

	left, right := ctx.tracker.Band(y, 0, ctx.x, ctx.x+ctx.width)
	available := right - left - m.Margin.Horizontal()
	switch {
	case isInlineLevel(cs) && m.WidthAuto:
		m = m.withBorderBoxWidth(p.shrinkToFit(key, cs, m, available, ctx.width))
	case m.WidthAuto && (left > ctx.x || right < ctx.x+ctx.width):
		m = m.withBorderBoxWidth(clampWidth(cs, available, ctx.width, m.PaddingBorderWidth()))
	}

	out := p.layoutBox(key, boxInput{
		x:        left + m.Margin.Left,
		y:        y,
		m:        m,
		cbWidth:  ctx.width,
		cbHeight: ctx.cbHeight,
		tracker:  ctx.tracker,
	})
	return y + out.height + m.Margin.Bottom
}

// placeEmptyChild places a box whose margins collapse through it. Its
// margins join the pending strut and the cursor does not move.
func (p *pass) placeEmptyChild(key boxtree.NodeKey, ctx blockContext, cursor float64, mc marginContext) marginContext {
	cs := p.tree.Style(key)
	m := p.metrics(cs, ctx.width)
	if isInlineLevel(cs) && m.WidthAuto {
		m = m.withBorderBoxWidth(p.shrinkToFit(key, cs, m, ctx.width-m.Margin.Horizontal(), ctx.width))
	}
	y := cursor
	if !mc.atTop {
		y += mc.strut.Add(m.Margin.Top).Sum()
	}
	p.layoutBox(key, boxInput{
		x:        ctx.x + m.Margin.Left,
		y:        y,
		m:        m,
		cbWidth:  ctx.width,
		cbHeight: ctx.cbHeight,
		tracker:  ctx.tracker,
	})
	if !mc.atTop {
		mc.strut = mc.strut.Merge(collapseThroughStrut(p.tree, key, ctx.width))
	}
	return mc
}

// placeBlockChild places an in-flow block that takes part in margin
// collapsing. Its top margin strut, which includes margins escaping from its
// own first children, collapses with the pending strut.
func (p *pass) placeBlockChild(key boxtree.NodeKey, ctx blockContext, cursor float64, mc marginContext) (float64, marginContext) {
	cs := p.tree.Style(key)
	m := p.metrics(cs, ctx.width)
	y := cursor
	switch {
	case !mc.atTop:
		y += mc.strut.Merge(topStrut(p.tree, key, ctx.width)).Sum()
	case cs.Clear != css.ClearNone:
		// A cleared first child does not pass its margins to the
		// container's top edge; see topStrut.
		y += topStrut(p.tree, key, ctx.width).Sum()
	}
	if cs.Clear != css.ClearNone {
		y = ctx.tracker.ClearY(cs.Clear, y)
	}
	out := p.layoutBox(key, boxInput{
		x:        ctx.x + m.Margin.Left,
		y:        y,
		m:        m,
		cbWidth:  ctx.width,
		cbHeight: ctx.cbHeight,
		tracker:  ctx.tracker,
	})
	return y + out.height, marginContext{strut: out.endStrut}
}

// layoutFloat sizes a float as its own BFC, then lets the tracker choose its
// position and commits its margin box as an exclusion.
func (p *pass) layoutFloat(key boxtree.NodeKey, ctx blockContext, top float64) {
	cs := p.tree.Style(key)
	m := ResolveMetrics(cs, ctx.width)
	if m.WidthAuto {
		m = m.withBorderBoxWidth(p.shrinkToFit(key, cs, m, ctx.width-m.Margin.Horizontal(), ctx.width))
	}
	top = ctx.tracker.ClearY(cs.Clear, top)

	startX := ctx.x + m.Margin.Left
	startY := top + m.Margin.Top
	out := p.layoutBox(key, boxInput{
		x:        startX,
		y:        startY,
		m:        m,
		cbWidth:  ctx.width,
		cbHeight: ctx.cbHeight,
	})

	outerWidth := nonNegative(m.OuterWidth())
	outerHeight := nonNegative(out.height + m.Margin.Vertical())
	fx, fy := ctx.tracker.PlaceFloat(cs.Float, outerWidth, outerHeight, top, ctx.x, ctx.x+ctx.width)
	p.translateSubtree(key, fx+m.Margin.Left-startX, fy+m.Margin.Top-startY)

	ctx.tracker.Add(Exclusion{
		Rect:      Rect{X: fx, Y: fy, Width: outerWidth, Height: outerHeight},
		Side:      cs.Float,
		ClearEdge: fy + m.Margin.Top + out.height + math.Max(0, m.Margin.Bottom),
	})
}

// layoutOutOfFlow places an absolutely or fixed positioned box at its static
// position. Insets are not applied; the box is sized shrink-to-fit unless its
// width is specified.
func (p *pass) layoutOutOfFlow(key boxtree.NodeKey, ctx blockContext, staticY float64) {
	cs := p.tree.Style(key)
	m := ResolveMetrics(cs, ctx.width)
	if m.WidthAuto {
		m = m.withBorderBoxWidth(p.shrinkToFit(key, cs, m, ctx.width-m.Margin.Horizontal(), ctx.width))
	}
	p.layoutBox(key, boxInput{
		x:        ctx.x + m.Margin.Left,
		y:        staticY + m.Margin.Top,
		m:        m,
		cbWidth:  ctx.width,
		cbHeight: ctx.cbHeight,
	})
}

// applyRelative shifts a relatively positioned subtree after placement. top
// wins over bottom and left over right.
func (p *pass) applyRelative(key boxtree.NodeKey, cs css.ComputedStyle, cbWidth float64, cbHeight AvailableSize) {
	if cs.Position != css.PositionRelative {
		return
	}
	var dx, dy float64
	if v, ok := cs.Inset.Left.Resolve(cbWidth, true); ok {
		dx = v
	} else if v, ok := cs.Inset.Right.Resolve(cbWidth, true); ok {
		dx = -v
	}
	if v, ok := cs.Inset.Top.Resolve(cbHeight.Value, cbHeight.IsDefinite()); ok {
		dy = v
	} else if v, ok := cs.Inset.Bottom.Resolve(cbHeight.Value, cbHeight.IsDefinite()); ok {
		dy = -v
	}
	p.translateSubtree(key, dx, dy)
}
