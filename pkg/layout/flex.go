package layout

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/css"
	"github.com/BigBadE/valor-sub000/pkg/text"
)

// flexAxes maps flex-direction onto the physical axes of horizontal-tb.
type flexAxes struct {
	// row is true when the main axis is horizontal.
	row bool
	// reverse swaps main-start and main-end.
	reverse bool
}

func resolveAxes(dir css.FlexDirection) flexAxes {
	switch dir {
	case css.FlexRowReverse:
		return flexAxes{row: true, reverse: true}
	case css.FlexColumn:
		return flexAxes{}
	case css.FlexColumnReverse:
		return flexAxes{reverse: true}
	}
	return flexAxes{row: true}
}

// flexItem is one participant of a flex line. Main sizes are content-box
// until usedMain adds padding and border back.
type flexItem struct {
	key       boxtree.NodeKey
	order     int
	anonymous bool
	style     css.ComputedStyle
	m         ContainerMetrics
	fontSize  float64

	grow, shrink float64
	base         float64
	hypothetical float64
	minMain      float64
	maxMain      float64
	hasMaxMain   bool
	pbMain       float64

	marginStart, marginEnd float64
	autoStart, autoEnd     bool

	frozen    bool
	target    float64
	violation float64

	crossSize                        float64
	pbCross                          float64
	crossMarginStart, crossMarginEnd float64
	autoCrossStart, autoCrossEnd     bool
	align                            css.AlignItems

	mainPos, crossPos float64
}

// outerExtra is what the item adds on the main axis besides its content box.
func (it *flexItem) outerExtra() float64 {
	return it.pbMain + it.marginStart + it.marginEnd
}

func (it *flexItem) usedMain() float64  { return it.target + it.pbMain }
func (it *flexItem) outerMain() float64 { return it.usedMain() + it.marginStart + it.marginEnd }

func (it *flexItem) outerCross() float64 {
	return it.crossSize + it.crossMarginStart + it.crossMarginEnd
}

// clampMain applies max then min main size and floors at zero.
func (it *flexItem) clampMain(v float64) float64 {
	if it.hasMaxMain && v > it.maxMain {
		v = it.maxMain
	}
	if v < it.minMain {
		v = it.minMain
	}
	return nonNegative(v)
}

// flexLine is a single line; flex-wrap is always treated as nowrap.
type flexLine struct {
	items     []*flexItem
	crossSize float64
}

// flexInput is the content box of a flex container.
type flexInput struct {
	x, y   float64
	width  float64
	height AvailableSize
	// m and cbHeight describe the container itself, for clamping an
	// indefinite column to its min/max height.
	m        ContainerMetrics
	cbHeight AvailableSize
}

// layoutFlex lays out the children of a flex container and returns its
// content height.
func (p *pass) layoutFlex(key boxtree.NodeKey, cs css.ComputedStyle, in flexInput) float64 {
	axes := resolveAxes(cs.FlexDirection)
	if cs.FlexWrap != css.FlexNoWrap {
		p.logger.Warn("flex-wrap is not supported, laying out a single line",
			zap.Uint32("node", uint32(key)), zap.String("flex_wrap", string(cs.FlexWrap)))
	}

	items, outOfFlow := p.collectFlexItems(key, cs, in)
	sortFlexItems(items)
	p.recordPaintOrder(key)

	var gap float64
	innerCross := in.height
	if axes.row {
		gap = cs.ColumnGap.ResolveOr(in.width, true, 0)
	} else {
		gap = cs.RowGap.ResolveOr(in.height.Value, in.height.IsDefinite(), 0)
		innerCross = Definite(in.width)
	}
	totalGap := 0.0
	if len(items) > 1 {
		totalGap = gap * float64(len(items)-1)
	}

	for _, it := range items {
		p.resolveFlexBase(it, axes, in)
	}

	var mainSize float64
	switch {
	case axes.row:
		mainSize = in.width
	case in.height.IsDefinite():
		mainSize = in.height.Value
	default:
		sum := totalGap
		for _, it := range items {
			sum += it.hypothetical + it.outerExtra()
		}
		mainSize = ResolveHeight(cs, in.m, sum, in.cbHeight) - in.m.PaddingBorderHeight()
	}

	line := &flexLine{items: items}
	rounds := resolveFlexibleLengths(items, mainSize-totalGap)
	if ce := p.logger.Check(zap.DebugLevel, "flexible lengths resolved"); ce != nil {
		ce.Write(zap.Uint32("node", uint32(key)), zap.Int("items", len(items)), zap.Int("rounds", rounds))
	}

	p.resolveCrossSizes(line, axes, in, innerCross)
	distributeMain(line, cs.JustifyContent, mainSize, gap)
	alignCross(line)

	for _, it := range items {
		p.placeFlexItem(it, axes, in, mainSize)
	}
	if len(outOfFlow) > 0 {
		ctx := blockContext{x: in.x, y: in.y, width: in.width, cbHeight: in.height, tracker: NewFloatTracker()}
		for _, c := range outOfFlow {
			p.layoutOutOfFlow(c, ctx, in.y)
		}
	}

	if axes.row {
		return line.crossSize
	}
	return mainSize
}

// collectFlexItems builds items for in-flow children in document order.
// Hidden children get zero rects here; out-of-flow children are returned
// for static positioning.
func (p *pass) collectFlexItems(key boxtree.NodeKey, cs css.ComputedStyle, in flexInput) ([]*flexItem, []boxtree.NodeKey) {
	var items []*flexItem
	var outOfFlow []boxtree.NodeKey
	for _, c := range p.tree.Children(key) {
		n := p.tree.Node(c)
		if n == nil {
			continue
		}
		if n.Kind == boxtree.KindText {
			if n.IsWhitespace() {
				p.setRect(c, Rect{X: in.x, Y: in.y})
				continue
			}
			items = append(items, &flexItem{
				key:       c,
				anonymous: true,
				style:     css.Block(),
				fontSize:  cs.FontSize,
				shrink:    1,
				align:     itemAlign(cs, css.Block()),
			})
			continue
		}
		switch {
		case n.Style.Display == css.DisplayNone:
			p.hideSubtree(c, in.x, in.y)
		case n.Style.IsOutOfFlow():
			outOfFlow = append(outOfFlow, c)
		default:
			items = append(items, &flexItem{
				key:   c,
				order: n.Style.Order,
				style: n.Style,
				m:     ResolveMetrics(n.Style, in.width),
				align: itemAlign(cs, n.Style),
			})
		}
	}
	return items, outOfFlow
}

// sortFlexItems puts items in order-modified document order. The sort is
// stable, so equal orders keep document order.
func sortFlexItems(items []*flexItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].order < items[j].order })
}

// recordPaintOrder stores the container's children in order-modified
// document order. Out-of-flow children and text paint as order 0.
func (p *pass) recordPaintOrder(key boxtree.NodeKey) {
	children := append([]boxtree.NodeKey(nil), p.tree.Children(key)...)
	orderOf := func(c boxtree.NodeKey) int {
		n := p.tree.Node(c)
		if n == nil || n.Kind != boxtree.KindElement || n.Style.IsOutOfFlow() {
			return 0
		}
		return n.Style.Order
	}
	sort.SliceStable(children, func(i, j int) bool { return orderOf(children[i]) < orderOf(children[j]) })
	p.paintOrder[key] = children
}

// resolveFlexBase computes the flex base size, min/max main sizes and the
// hypothetical main size of one item.
func (p *pass) resolveFlexBase(it *flexItem, axes flexAxes, in flexInput) {
	if it.anonymous {
		p.resolveAnonymousBase(it, axes, in)
		return
	}
	cs := it.style
	it.grow, it.shrink = cs.FlexGrow, cs.FlexShrink

	// Auto margins start at zero; distributeMain and alignCross share free
	// space into them later.
	m := &it.m
	if cs.Margin.Left.IsAuto() {
		m.Margin.Left = 0
	}
	if cs.Margin.Right.IsAuto() {
		m.Margin.Right = 0
	}

	var mainProp, minProp, maxProp css.Length
	var mainBase AvailableSize
	if axes.row {
		it.pbMain, it.pbCross = m.PaddingBorderWidth(), m.PaddingBorderHeight()
		it.marginStart, it.marginEnd = m.Margin.Left, m.Margin.Right
		it.autoStart, it.autoEnd = cs.Margin.Left.IsAuto(), cs.Margin.Right.IsAuto()
		it.crossMarginStart, it.crossMarginEnd = m.Margin.Top, m.Margin.Bottom
		it.autoCrossStart, it.autoCrossEnd = cs.Margin.Top.IsAuto(), cs.Margin.Bottom.IsAuto()
		mainProp, minProp, maxProp = cs.Width, cs.MinWidth, cs.MaxWidth
		mainBase = Definite(in.width)
	} else {
		it.pbMain, it.pbCross = m.PaddingBorderHeight(), m.PaddingBorderWidth()
		it.marginStart, it.marginEnd = m.Margin.Top, m.Margin.Bottom
		it.autoStart, it.autoEnd = cs.Margin.Top.IsAuto(), cs.Margin.Bottom.IsAuto()
		it.crossMarginStart, it.crossMarginEnd = m.Margin.Left, m.Margin.Right
		it.autoCrossStart, it.autoCrossEnd = cs.Margin.Left.IsAuto(), cs.Margin.Right.IsAuto()
		mainProp, minProp, maxProp = cs.Height, cs.MinHeight, cs.MaxHeight
		mainBase = in.height
		it.crossSize = p.columnItemWidth(it, in)
		*m = m.withBorderBoxWidth(it.crossSize)
	}
	if axes.reverse {
		it.marginStart, it.marginEnd = it.marginEnd, it.marginStart
		it.autoStart, it.autoEnd = it.autoEnd, it.autoStart
	}

	// Column items lay out at most once to measure their content height.
	contentHeight := -1.0
	measuredContent := func() float64 {
		if contentHeight < 0 {
			h := p.measureContentHeight(it.key, *m, in.width, in.height)
			contentHeight = nonNegative(h - it.pbMain)
		}
		return contentHeight
	}

	hasBase := mainBase.IsDefinite()
	specified, hasSpecified := mainProp.Resolve(mainBase.Value, hasBase)
	if hasSpecified {
		specified = toContentBox(specified, it.pbMain, cs.BoxSizing)
	}

	if v, ok := cs.FlexBasis.Resolve(mainBase.Value, hasBase); ok {
		it.base = toContentBox(v, it.pbMain, cs.BoxSizing)
	} else if hasSpecified && !cs.FlexBasis.IsContent() {
		it.base = specified
	} else if axes.row {
		_, maxContent := p.intrinsicWidths(it.key)
		it.base = nonNegative(maxContent - it.pbMain)
	} else {
		it.base = measuredContent()
	}

	if v, ok := maxProp.Resolve(mainBase.Value, hasBase); ok {
		it.maxMain = toContentBox(v, it.pbMain, cs.BoxSizing)
		it.hasMaxMain = true
	}
	if v, ok := minProp.Resolve(mainBase.Value, hasBase); ok {
		it.minMain = toContentBox(v, it.pbMain, cs.BoxSizing)
	} else if minProp.IsAuto() && cs.Overflow == css.OverflowVisible {
		// Automatic minimum size: the content size, capped by a definite
		// specified size and by the max size.
		var content float64
		if axes.row {
			minContent, _ := p.contentIntrinsic(p.tree.Node(it.key))
			content = nonNegative(minContent - it.pbMain)
		} else {
			content = measuredContent()
		}
		if hasSpecified && specified < content {
			content = specified
		}
		if it.hasMaxMain && it.maxMain < content {
			content = it.maxMain
		}
		it.minMain = content
	}
	it.hypothetical = it.clampMain(it.base)
}

// resolveAnonymousBase sizes an anonymous item wrapping a text run.
func (p *pass) resolveAnonymousBase(it *flexItem, axes flexAxes, in flexInput) {
	n := p.tree.Node(it.key)
	minContent, maxContent := text.MinMax(p.measurer, n.Text, it.fontSize)
	lineHeight := text.LineHeight(it.fontSize)
	if axes.row {
		it.base, it.minMain = maxContent, minContent
		it.crossSize = lineHeight
	} else {
		it.base, it.minMain = lineHeight, lineHeight
		it.crossSize = math.Min(maxContent, in.width)
	}
	it.hypothetical = it.clampMain(it.base)
}

// columnItemWidth is the cross size of a column item before stretching:
// its specified width, the stretched width, or fit-content.
func (p *pass) columnItemWidth(it *flexItem, in flexInput) float64 {
	m := it.m
	if !m.WidthAuto {
		return m.BorderBoxWidth
	}
	if it.align == css.AlignStretch && !it.autoCrossStart && !it.autoCrossEnd {
		return m.BorderBoxWidth
	}
	available := in.width - m.Margin.Horizontal()
	return p.shrinkToFit(it.key, it.style, m, available, in.width)
}

// measureKey identifies one measuring layout. A box laid out at the same
// width against the same containing block always measures the same height.
type measureKey struct {
	key           boxtree.NodeKey
	width         float64
	cbWidth       float64
	cbHeight      AvailableSize
	contentHeight bool
}

// measureHeight lays a subtree out at the origin as a formatting context
// root and returns its border-box height. The rects it writes are replaced
// by the final placement. Results are memoised per pass so nested flex
// containers do not re-measure their items at every level.
func (p *pass) measureHeight(key boxtree.NodeKey, m ContainerMetrics, cbWidth float64, cbHeight AvailableSize) float64 {
	return p.measure(key, m, cbWidth, cbHeight, false)
}

// measureContentHeight is measureHeight with the box's own height, min-height
// and max-height ignored.
func (p *pass) measureContentHeight(key boxtree.NodeKey, m ContainerMetrics, cbWidth float64, cbHeight AvailableSize) float64 {
	return p.measure(key, m, cbWidth, cbHeight, true)
}

func (p *pass) measure(key boxtree.NodeKey, m ContainerMetrics, cbWidth float64, cbHeight AvailableSize, contentHeight bool) float64 {
	k := measureKey{key: key, width: m.BorderBoxWidth, cbWidth: cbWidth, cbHeight: cbHeight, contentHeight: contentHeight}
	if h, ok := p.measured[k]; ok {
		return h
	}
	p.measureLayouts++
	out := p.layoutBox(key, boxInput{m: m, cbWidth: cbWidth, cbHeight: cbHeight, forceBFC: true, contentHeight: contentHeight})
	p.measured[k] = out.height
	return out.height
}

// resolveCrossSizes measures hypothetical cross sizes, sizes the line and
// stretches items that ask for it.
func (p *pass) resolveCrossSizes(line *flexLine, axes flexAxes, in flexInput, innerCross AvailableSize) {
	for _, it := range line.items {
		if it.anonymous || !axes.row {
			continue
		}
		cs := it.style
		if h, ok := SpecifiedHeight(cs, it.m, innerCross); ok {
			it.crossSize = h
			continue
		}
		it.crossSize = p.measureHeight(it.key, it.m.withBorderBoxWidth(it.usedMain()), in.width, innerCross)
	}

	if innerCross.IsDefinite() {
		line.crossSize = innerCross.Value
	} else {
		for _, it := range line.items {
			if c := it.outerCross(); c > line.crossSize {
				line.crossSize = c
			}
		}
	}

	for _, it := range line.items {
		if it.anonymous || it.align != css.AlignStretch || it.autoCrossStart || it.autoCrossEnd {
			continue
		}
		cs := it.style
		stretched := nonNegative(line.crossSize - it.crossMarginStart - it.crossMarginEnd)
		if axes.row {
			if _, ok := SpecifiedHeight(cs, it.m, innerCross); ok {
				continue
			}
			it.crossSize = clampHeight(cs, stretched, innerCross, it.pbCross)
		} else {
			if !it.m.WidthAuto {
				continue
			}
			it.crossSize = clampWidth(cs, stretched, in.width, it.pbCross)
		}
	}
}

// placeFlexItem converts logical offsets to page coordinates and lays the
// item out at its final size.
func (p *pass) placeFlexItem(it *flexItem, axes flexAxes, in flexInput, mainSize float64) {
	main := it.mainPos
	if axes.reverse {
		main = mainSize - it.mainPos - it.usedMain()
	}
	var r Rect
	if axes.row {
		r = Rect{X: in.x + main, Y: in.y + it.crossPos, Width: it.usedMain(), Height: it.crossSize}
	} else {
		r = Rect{X: in.x + it.crossPos, Y: in.y + main, Width: it.crossSize, Height: it.usedMain()}
	}
	if it.anonymous {
		p.setRect(it.key, r)
		return
	}
	p.layoutBox(it.key, boxInput{
		x:               r.X,
		y:               r.Y,
		m:               it.m.withBorderBoxWidth(r.Width),
		cbWidth:         in.width,
		cbHeight:        in.height,
		forcedHeight:    r.Height,
		hasForcedHeight: true,
		forceBFC:        true,
	})
}
