package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/css"
)

func TestFlexGrowScenario(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; width: 400px; justify-content: flex-start")
	a := b.div(container, "flex: 1 1 0px; height: 10px")
	c := b.div(container, "flex: 2 1 0px; height: 10px")
	d := b.div(container, "flex: 1 1 0px; height: 10px")

	res := b.layout(t)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 100, Height: 10}, rectOf(t, res, a))
	assert.Equal(t, Rect{X: 100, Y: 0, Width: 200, Height: 10}, rectOf(t, res, c))
	assert.Equal(t, Rect{X: 300, Y: 0, Width: 100, Height: 10}, rectOf(t, res, d))
	assert.Equal(t, 10.0, rectOf(t, res, container).Height)
}

func TestFlexShrinkProportional(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; width: 600px")
	var items []boxtree.NodeKey
	for n := 0; n < 3; n++ {
		items = append(items, b.div(container, "width: 300px; flex-shrink: 1; height: 5px"))
	}

	res := b.layout(t)
	for i, key := range items {
		r := rectOf(t, res, key)
		assert.InDelta(t, 200.0, r.Width, 1e-9)
		assert.InDelta(t, float64(i)*200, r.X, 1e-9)
	}
}

func TestFlexGrowConservation(t *testing.T) {
	bases := []float64{13.7, 0, 41.25, 7.5, 99.9}
	items := make([]*flexItem, 0, len(bases))
	for _, base := range bases {
		items = append(items, &flexItem{grow: 1, shrink: 1, base: base, hypothetical: base})
	}
	const available = 517.3
	rounds := resolveFlexibleLengths(items, available)

	var sum float64
	for _, it := range items {
		assert.True(t, it.frozen)
		sum += it.usedMain()
	}
	assert.InDelta(t, available, sum, 1e-9)
	assert.LessOrEqual(t, rounds, len(items))
}

func TestResolveFlexibleLengthsFreezesMaxViolations(t *testing.T) {
	capped := &flexItem{grow: 1, shrink: 1, maxMain: 50, hasMaxMain: true}
	free := &flexItem{grow: 1, shrink: 1}
	rounds := resolveFlexibleLengths([]*flexItem{capped, free}, 300)

	assert.Equal(t, 2, rounds)
	assert.Equal(t, 50.0, capped.target)
	assert.Equal(t, 250.0, free.target)
}

func TestResolveFlexibleLengthsMinViolationWhileShrinking(t *testing.T) {
	floor := &flexItem{shrink: 1, base: 300, hypothetical: 300, minMain: 250}
	other := &flexItem{shrink: 1, base: 300, hypothetical: 300}
	resolveFlexibleLengths([]*flexItem{floor, other}, 400)

	assert.Equal(t, 250.0, floor.target)
	assert.Equal(t, 150.0, other.target)
}

func TestResolveFlexibleLengthsScalesSmallFactorSums(t *testing.T) {
	half := &flexItem{grow: 0.5}
	resolveFlexibleLengths([]*flexItem{half}, 100)
	assert.Equal(t, 50.0, half.target, "a factor sum below one takes only that share of the space")
}

func TestResolveFlexibleLengthsZeroFactors(t *testing.T) {
	rigid := &flexItem{base: 40, hypothetical: 40}
	rounds := resolveFlexibleLengths([]*flexItem{rigid}, 100)
	assert.Equal(t, 0, rounds)
	assert.Equal(t, 40.0, rigid.target)
}

func TestFlexOrderIsStable(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; width: 400px")
	last := b.div(container, "order: 2; width: 50px; flex: none")
	first := b.div(container, "order: 1; width: 50px; flex: none")
	second := b.div(container, "order: 1; width: 50px; flex: none")

	res := b.layout(t)
	assert.Equal(t, 0.0, rectOf(t, res, first).X)
	assert.Equal(t, 50.0, rectOf(t, res, second).X)
	assert.Equal(t, 100.0, rectOf(t, res, last).X)
	assert.Equal(t, []boxtree.NodeKey{first, second, last}, res.ChildrenInPaintOrder(b.tree, container))
}

func TestJustifyContent(t *testing.T) {
	tests := []struct {
		justify string
		want    []float64
	}{
		{"flex-start", []float64{0, 50, 100}},
		{"flex-end", []float64{250, 300, 350}},
		{"center", []float64{125, 175, 225}},
		{"space-between", []float64{0, 175, 350}},
		{"space-around", []float64{125.0 / 3, 125.0/3 + 50 + 250.0/3, 125.0/3 + 100 + 500.0/3}},
		{"space-evenly", []float64{62.5, 175, 287.5}},
	}
	for _, tt := range tests {
		t.Run(tt.justify, func(t *testing.T) {
			b := newBuilder()
			container := b.div(boxtree.Root, "display: flex; width: 400px; justify-content: "+tt.justify)
			var items []boxtree.NodeKey
			for n := 0; n < 3; n++ {
				items = append(items, b.div(container, "width: 50px; height: 10px; flex: none"))
			}
			res := b.layout(t)
			for i, key := range items {
				assert.InDelta(t, tt.want[i], rectOf(t, res, key).X, 1.0/32, "item %d", i)
			}
		})
	}
}

func TestJustifyParamsFallbacks(t *testing.T) {
	offset, between := justifyParams(css.JustifySpaceBetween, 100, 1)
	assert.Equal(t, 0.0, offset)
	assert.Equal(t, 0.0, between)

	offset, between = justifyParams(css.JustifySpaceAround, -40, 3)
	assert.Equal(t, -20.0, offset)
	assert.Equal(t, 0.0, between)

	offset, _ = justifyParams(css.JustifySpaceEvenly, -40, 3)
	assert.Equal(t, -20.0, offset)

	offset, between = justifyParams(css.JustifySpaceBetween, -40, 3)
	assert.Equal(t, 0.0, offset)
	assert.Equal(t, 0.0, between)
}

func TestJustifyParamsSnapsToLayoutUnits(t *testing.T) {
	offset, between := justifyParams(css.JustifySpaceBetween, 100, 4)
	assert.Equal(t, 0.0, offset)
	assert.Equal(t, snapFloor(100.0/3), between)
	assert.LessOrEqual(t, between*3, 100.0)
}

func TestFlexAutoMargins(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; width: 400px; height: 100px")
	pushed := b.div(container, "margin-left: auto; width: 100px; height: 20px")

	centred := b.div(boxtree.Root, "display: flex; width: 400px; height: 100px")
	item := b.div(centred, "margin: auto; width: 100px; height: 20px")

	res := b.layout(t)
	assert.Equal(t, 300.0, rectOf(t, res, pushed).X)
	assert.Equal(t, 0.0, rectOf(t, res, pushed).Y)

	r := rectOf(t, res, item)
	assert.Equal(t, 150.0, r.X)
	assert.Equal(t, 140.0, r.Y, "second container starts at 100, plus (100-20)/2")
	assert.Equal(t, 100.0, rectOf(t, res, container).Height)
}

func TestFlexColumn(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; flex-direction: column; width: 200px; height: 300px")
	a := b.div(container, "flex: 1")
	c := b.div(container, "flex: 1")

	res := b.layout(t)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 200, Height: 150}, rectOf(t, res, a))
	assert.Equal(t, Rect{X: 0, Y: 150, Width: 200, Height: 150}, rectOf(t, res, c))
}

func TestFlexColumnAutoHeight(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; flex-direction: column; row-gap: 5px")
	b.div(container, "height: 20px")
	b.div(container, "height: 30px")

	res := b.layout(t)
	assert.Equal(t, 55.0, rectOf(t, res, container).Height)
}

func TestFlexRowReverse(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; flex-direction: row-reverse; width: 400px")
	a := b.div(container, "width: 100px; height: 10px")
	c := b.div(container, "width: 100px; height: 10px")

	res := b.layout(t)
	assert.Equal(t, 300.0, rectOf(t, res, a).X)
	assert.Equal(t, 200.0, rectOf(t, res, c).X)
}

func TestFlexGap(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; width: 410px; column-gap: 10px")
	a := b.div(container, "flex: 1")
	c := b.div(container, "flex: 1")

	res := b.layout(t)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 200, Height: 0}, rectOf(t, res, a))
	assert.Equal(t, Rect{X: 210, Y: 0, Width: 200, Height: 0}, rectOf(t, res, c))
}

func TestFlexCrossAlignment(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; width: 400px; height: 100px")
	stretched := b.div(container, "width: 50px")
	centred := b.div(container, "width: 50px; height: 20px; align-self: center")
	ended := b.div(container, "width: 50px; height: 20px; align-self: flex-end")
	baseline := b.div(container, "width: 50px; height: 20px; align-self: baseline")

	res := b.layout(t)
	assert.Equal(t, 100.0, rectOf(t, res, stretched).Height)
	assert.Equal(t, 40.0, rectOf(t, res, centred).Y)
	assert.Equal(t, 80.0, rectOf(t, res, ended).Y)
	assert.Equal(t, 0.0, rectOf(t, res, baseline).Y)
}

func TestFlexLineCrossSizeFromTallestItem(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; width: 400px")
	short := b.div(container, "width: 50px")
	b.div(container, "width: 50px; height: 70px")

	res := b.layout(t)
	assert.Equal(t, 70.0, rectOf(t, res, container).Height)
	assert.Equal(t, 70.0, rectOf(t, res, short).Height, "auto-height items stretch to the line")
}

func TestFlexMinMaxClamp(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; width: 400px")
	capped := b.div(container, "flex: 1; max-width: 100px")
	grown := b.div(container, "flex: 1")

	res := b.layout(t)
	assert.Equal(t, 100.0, rectOf(t, res, capped).Width)
	assert.Equal(t, 300.0, rectOf(t, res, grown).Width)
}

func TestFlexAutomaticMinimumKeepsContent(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; width: 100px")
	wide := b.div(container, "flex: 1")
	b.div(wide, "width: 80px; height: 10px")
	other := b.div(container, "width: 100px")

	res := b.layout(t)
	assert.Equal(t, 80.0, rectOf(t, res, wide).Width, "min-width:auto keeps the min-content width")
	assert.Equal(t, 20.0, rectOf(t, res, other).Width)
}

func TestFlexSkipsHiddenAndOutOfFlowChildren(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; width: 400px")
	hidden := b.div(container, "display: none; flex: 1")
	abs := b.div(container, "position: absolute; width: 30px; height: 30px")
	item := b.div(container, "flex: 1")

	res := b.layout(t)
	assert.Equal(t, 400.0, rectOf(t, res, item).Width)
	assert.Equal(t, 0.0, rectOf(t, res, hidden).Width)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 30, Height: 30}, rectOf(t, res, abs))
}

func TestFlexAnonymousTextItem(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; width: 400px; align-items: flex-start")
	run := b.text(container, "abcd")
	item := b.div(container, "width: 10px; height: 10px")

	res := b.layout(t)
	r := rectOf(t, res, run)
	require.InDelta(t, 4*16*0.6, r.Width, 1e-9)
	assert.InDelta(t, r.Width, rectOf(t, res, item).X, 1e-9)
}

func TestFlexReverseMarginsFollowMainStart(t *testing.T) {
	tests := []struct {
		name  string
		decl  string
		wantX float64
	}{
		{"left margin sits at main-end", "width: 100px; height: 10px; margin-left: 20px", 300},
		{"right margin sits at main-start", "width: 100px; height: 10px; margin-right: 20px", 280},
		{"auto right margin absorbs free space first", "width: 100px; height: 10px; margin-right: auto", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder()
			container := b.div(boxtree.Root, "display: flex; flex-direction: row-reverse; width: 400px")
			item := b.div(container, tt.decl)

			res := b.layout(t)
			assert.Equal(t, tt.wantX, rectOf(t, res, item).X)
		})
	}

	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; flex-direction: column-reverse; height: 100px")
	item := b.div(container, "height: 10px; margin-top: 5px")
	res := b.layout(t)
	assert.Equal(t, 90.0, rectOf(t, res, item).Y, "top margin sits at main-end")
}

func TestNestedFlexMeasuresEachLevelOnce(t *testing.T) {
	const depth = 12
	b := newBuilder()
	parent := b.div(boxtree.Root, "display: flex; width: 400px")
	for i := 1; i < depth; i++ {
		parent = b.div(parent, "display: flex")
	}
	leaf := b.div(parent, "width: 10px; height: 7px")

	p := newPass(NewEngine(b.tree, WithViewport(800, 600)))
	p.layoutDocument()
	// One measurement per level against an indefinite and a stretched
	// containing block, not one per ancestor layout.
	assert.LessOrEqual(t, p.measureLayouts, 2*depth)
	assert.Equal(t, 7.0, p.rects[leaf].Height)

	res := b.layout(t)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 10, Height: 7}, rectOf(t, res, leaf))
}
