package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/css"
	"github.com/BigBadE/valor-sub000/pkg/text"
)

func TestResolveMetrics(t *testing.T) {
	tests := []struct {
		name      string
		decl      string
		wantWidth float64
		wantInner float64
		wantLeft  float64
	}{
		{"auto fills", "margin: 0 10px", 780, 780, 10},
		{"content-box", "width: 100px; padding: 10px; border: 5px solid black", 130, 100, 0},
		{"border-box", "box-sizing: border-box; width: 100px; padding: 10px; border: 5px solid black", 100, 70, 0},
		{"border-box too small", "box-sizing: border-box; width: 10px; padding: 10px", 20, 0, 0},
		{"percentage", "width: 50%", 400, 400, 0},
		{"centred", "width: 200px; margin: 0 auto", 200, 200, 300},
		{"max-width", "max-width: 300px", 300, 300, 0},
		{"min beats max", "min-width: 500px; max-width: 300px", 500, 500, 0},
		{"negative content clamps", "margin: 0 500px", 0, 0, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := css.Compute("div", css.ParseInlineStyle(tt.decl))
			m := ResolveMetrics(cs, 800)
			assert.Equal(t, tt.wantWidth, m.BorderBoxWidth)
			assert.Equal(t, tt.wantInner, m.ContentWidth)
			assert.Equal(t, tt.wantLeft, m.Margin.Left)
			assert.GreaterOrEqual(t, m.ContentWidth, 0.0)
		})
	}
}

func TestResolveHeight(t *testing.T) {
	cs := css.Compute("div", css.ParseInlineStyle("height: 50%; padding: 5px"))
	m := ResolveMetrics(cs, 800)

	assert.Equal(t, 110.0, ResolveHeight(cs, m, 999, Definite(200)))
	assert.Equal(t, 40.0, ResolveHeight(cs, m, 30, Indefinite), "an unresolvable percentage behaves as auto")

	clamped := css.Compute("div", css.ParseInlineStyle("min-height: 60px; max-height: 80px"))
	cm := ResolveMetrics(clamped, 800)
	assert.Equal(t, 60.0, ResolveHeight(clamped, cm, 10, Indefinite))
	assert.Equal(t, 80.0, ResolveHeight(clamped, cm, 500, Indefinite))
}

func TestContentOriginIncludesPaddingAndBorder(t *testing.T) {
	b := newBuilder()
	outer := b.div(boxtree.Root, "padding: 10px 20px; border: 3px solid black")
	inner := b.div(outer, "height: 10px")

	res := b.layout(t)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 800, Height: 36}, rectOf(t, res, outer))
	assert.Equal(t, Rect{X: 23, Y: 13, Width: 754, Height: 10}, rectOf(t, res, inner))
}

func TestPercentageHeightNeedsDefiniteParent(t *testing.T) {
	b := newBuilder()
	sized := b.div(boxtree.Root, "height: 200px")
	half := b.div(sized, "height: 50%")
	auto := b.div(boxtree.Root, "")
	unresolved := b.div(auto, "height: 50%")

	res := b.layout(t)
	assert.Equal(t, 100.0, rectOf(t, res, half).Height)
	assert.Equal(t, 0.0, rectOf(t, res, unresolved).Height)
}

func TestRelativeOffsets(t *testing.T) {
	b := newBuilder()
	moved := b.div(boxtree.Root, "position: relative; top: 10px; bottom: 99px; left: 5px; height: 20px")
	child := b.div(moved, "height: 5px")
	after := b.div(boxtree.Root, "height: 5px")
	up := b.div(boxtree.Root, "position: relative; bottom: 3px; right: 4px; height: 5px")

	res := b.layout(t)
	assert.Equal(t, Rect{X: 5, Y: 10, Width: 800, Height: 20}, rectOf(t, res, moved))
	assert.Equal(t, Rect{X: 5, Y: 10, Width: 800, Height: 5}, rectOf(t, res, child), "the subtree moves with its root")
	assert.Equal(t, 20.0, rectOf(t, res, after).Y, "relative offsets do not affect flow")
	assert.Equal(t, Rect{X: -4, Y: 22, Width: 800, Height: 5}, rectOf(t, res, up))
}

func TestDisplayNoneSubtree(t *testing.T) {
	b := newBuilder()
	hidden := b.div(boxtree.Root, "display: none; height: 100px")
	inner := b.div(hidden, "height: 10px")
	next := b.div(boxtree.Root, "height: 10px")

	res := b.layout(t)
	assert.Equal(t, 0.0, rectOf(t, res, hidden).Height)
	assert.Equal(t, 0.0, rectOf(t, res, inner).Width)
	assert.Equal(t, 0.0, rectOf(t, res, next).Y)
}

func TestEveryNodeGetsOneRect(t *testing.T) {
	b := newBuilder()
	outer := b.div(boxtree.Root, "display: flex")
	b.text(outer, "  ")
	b.div(outer, "display: none")
	b.div(outer, "position: absolute")
	block := b.div(boxtree.Root, "")
	b.text(block, "words here")
	b.div(block, "float: right; width: 10px")
	b.el(block, "span", "")

	res := b.layout(t)
	count := 0
	b.tree.Walk(boxtree.Root, func(n *boxtree.Node) bool {
		count++
		r, ok := res.Rects[n.Key]
		assert.True(t, ok, "node %d has no rect", n.Key)
		assert.GreaterOrEqual(t, r.Width, 0.0)
		assert.GreaterOrEqual(t, r.Height, 0.0)
		return true
	})
	assert.Len(t, res.Rects, count)
}

func TestLayoutIsIdempotent(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; width: 333px; justify-content: space-around")
	for _, decl := range []string{"flex: 1 1 7px", "flex: 2 3 0px; margin: 0 auto", "width: 41px"} {
		b.div(container, decl)
	}
	b.div(boxtree.Root, "float: left; width: 33%; height: 17px")
	b.div(boxtree.Root, "margin: 13px 0; padding: 1px")

	engine := NewEngine(b.tree, WithViewport(800, 600))
	first := engine.Layout(boxtree.NewDirtySet(boxtree.Root))
	second := engine.Layout(boxtree.NewDirtySet())

	assert.Empty(t, cmp.Diff(first.Rects, second.Rects))
	assert.Equal(t, first.PaintOrder, second.PaintOrder)
	assert.NotEqual(t, first.PassID, second.PassID)
}

func TestInlineBlockShrinkToFit(t *testing.T) {
	b := newBuilder()
	box := b.div(boxtree.Root, "display: inline-block; padding: 0 5px")
	run := b.text(box, "hello world")

	res := b.layout(t)
	width := text.DefaultMeasurer().Width("hello world", 16)
	assert.InDelta(t, width+10, rectOf(t, res, box).Width, 1e-9)
	assert.InDelta(t, 19.2, rectOf(t, res, box).Height, 1e-9)
	assert.InDelta(t, 5, rectOf(t, res, run).X, 1e-9)
}

func TestOutOfFlowStaticPosition(t *testing.T) {
	b := newBuilder()
	b.div(boxtree.Root, "height: 40px")
	abs := b.div(boxtree.Root, "position: absolute; top: 500px; margin-left: 7px; width: 20px; height: 20px")
	after := b.div(boxtree.Root, "height: 10px")

	res := b.layout(t)
	assert.Equal(t, Rect{X: 7, Y: 40, Width: 20, Height: 20}, rectOf(t, res, abs))
	assert.Equal(t, 40.0, rectOf(t, res, after).Y, "out-of-flow boxes take no space")
}

func TestDocumentRect(t *testing.T) {
	b := newBuilder()
	b.div(boxtree.Root, "height: 1000px")

	res := b.layout(t, WithViewport(640, 480))
	assert.Equal(t, Rect{Width: 640, Height: 1000}, rectOf(t, res, boxtree.Root))
}

func TestLayoutReportsDirtyRoots(t *testing.T) {
	b := newBuilder()
	outer := b.div(boxtree.Root, "")
	inner := b.div(outer, "")

	core, logs := observer.New(zap.DebugLevel)
	engine := NewEngine(b.tree, WithLogger(zap.New(core)))
	res := engine.Layout(boxtree.NewDirtySet(inner, outer))

	require.Equal(t, []boxtree.NodeKey{outer}, res.Dirty)
	entries := logs.FilterMessage("layout pass complete").All()
	require.Len(t, entries, 1)
	assert.Equal(t, res.PassID.String(), entries[0].ContextMap()["pass_id"])
}

func TestFlexWrapIsReported(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "display: flex; flex-wrap: wrap; width: 100px")
	b.div(container, "width: 80px")
	b.div(container, "width: 80px")

	core, logs := observer.New(zap.WarnLevel)
	NewEngine(b.tree, WithLogger(zap.New(core))).Layout(boxtree.NewDirtySet())
	assert.Equal(t, 1, logs.FilterMessage("flex-wrap is not supported, laying out a single line").Len())
}
