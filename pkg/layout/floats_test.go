package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/css"
)

func TestFloatTrackerFloorsAreMonotonic(t *testing.T) {
	tr := NewFloatTracker()
	_, ok := tr.ClearanceFloor(css.FloatLeft)
	assert.False(t, ok)

	tr.Add(Exclusion{Rect: Rect{Width: 10, Height: 80}, Side: css.FloatLeft, ClearEdge: 80})
	tr.Add(Exclusion{Rect: Rect{Y: 10, Width: 10, Height: 20}, Side: css.FloatLeft, ClearEdge: 30})

	floor, ok := tr.ClearanceFloor(css.FloatLeft)
	assert.True(t, ok)
	assert.Equal(t, 80.0, floor, "a shorter float never lowers the floor")

	_, ok = tr.ClearanceFloor(css.FloatRight)
	assert.False(t, ok)
	assert.Equal(t, 80.0, tr.ClearY(css.ClearBoth, 5))
	assert.Equal(t, 5.0, tr.ClearY(css.ClearRight, 5))
	assert.Equal(t, 100.0, tr.ClearY(css.ClearLeft, 100))
}

func TestFloatTrackerBand(t *testing.T) {
	tr := NewFloatTracker()
	tr.Add(Exclusion{Rect: Rect{X: 0, Y: 0, Width: 100, Height: 50}, Side: css.FloatLeft})
	tr.Add(Exclusion{Rect: Rect{X: 700, Y: 20, Width: 100, Height: 50}, Side: css.FloatRight})

	left, right := tr.Band(0, 10, 0, 800)
	assert.Equal(t, 100.0, left)
	assert.Equal(t, 800.0, right)

	left, right = tr.Band(25, 0, 0, 800)
	assert.Equal(t, 100.0, left)
	assert.Equal(t, 700.0, right)

	left, right = tr.Band(50, 10, 0, 800)
	assert.Equal(t, 0.0, left, "the left float ends at 50")
	assert.Equal(t, 700.0, right)
}

func TestFloatTrackerPlaceFloatDrops(t *testing.T) {
	tr := NewFloatTracker()
	tr.Add(Exclusion{Rect: Rect{Width: 500, Height: 50}, Side: css.FloatLeft})

	x, y := tr.PlaceFloat(css.FloatLeft, 200, 10, 0, 0, 800)
	assert.Equal(t, 500.0, x)
	assert.Equal(t, 0.0, y)

	x, y = tr.PlaceFloat(css.FloatLeft, 400, 10, 0, 0, 800)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 50.0, y, "does not fit beside the first float")

	x, y = tr.PlaceFloat(css.FloatRight, 100, 10, 0, 0, 800)
	assert.Equal(t, 700.0, x)
	assert.Equal(t, 0.0, y)
}

func TestFloatsInBlockFlow(t *testing.T) {
	b := newBuilder()
	left := b.div(boxtree.Root, "float: left; width: 100px; height: 50px")
	left2 := b.div(boxtree.Root, "float: left; width: 100px; height: 30px")
	right := b.div(boxtree.Root, "float: right; width: 100px; height: 20px")
	cleared := b.div(boxtree.Root, "clear: left; height: 10px")

	res := b.layout(t)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 100, Height: 50}, rectOf(t, res, left))
	assert.Equal(t, Rect{X: 100, Y: 0, Width: 100, Height: 30}, rectOf(t, res, left2))
	assert.Equal(t, Rect{X: 700, Y: 0, Width: 100, Height: 20}, rectOf(t, res, right))
	assert.Equal(t, Rect{X: 0, Y: 50, Width: 800, Height: 10}, rectOf(t, res, cleared))
}

func TestClearanceIncludesPositiveBottomMargin(t *testing.T) {
	b := newBuilder()
	b.div(boxtree.Root, "float: left; width: 100px; height: 50px; margin-bottom: 10px")
	cleared := b.div(boxtree.Root, "clear: both; height: 10px")

	res := b.layout(t)
	assert.Equal(t, 60.0, rectOf(t, res, cleared).Y)
}

func TestFloatShrinkToFit(t *testing.T) {
	b := newBuilder()
	float := b.div(boxtree.Root, "float: left; padding: 2px")
	b.div(float, "width: 40px; height: 10px")

	res := b.layout(t)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 44, Height: 14}, rectOf(t, res, float))
}

func TestBFCRootAvoidsFloatsAndIgnoresClearance(t *testing.T) {
	b := newBuilder()
	b.div(boxtree.Root, "float: left; width: 100px; height: 50px")
	bfc := b.div(boxtree.Root, "overflow: hidden; clear: both; height: 10px")

	res := b.layout(t)
	assert.Equal(t, Rect{X: 100, Y: 0, Width: 700, Height: 10}, rectOf(t, res, bfc))
}

func TestFloatsDoNotCrossBFCBoundary(t *testing.T) {
	b := newBuilder()
	b.div(boxtree.Root, "float: left; width: 100px; height: 50px")
	bfc := b.div(boxtree.Root, "overflow: hidden")
	inner := b.div(bfc, "clear: left; height: 10px")

	res := b.layout(t)
	assert.Equal(t, 0.0, rectOf(t, res, inner).Y, "outer floats never raise positions inside a BFC")
}

func TestBFCRootContainsFloats(t *testing.T) {
	b := newBuilder()
	contained := b.div(boxtree.Root, "overflow: hidden")
	b.div(contained, "float: left; width: 100px; height: 50px")
	plain := b.div(boxtree.Root, "")
	b.div(plain, "float: left; width: 100px; height: 70px")

	res := b.layout(t)
	assert.Equal(t, 50.0, rectOf(t, res, contained).Height)
	assert.Equal(t, 0.0, rectOf(t, res, plain).Height)
}

func TestTextRunBesideFloat(t *testing.T) {
	b := newBuilder()
	container := b.div(boxtree.Root, "")
	b.div(container, "float: left; width: 100px; height: 50px")
	run := b.text(container, "abc")

	res := b.layout(t)
	r := rectOf(t, res, run)
	assert.Equal(t, 100.0, r.X)
	assert.InDelta(t, 3*16*0.6, r.Width, 1e-9)
	assert.InDelta(t, 19.2, r.Height, 1e-9)
}
