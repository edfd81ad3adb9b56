package layout

import (
	"github.com/BigBadE/valor-sub000/pkg/css"
)

// Exclusion is the margin box of a placed float.
type Exclusion struct {
	Rect Rect
	Side css.FloatType
	// ClearEdge is the border-box bottom plus any positive bottom margin;
	// cleared boxes start no higher than this.
	ClearEdge float64
}

// FloatTracker records the floats of one block formatting context in
// document order. It is owned by the orchestrator call laying out the BFC
// root and is never shared with nested BFCs.
type FloatTracker struct {
	exclusions []Exclusion
	leftFloor  float64
	rightFloor float64
	hasLeft    bool
	hasRight   bool
	// lastTop keeps float tops in document order: a float is never placed
	// above an earlier one.
	lastTop float64
}

func NewFloatTracker() *FloatTracker {
	return &FloatTracker{}
}

// Len is the number of committed floats.
func (t *FloatTracker) Len() int { return len(t.exclusions) }

// Add commits a placed float. Floors only ever move down.
func (t *FloatTracker) Add(ex Exclusion) {
	t.exclusions = append(t.exclusions, ex)
	if ex.Rect.Y > t.lastTop {
		t.lastTop = ex.Rect.Y
	}
	switch ex.Side {
	case css.FloatLeft:
		if !t.hasLeft || ex.ClearEdge > t.leftFloor {
			t.leftFloor = ex.ClearEdge
		}
		t.hasLeft = true
	case css.FloatRight:
		if !t.hasRight || ex.ClearEdge > t.rightFloor {
			t.rightFloor = ex.ClearEdge
		}
		t.hasRight = true
	}
}

// ClearanceFloor returns the clearance floor for one side; ok is false when
// no float was placed on that side.
func (t *FloatTracker) ClearanceFloor(side css.FloatType) (float64, bool) {
	switch side {
	case css.FloatLeft:
		return t.leftFloor, t.hasLeft
	case css.FloatRight:
		return t.rightFloor, t.hasRight
	}
	return 0, false
}

// ClearY raises y to the floors named by clear.
func (t *FloatTracker) ClearY(clear css.ClearType, y float64) float64 {
	if clear == css.ClearLeft || clear == css.ClearBoth {
		if f, ok := t.ClearanceFloor(css.FloatLeft); ok && f > y {
			y = f
		}
	}
	if clear == css.ClearRight || clear == css.ClearBoth {
		if f, ok := t.ClearanceFloor(css.FloatRight); ok && f > y {
			y = f
		}
	}
	return y
}

// MaxBottom is the lowest margin-box edge of any float, used to grow the
// auto height of a BFC root.
func (t *FloatTracker) MaxBottom() (float64, bool) {
	var bottom float64
	for i, ex := range t.exclusions {
		if i == 0 || ex.Rect.Bottom() > bottom {
			bottom = ex.Rect.Bottom()
		}
	}
	return bottom, len(t.exclusions) > 0
}

func (ex Exclusion) overlaps(top, height float64) bool {
	if ex.Rect.Height <= 0 {
		return false
	}
	if height <= 0 {
		return ex.Rect.Y <= top && top < ex.Rect.Bottom()
	}
	return ex.Rect.Y < top+height && ex.Rect.Bottom() > top
}

// Band returns the horizontal space left free by floats over the vertical
// range [top, top+height), within [minX, maxX]: the largest right edge of
// overlapping left floats and the smallest left edge of overlapping right
// floats.
func (t *FloatTracker) Band(top, height, minX, maxX float64) (left, right float64) {
	left, right = minX, maxX
	for _, ex := range t.exclusions {
		if !ex.overlaps(top, height) {
			continue
		}
		switch ex.Side {
		case css.FloatLeft:
			if ex.Rect.Right() > left {
				left = ex.Rect.Right()
			}
		case css.FloatRight:
			if ex.Rect.X < right {
				right = ex.Rect.X
			}
		}
	}
	return left, right
}

// PlaceFloat finds the margin-box origin of a new float: the highest position
// at or below top where the margin box fits beside earlier floats, flush to
// its side. If it never fits it goes below every float it collides with.
func (t *FloatTracker) PlaceFloat(side css.FloatType, width, height, top, minX, maxX float64) (x, y float64) {
	y = top
	if t.lastTop > y {
		y = t.lastTop
	}
	width = nonNegative(width)
	height = nonNegative(height)

	for n := 0; n < len(t.exclusions)+1; n++ {
		left, right := t.Band(y, height, minX, maxX)
		if right-left >= width || !t.anyOverlap(y, height) {
			return t.align(side, width, left, right), y
		}
		next, ok := t.nextBottom(y, height)
		if !ok {
			break
		}
		y = next
	}
	left, right := t.Band(y, height, minX, maxX)
	return t.align(side, width, left, right), y
}

func (t *FloatTracker) align(side css.FloatType, width, left, right float64) float64 {
	if side == css.FloatRight {
		return right - width
	}
	return left
}

func (t *FloatTracker) anyOverlap(top, height float64) bool {
	for _, ex := range t.exclusions {
		if ex.overlaps(top, height) {
			return true
		}
	}
	return false
}

// nextBottom is the nearest float bottom below y among floats overlapping the
// range, the next y where the band can widen.
func (t *FloatTracker) nextBottom(top, height float64) (float64, bool) {
	var next float64
	found := false
	for _, ex := range t.exclusions {
		if !ex.overlaps(top, height) {
			continue
		}
		if b := ex.Rect.Bottom(); b > top && (!found || b < next) {
			next = b
			found = true
		}
	}
	return next, found
}
