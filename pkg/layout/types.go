package layout

import (
	"math"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/google/uuid"
)

// Rect is a border-box in page coordinates. Width and Height are never
// negative.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// SizeKind distinguishes a definite available size from the sentinel
// constraints used for intrinsic sizing. The sentinels stand in for an
// infinite size so no arithmetic ever sees +Inf or NaN.
type SizeKind uint8

const (
	SizeDefinite SizeKind = iota
	SizeIndefinite
	SizeMinContent
	SizeMaxContent
)

// AvailableSize is a size constraint along one axis.
type AvailableSize struct {
	Kind  SizeKind
	Value float64
}

// Definite returns a definite size, floored at zero.
func Definite(v float64) AvailableSize {
	return AvailableSize{Kind: SizeDefinite, Value: math.Max(0, v)}
}

var (
	Indefinite = AvailableSize{Kind: SizeIndefinite}
	MinContent = AvailableSize{Kind: SizeMinContent}
	MaxContent = AvailableSize{Kind: SizeMaxContent}
)

func (a AvailableSize) IsDefinite() bool { return a.Kind == SizeDefinite }

// Or returns the definite value, or fallback for the sentinels.
func (a AvailableSize) Or(fallback float64) float64 {
	if a.Kind == SizeDefinite {
		return a.Value
	}
	return fallback
}

// Result is the output of one layout pass.
type Result struct {
	PassID uuid.UUID
	// Rects holds one border-box per node in the tree, text nodes included.
	Rects map[boxtree.NodeKey]Rect
	// PaintOrder lists, for each flex container, its children in
	// order-modified document order. Other containers paint in document order
	// and have no entry.
	PaintOrder map[boxtree.NodeKey][]boxtree.NodeKey
	// Dirty is the reduced dirty set the pass was started for.
	Dirty []boxtree.NodeKey
}

// Rect returns the rect of key.
func (r *Result) Rect(key boxtree.NodeKey) (Rect, bool) {
	rect, ok := r.Rects[key]
	return rect, ok
}

// ChildrenInPaintOrder returns key's children in the order a painter should
// visit them.
func (r *Result) ChildrenInPaintOrder(t *boxtree.Tree, key boxtree.NodeKey) []boxtree.NodeKey {
	if order, ok := r.PaintOrder[key]; ok {
		return order
	}
	return t.Children(key)
}
