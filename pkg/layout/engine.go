// Package layout turns a box tree with computed styles into border-box
// rectangles: block flow with margin collapsing, floats and clearance, and
// single-line flexbox.
package layout

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/text"
)

const (
	DefaultViewportWidth  = 800.0
	DefaultViewportHeight = 600.0
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for pass diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMeasurer sets the text measurer used for text runs and intrinsic sizes.
func WithMeasurer(m text.Measurer) Option {
	return func(e *Engine) {
		if m != nil {
			e.measurer = m
		}
	}
}

// WithViewport sets the initial containing block.
func WithViewport(width, height float64) Option {
	return func(e *Engine) {
		e.viewportWidth = nonNegative(width)
		e.viewportHeight = nonNegative(height)
	}
}

// Engine lays out one tree. It holds no state between passes: every call to
// Layout recomputes geometry from the tree's current styles and structure.
type Engine struct {
	tree           *boxtree.Tree
	logger         *zap.Logger
	measurer       text.Measurer
	viewportWidth  float64
	viewportHeight float64
}

func NewEngine(tree *boxtree.Tree, opts ...Option) *Engine {
	e := &Engine{
		tree:           tree,
		logger:         zap.NewNop(),
		measurer:       text.DefaultMeasurer(),
		viewportWidth:  DefaultViewportWidth,
		viewportHeight: DefaultViewportHeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tree returns the tree the engine reads.
func (e *Engine) Tree() *boxtree.Tree { return e.tree }

// Viewport returns the initial containing block size.
func (e *Engine) Viewport() (width, height float64) {
	return e.viewportWidth, e.viewportHeight
}

// Layout runs one full pass. The dirty set only scopes diagnostics; the
// result is a pure function of the tree, so an unchanged tree always yields
// identical rects.
func (e *Engine) Layout(dirty boxtree.DirtySet) *Result {
	start := time.Now()
	p := newPass(e)
	roots := dirty.Roots(e.tree)

	p.layoutDocument()

	res := &Result{
		PassID:     uuid.New(),
		Rects:      p.rects,
		PaintOrder: p.paintOrder,
		Dirty:      roots,
	}
	e.logger.Debug("layout pass complete",
		zap.String("pass_id", res.PassID.String()),
		zap.Int("nodes", len(res.Rects)),
		zap.Int("dirty_roots", len(roots)),
		zap.Duration("took", time.Since(start)),
	)
	return res
}

// pass holds the scratch state of one Layout call.
type pass struct {
	tree     *boxtree.Tree
	logger   *zap.Logger
	measurer text.Measurer

	viewportWidth  float64
	viewportHeight float64

	rects      map[boxtree.NodeKey]Rect
	paintOrder map[boxtree.NodeKey][]boxtree.NodeKey
	intrinsic  map[boxtree.NodeKey]intrinsicSizes
	measured   map[measureKey]float64

	// measureLayouts counts measuring layouts that missed the memo.
	measureLayouts int
}

func newPass(e *Engine) *pass {
	return &pass{
		tree:           e.tree,
		logger:         e.logger,
		measurer:       e.measurer,
		viewportWidth:  e.viewportWidth,
		viewportHeight: e.viewportHeight,
		rects:          make(map[boxtree.NodeKey]Rect, e.tree.Len()),
		paintOrder:     make(map[boxtree.NodeKey][]boxtree.NodeKey),
		intrinsic:      make(map[boxtree.NodeKey]intrinsicSizes),
		measured:       make(map[measureKey]float64),
	}
}

// layoutDocument lays the document node out as the initial containing block
// and root block formatting context.
func (p *pass) layoutDocument() {
	ctx := blockContext{
		width:    p.viewportWidth,
		cbHeight: Definite(p.viewportHeight),
		tracker:  NewFloatTracker(),
		bfcRoot:  true,
	}
	height, _ := p.layoutChildren(boxtree.Root, ctx)
	p.setRect(boxtree.Root, Rect{Width: p.viewportWidth, Height: height})
}

func (p *pass) setRect(key boxtree.NodeKey, r Rect) {
	r.Width = nonNegative(r.Width)
	r.Height = nonNegative(r.Height)
	p.rects[key] = r
}

// translateSubtree moves key and every descendant.
func (p *pass) translateSubtree(key boxtree.NodeKey, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	p.tree.Walk(key, func(n *boxtree.Node) bool {
		if r, ok := p.rects[n.Key]; ok {
			p.rects[n.Key] = r.Translate(dx, dy)
		}
		return true
	})
}

// hideSubtree gives a display:none subtree zero-sized rects at (x, y).
func (p *pass) hideSubtree(key boxtree.NodeKey, x, y float64) {
	p.tree.Walk(key, func(n *boxtree.Node) bool {
		p.rects[n.Key] = Rect{X: x, Y: y}
		return true
	})
}
