// Package render paints a laid-out tree with gg: backgrounds, gradients,
// borders and text runs, plus optional debug outlines around every box.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/css"
	"github.com/BigBadE/valor-sub000/pkg/layout"
	"github.com/BigBadE/valor-sub000/pkg/text"
)

type Option func(*Renderer)

// WithBackground sets the canvas colour.
func WithBackground(c css.Color) Option {
	return func(r *Renderer) { r.background = c }
}

// WithOutlines strokes a thin outline around every element box.
func WithOutlines(on bool) Option {
	return func(r *Renderer) { r.outlines = on }
}

type Renderer struct {
	context    *gg.Context
	background css.Color
	outlines   bool
}

func NewRenderer(width, height int, opts ...Option) *Renderer {
	r := &Renderer{
		context:    gg.NewContext(width, height),
		background: css.Color{R: 255, G: 255, B: 255, A: 1},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.context.SetFontFace(basicfont.Face7x13)
	return r
}

// Render paints the tree in document order, visiting flex children in
// order-modified order.
func (r *Renderer) Render(t *boxtree.Tree, res *layout.Result) {
	r.setColor(r.background)
	r.context.Clear()
	r.paint(t, res, boxtree.Root)
}

func (r *Renderer) paint(t *boxtree.Tree, res *layout.Result, key boxtree.NodeKey) {
	n := t.Node(key)
	if n == nil || n.Style.Display == css.DisplayNone {
		return
	}
	if rect, ok := res.Rect(key); ok {
		switch n.Kind {
		case boxtree.KindElement:
			r.drawBox(n.Style, rect)
		case boxtree.KindText:
			r.drawText(n.Text, rect)
		}
	}
	for _, c := range res.ChildrenInPaintOrder(t, key) {
		r.paint(t, res, c)
	}
}

func (r *Renderer) drawBox(style css.ComputedStyle, rect layout.Rect) {
	if rect.Width <= 0 && rect.Height <= 0 {
		return
	}
	if style.BackgroundColor.A > 0 {
		r.setColor(style.BackgroundColor)
		r.context.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
		r.context.Fill()
	}
	if style.BackgroundImage != nil {
		r.drawGradient(style.BackgroundImage, rect)
	}
	r.drawBorder(style, rect)
	if r.outlines {
		r.context.SetRGBA(1, 0, 1, 0.6)
		r.context.SetLineWidth(1)
		r.context.DrawRectangle(rect.X+0.5, rect.Y+0.5, math.Max(rect.Width-1, 0), math.Max(rect.Height-1, 0))
		r.context.Stroke()
	}
}

// drawBorder draws each side as a trapezoid so corners miter.
func (r *Renderer) drawBorder(style css.ComputedStyle, rect layout.Rect) {
	b := style.Border
	if b.Top <= 0 && b.Right <= 0 && b.Bottom <= 0 && b.Left <= 0 {
		return
	}
	if style.BorderColor.A <= 0 {
		return
	}
	r.setColor(style.BorderColor)

	outerLeft, outerTop := rect.X, rect.Y
	outerRight, outerBottom := rect.Right(), rect.Bottom()
	innerLeft, innerTop := outerLeft+b.Left, outerTop+b.Top
	innerRight, innerBottom := outerRight-b.Right, outerBottom-b.Bottom

	sides := []struct {
		width float64
		quad  [4][2]float64
	}{
		{b.Top, [4][2]float64{{outerLeft, outerTop}, {outerRight, outerTop}, {innerRight, innerTop}, {innerLeft, innerTop}}},
		{b.Right, [4][2]float64{{outerRight, outerTop}, {outerRight, outerBottom}, {innerRight, innerBottom}, {innerRight, innerTop}}},
		{b.Bottom, [4][2]float64{{outerLeft, outerBottom}, {outerRight, outerBottom}, {innerRight, innerBottom}, {innerLeft, innerBottom}}},
		{b.Left, [4][2]float64{{outerLeft, outerTop}, {outerLeft, outerBottom}, {innerLeft, innerBottom}, {innerLeft, innerTop}}},
	}
	for _, s := range sides {
		if s.width <= 0 {
			continue
		}
		r.context.MoveTo(s.quad[0][0], s.quad[0][1])
		for _, p := range s.quad[1:] {
			r.context.LineTo(p[0], p[1])
		}
		r.context.ClosePath()
		r.context.Fill()
	}
}

// drawGradient fills the border box with a linear gradient. The gradient
// line passes through the box centre at the gradient angle.
func (r *Renderer) drawGradient(g *css.Gradient, rect layout.Rect) {
	stops := g.Resolve(rect.Width, rect.Height)
	if len(stops) == 0 {
		return
	}
	rad := g.Angle() * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	half := g.Length(rect.Width, rect.Height) / 2
	cx, cy := rect.X+rect.Width/2, rect.Y+rect.Height/2

	grad := gg.NewLinearGradient(cx-dx*half, cy-dy*half, cx+dx*half, cy+dy*half)
	for _, s := range stops {
		grad.AddColorStop(s.Offset, toRGBA(s.Color))
	}
	r.context.SetFillStyle(grad)
	r.context.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
	r.context.Fill()
}

func (r *Renderer) drawText(s string, rect layout.Rect) {
	s = text.CollapseWhitespace(s)
	if s == "" {
		return
	}
	r.context.SetRGB(0, 0, 0)
	r.context.DrawStringAnchored(s, rect.X, rect.Y+rect.Height/2, 0, 0.5)
}

func (r *Renderer) setColor(c css.Color) {
	r.context.SetRGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, c.A)
}

// Image returns the canvas.
func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}

func toRGBA(c css.Color) color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(c.A * 255))}
}
