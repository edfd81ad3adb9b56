// Package layouter mirrors a stream of DOM updates into a box tree, keeps
// computed styles current and runs layout passes over the accumulated dirty
// set.
package layouter

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/css"
	"github.com/BigBadE/valor-sub000/pkg/layout"
)

// placeholderTag is used for parents referenced before they were inserted.
const placeholderTag = "div"

type Option func(*Layouter)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Layouter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithStylesheets installs sheets that apply before any <style> element in
// the document, typically a user-agent or reset sheet.
func WithStylesheets(sheets ...*css.Stylesheet) Option {
	return func(l *Layouter) {
		l.baseSheets = append(l.baseSheets, sheets...)
	}
}

// WithEngineOptions forwards options to the layout engine.
func WithEngineOptions(opts ...layout.Option) Option {
	return func(l *Layouter) {
		l.engineOpts = append(l.engineOpts, opts...)
	}
}

// Layouter is not safe for concurrent use.
type Layouter struct {
	tree       *boxtree.Tree
	engine     *layout.Engine
	logger     *zap.Logger
	engineOpts []layout.Option

	baseSheets  []*css.Stylesheet
	sheets      []*css.Stylesheet
	sheetsStale bool

	dirty   boxtree.DirtySet
	last    *layout.Result
	ended   bool
	applied int
}

func New(opts ...Option) *Layouter {
	l := &Layouter{
		tree:   boxtree.New(),
		logger: zap.NewNop(),
		dirty:  boxtree.NewDirtySet(),
	}
	for _, opt := range opts {
		opt(l)
	}
	engineOpts := append([]layout.Option{layout.WithLogger(l.logger)}, l.engineOpts...)
	l.engine = layout.NewEngine(l.tree, engineOpts...)
	l.sheets = l.baseSheets
	return l
}

// Tree exposes the mirrored tree for read-only use.
func (l *Layouter) Tree() *boxtree.Tree { return l.tree }

// Ended reports whether EndOfDocument has been applied.
func (l *Layouter) Ended() bool { return l.ended }

// Dirty returns the changes accumulated since the last pass.
func (l *Layouter) Dirty() boxtree.DirtySet { return l.dirty }

// UpdatesApplied counts every update applied so far.
func (l *Layouter) UpdatesApplied() int { return l.applied }

// Apply applies updates in order and stops at the first failure.
func (l *Layouter) Apply(updates ...Update) error {
	for _, u := range updates {
		if err := l.ApplyUpdate(u); err != nil {
			return err
		}
	}
	return nil
}

// ApplyUpdate applies one update to the tree and records what became dirty.
func (l *Layouter) ApplyUpdate(u Update) error {
	l.applied++
	switch u := u.(type) {
	case InsertElement:
		if err := l.ensureParent(u.Parent); err != nil {
			return err
		}
		if err := l.tree.InsertElement(u.Parent, u.Node, u.Tag, u.Pos); err != nil {
			return fmt.Errorf("apply %s: %w", u, err)
		}
		if isStyleElement(l.tree, u.Node) {
			l.sheetsStale = true
		}
		l.markDirty(u.Node)
	case InsertText:
		if err := l.ensureParent(u.Parent); err != nil {
			return err
		}
		if err := l.tree.InsertText(u.Parent, u.Node, u.Text, u.Pos); err != nil {
			return fmt.Errorf("apply %s: %w", u, err)
		}
		if isStyleElement(l.tree, u.Parent) {
			l.sheetsStale = true
		}
		l.markDirty(u.Node)
	case SetAttr:
		if err := l.tree.SetAttr(u.Node, u.Name, u.Value); err != nil {
			return fmt.Errorf("apply %s: %w", u, err)
		}
		l.markDirty(u.Node)
	case RemoveNode:
		if !l.tree.Has(u.Node) {
			l.logger.Debug("ignoring removal of unknown node", zap.Uint32("node", uint32(u.Node)))
			return nil
		}
		parent, _ := l.tree.Parent(u.Node)
		if removesStyle(l.tree, u.Node) {
			l.sheetsStale = true
		}
		if err := l.tree.Remove(u.Node); err != nil {
			return fmt.Errorf("apply %s: %w", u, err)
		}
		l.markDirty(parent)
	case EndOfDocument:
		l.ended = true
	default:
		return fmt.Errorf("apply: unsupported update %T", u)
	}
	return nil
}

// ensureParent inserts a placeholder element under the root when an update
// names a parent that has not arrived yet.
func (l *Layouter) ensureParent(parent boxtree.NodeKey) error {
	if l.tree.Has(parent) {
		return nil
	}
	l.logger.Debug("creating placeholder parent", zap.Uint32("node", uint32(parent)))
	if err := l.tree.InsertElement(boxtree.Root, parent, placeholderTag, -1); err != nil {
		return fmt.Errorf("placeholder %d: %w", parent, err)
	}
	l.markDirty(parent)
	return nil
}

func (l *Layouter) markDirty(key boxtree.NodeKey) {
	l.dirty = l.dirty.With(key)
}

// Layout restyles the dirty subtrees and runs a pass. With nothing dirty the
// previous result is returned unchanged.
func (l *Layouter) Layout() *layout.Result {
	if l.last != nil && l.dirty.Empty() && !l.sheetsStale {
		return l.last
	}
	if l.sheetsStale {
		l.reloadSheets()
	}
	roots := l.dirty.Roots(l.tree)
	for _, r := range roots {
		l.restyle(r)
	}
	l.last = l.engine.Layout(l.dirty)
	l.logger.Debug("layout refreshed",
		zap.String("pass_id", l.last.PassID.String()),
		zap.Int("restyled_roots", len(roots)),
		zap.Int("updates_applied", l.applied))
	l.dirty = boxtree.NewDirtySet()
	return l.last
}

// reloadSheets rebuilds the author sheets from every <style> element in
// document order. A new sheet can restyle anything, so the whole document
// becomes dirty.
func (l *Layouter) reloadSheets() {
	sheets := append([]*css.Stylesheet(nil), l.baseSheets...)
	l.tree.Walk(boxtree.Root, func(n *boxtree.Node) bool {
		if n.Kind == boxtree.KindElement && n.Tag == "style" {
			sheets = append(sheets, css.ParseStylesheet(textContent(l.tree, n.Key)))
			return false
		}
		return true
	})
	l.sheets = sheets
	l.sheetsStale = false
	l.dirty = l.dirty.With(boxtree.Root)
}

// restyle recomputes the styles of key's subtree from its attributes.
func (l *Layouter) restyle(key boxtree.NodeKey) {
	l.tree.Walk(key, func(n *boxtree.Node) bool {
		if n.Kind != boxtree.KindElement {
			return true
		}
		el := css.Element{
			Tag:     n.Tag,
			ID:      n.ID(),
			Classes: css.ClassList(n.Attrs["class"]),
			Inline:  n.Attrs["style"],
		}
		n.Style = css.ComputeElement(el, l.sheets)
		return true
	})
}

func isStyleElement(t *boxtree.Tree, key boxtree.NodeKey) bool {
	n := t.Node(key)
	return n != nil && n.Kind == boxtree.KindElement && n.Tag == "style"
}

// removesStyle reports whether removing key drops a <style> element or part
// of one.
func removesStyle(t *boxtree.Tree, key boxtree.NodeKey) bool {
	found := false
	t.Walk(key, func(n *boxtree.Node) bool {
		if n.Kind == boxtree.KindElement && n.Tag == "style" {
			found = true
		}
		return !found
	})
	if found {
		return true
	}
	for _, a := range t.Ancestors(key) {
		if isStyleElement(t, a) {
			return true
		}
	}
	return false
}

func textContent(t *boxtree.Tree, key boxtree.NodeKey) string {
	var b strings.Builder
	t.Walk(key, func(n *boxtree.Node) bool {
		if n.Kind == boxtree.KindText {
			b.WriteString(n.Text)
		}
		return true
	})
	return b.String()
}
