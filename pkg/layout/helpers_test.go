package layout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/css"
)

// builder is a small fixture DSL: elements take an inline style string.
type builder struct {
	tree *boxtree.Tree
}

func newBuilder() *builder {
	return &builder{tree: boxtree.New()}
}

func (b *builder) div(parent boxtree.NodeKey, decl string) boxtree.NodeKey {
	return b.el(parent, "div", decl)
}

func (b *builder) el(parent boxtree.NodeKey, tag, decl string) boxtree.NodeKey {
	return b.tree.AppendElement(parent, tag, css.Compute(tag, css.ParseInlineStyle(decl)))
}

func (b *builder) text(parent boxtree.NodeKey, s string) boxtree.NodeKey {
	return b.tree.AppendText(parent, s)
}

func (b *builder) layout(t *testing.T, opts ...Option) *Result {
	t.Helper()
	opts = append([]Option{WithViewport(800, 600)}, opts...)
	res := NewEngine(b.tree, opts...).Layout(boxtree.NewDirtySet(boxtree.Root))
	require.NotNil(t, res)
	return res
}

func rectOf(t *testing.T, res *Result, key boxtree.NodeKey) Rect {
	t.Helper()
	r, ok := res.Rect(key)
	require.True(t, ok, "no rect for node %d", key)
	return r
}
