package boxtree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BigBadE/valor-sub000/pkg/css"
)

func TestAppendAndWalk(t *testing.T) {
	tree := New()
	body := tree.AppendElement(Root, "BODY", css.Block())
	a := tree.AppendElement(body, "div", css.Block())
	txt := tree.AppendText(a, "hi")
	b := tree.AppendElement(body, "div", css.Block())

	assert.Equal(t, 5, tree.Len())
	assert.Equal(t, "body", tree.Node(body).Tag)
	assert.Equal(t, []NodeKey{a, b}, tree.Children(body))

	var order []NodeKey
	tree.Walk(Root, func(n *Node) bool {
		order = append(order, n.Key)
		return true
	})
	assert.Equal(t, []NodeKey{Root, body, a, txt, b}, order)

	order = order[:0]
	tree.Walk(body, func(n *Node) bool {
		order = append(order, n.Key)
		return n.Key != a
	})
	assert.Equal(t, []NodeKey{body, a, b}, order, "returning false skips children")

	assert.Equal(t, []NodeKey{a, body, Root}, tree.Ancestors(txt))
	_, ok := tree.Parent(Root)
	assert.False(t, ok)
}

func TestInsertAtPositionAndMove(t *testing.T) {
	tree := New()
	require.NoError(t, tree.InsertElement(Root, 10, "div", -1))
	require.NoError(t, tree.InsertElement(Root, 11, "div", 0))
	require.NoError(t, tree.InsertText(Root, 12, "x", 1))
	assert.Equal(t, []NodeKey{11, 12, 10}, tree.Children(Root))

	require.NoError(t, tree.InsertElement(11, 13, "span", 0))
	require.NoError(t, tree.SetAttr(13, "ID", "moved"))
	require.NoError(t, tree.InsertElement(10, 13, "span", 0))

	assert.Empty(t, tree.Children(11))
	assert.Equal(t, []NodeKey{13}, tree.Children(10))
	key, ok := tree.FindByID("moved")
	require.True(t, ok)
	assert.Equal(t, NodeKey(13), key)
	assert.Equal(t, css.DisplayInline, tree.Style(13).Display)

	next := tree.AppendElement(Root, "p", css.Block())
	assert.Equal(t, NodeKey(14), next, "generated keys never collide with inserted ones")
}

func TestInsertErrors(t *testing.T) {
	tree := New()
	err := tree.InsertElement(99, 1, "div", 0)
	assert.True(t, errors.Is(err, ErrUnknownNode))
	assert.Error(t, tree.InsertElement(Root, Root, "div", 0))
	assert.True(t, errors.Is(tree.SetAttr(42, "id", "x"), ErrUnknownNode))
	assert.True(t, errors.Is(tree.SetStyle(42, css.Block()), ErrUnknownNode))
}

func TestRemoveDropsSubtree(t *testing.T) {
	tree := New()
	outer := tree.AppendElement(Root, "div", css.Block())
	inner := tree.AppendElement(outer, "div", css.Block())
	tree.AppendText(inner, "gone")

	require.NoError(t, tree.Remove(outer))
	assert.Equal(t, 1, tree.Len())
	assert.False(t, tree.Has(inner))
	assert.Empty(t, tree.Children(Root))
	assert.Error(t, tree.Remove(outer))
	assert.Error(t, tree.Remove(Root))
	assert.Equal(t, css.InitialStyle(), tree.Style(inner))
}

func TestCloneIsDeep(t *testing.T) {
	tree := New()
	div := tree.AppendElement(Root, "div", css.Block())
	require.NoError(t, tree.SetAttr(div, "id", "a"))

	cp := tree.Clone()
	require.NoError(t, tree.SetAttr(div, "id", "b"))
	tree.AppendElement(div, "p", css.Block())

	assert.Equal(t, "a", cp.Node(div).ID())
	assert.Empty(t, cp.Children(div))
	_, ok := cp.FindByTag("P")
	assert.False(t, ok)
	_, ok = tree.FindByTag("P")
	assert.True(t, ok)
}

func TestWhitespaceText(t *testing.T) {
	tree := New()
	ws := tree.AppendText(Root, " \n\t ")
	word := tree.AppendText(Root, " a ")
	assert.True(t, tree.Node(ws).IsWhitespace())
	assert.False(t, tree.Node(word).IsWhitespace())
	assert.Equal(t, "text", tree.Node(word).Kind.String())
}

func TestDirtySet(t *testing.T) {
	tree := New()
	a := tree.AppendElement(Root, "div", css.Block())
	b := tree.AppendElement(a, "div", css.Block())
	c := tree.AppendElement(Root, "div", css.Block())

	d := NewDirtySet(b)
	d2 := d.With(a, 77)
	assert.Equal(t, 1, d.Len(), "With does not mutate the receiver")
	assert.Equal(t, []NodeKey{a, b, 77}, d2.Keys())
	assert.Equal(t, []NodeKey{a}, d2.Roots(tree), "descendants and dead keys are dropped")

	u := NewDirtySet(c).Union(d)
	assert.Equal(t, []NodeKey{b, c}, u.Roots(tree))
	assert.True(t, NewDirtySet().Empty())
	assert.Empty(t, NewDirtySet().Roots(tree))
}
