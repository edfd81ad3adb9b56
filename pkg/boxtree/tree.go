// Package boxtree holds the box tree the layout engine reads: an arena of
// nodes addressed by stable integer keys, each carrying its computed style
// and explicit parent/children key lists.
package boxtree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BigBadE/valor-sub000/pkg/css"
)

// NodeKey addresses a node in the arena. Keys are never reused within a tree.
type NodeKey uint32

// Root is the document node every tree starts with.
const Root NodeKey = 0

// NoParent marks the root's parent slot.
const NoParent NodeKey = ^NodeKey(0)

var ErrUnknownNode = errors.New("unknown node")

type Kind uint8

const (
	KindDocument Kind = iota
	KindElement
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

type Node struct {
	Key      NodeKey
	Kind     Kind
	Tag      string
	Text     string
	Attrs    map[string]string
	Style    css.ComputedStyle
	Parent   NodeKey
	Children []NodeKey
}

// ID returns the id attribute, or "".
func (n *Node) ID() string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs["id"]
}

// IsWhitespace reports a text node that only holds collapsible whitespace.
func (n *Node) IsWhitespace() bool {
	return n.Kind == KindText && strings.TrimSpace(n.Text) == ""
}

// Tree is the arena. The zero value is not usable; call New.
type Tree struct {
	nodes []*Node
	next  NodeKey
}

// New returns a tree holding only the document node.
func New() *Tree {
	t := &Tree{}
	t.put(&Node{Key: Root, Kind: KindDocument, Parent: NoParent, Style: css.Block()})
	t.next = Root + 1
	return t
}

func (t *Tree) put(n *Node) {
	for int(n.Key) >= len(t.nodes) {
		t.nodes = append(t.nodes, nil)
	}
	t.nodes[n.Key] = n
	if n.Key >= t.next {
		t.next = n.Key + 1
	}
}

// Node returns the node for key, or nil.
func (t *Tree) Node(key NodeKey) *Node {
	if int(key) >= len(t.nodes) {
		return nil
	}
	return t.nodes[key]
}

// Has reports whether key is live.
func (t *Tree) Has(key NodeKey) bool {
	return t.Node(key) != nil
}

// Children returns the child keys of key in document order.
func (t *Tree) Children(key NodeKey) []NodeKey {
	if n := t.Node(key); n != nil {
		return n.Children
	}
	return nil
}

// Parent returns the parent key; ok is false for the root and unknown keys.
func (t *Tree) Parent(key NodeKey) (NodeKey, bool) {
	n := t.Node(key)
	if n == nil || n.Parent == NoParent {
		return NoParent, false
	}
	return n.Parent, true
}

// Style returns the computed style of key; unknown keys get the initial style.
func (t *Tree) Style(key NodeKey) css.ComputedStyle {
	if n := t.Node(key); n != nil {
		return n.Style
	}
	return css.InitialStyle()
}

// Len counts live nodes.
func (t *Tree) Len() int {
	count := 0
	for _, n := range t.nodes {
		if n != nil {
			count++
		}
	}
	return count
}

// NextKey is the key AppendElement and AppendText would use next.
func (t *Tree) NextKey() NodeKey { return t.next }

// AppendElement creates an element under parent and returns its key.
func (t *Tree) AppendElement(parent NodeKey, tag string, style css.ComputedStyle) NodeKey {
	key := t.next
	// Appending under a known parent cannot fail.
	_ = t.InsertElement(parent, key, tag, -1)
	t.nodes[key].Style = style
	return key
}

// AppendText creates a text node under parent and returns its key.
func (t *Tree) AppendText(parent NodeKey, text string) NodeKey {
	key := t.next
	_ = t.InsertText(parent, key, text, -1)
	return key
}

// InsertElement places an element with an externally chosen key at pos in
// parent's child list (pos < 0 or past the end appends). Re-inserting an
// existing key moves it.
func (t *Tree) InsertElement(parent, key NodeKey, tag string, pos int) error {
	style := css.Compute(tag, nil)
	return t.insert(parent, &Node{Key: key, Kind: KindElement, Tag: strings.ToLower(tag), Style: style}, pos)
}

// InsertText is InsertElement for text nodes.
func (t *Tree) InsertText(parent, key NodeKey, text string, pos int) error {
	return t.insert(parent, &Node{Key: key, Kind: KindText, Text: text, Style: css.InitialStyle()}, pos)
}

func (t *Tree) insert(parent NodeKey, n *Node, pos int) error {
	p := t.Node(parent)
	if p == nil {
		return fmt.Errorf("insert %d under %d: %w", n.Key, parent, ErrUnknownNode)
	}
	if n.Key == Root || n.Key == NoParent {
		return fmt.Errorf("insert %d: reserved key", n.Key)
	}
	if old := t.Node(n.Key); old != nil {
		t.detach(n.Key)
		n.Attrs = old.Attrs
		n.Children = old.Children
		if n.Kind == old.Kind && n.Kind == KindElement && n.Tag == old.Tag {
			n.Style = old.Style
		}
	}
	n.Parent = parent
	t.put(n)
	if pos < 0 || pos >= len(p.Children) {
		p.Children = append(p.Children, n.Key)
	} else {
		p.Children = append(p.Children, 0)
		copy(p.Children[pos+1:], p.Children[pos:])
		p.Children[pos] = n.Key
	}
	return nil
}

func (t *Tree) detach(key NodeKey) {
	n := t.Node(key)
	if n == nil || n.Parent == NoParent {
		return
	}
	p := t.Node(n.Parent)
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == key {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			return
		}
	}
}

// Remove deletes key and its whole subtree.
func (t *Tree) Remove(key NodeKey) error {
	if key == Root {
		return fmt.Errorf("remove: cannot remove the document node")
	}
	if t.Node(key) == nil {
		return fmt.Errorf("remove %d: %w", key, ErrUnknownNode)
	}
	t.detach(key)
	t.drop(key)
	return nil
}

func (t *Tree) drop(key NodeKey) {
	n := t.Node(key)
	if n == nil {
		return
	}
	for _, c := range n.Children {
		t.drop(c)
	}
	t.nodes[key] = nil
}

// SetAttr sets an attribute on an element.
func (t *Tree) SetAttr(key NodeKey, name, value string) error {
	n := t.Node(key)
	if n == nil {
		return fmt.Errorf("set %s on %d: %w", name, key, ErrUnknownNode)
	}
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[strings.ToLower(name)] = value
	return nil
}

// SetStyle replaces the computed style of key.
func (t *Tree) SetStyle(key NodeKey, style css.ComputedStyle) error {
	n := t.Node(key)
	if n == nil {
		return fmt.Errorf("set style on %d: %w", key, ErrUnknownNode)
	}
	n.Style = style
	return nil
}

// Walk visits key and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(key NodeKey, fn func(n *Node) bool) {
	n := t.Node(key)
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		t.Walk(c, fn)
	}
}

// FindByID returns the first element in document order with the given id.
func (t *Tree) FindByID(id string) (NodeKey, bool) {
	found := NoParent
	t.Walk(Root, func(n *Node) bool {
		if found != NoParent {
			return false
		}
		if n.Kind == KindElement && n.ID() == id {
			found = n.Key
			return false
		}
		return true
	})
	return found, found != NoParent
}

// FindByTag returns the first element in document order with the given tag.
func (t *Tree) FindByTag(tag string) (NodeKey, bool) {
	tag = strings.ToLower(tag)
	found := NoParent
	t.Walk(Root, func(n *Node) bool {
		if found != NoParent {
			return false
		}
		if n.Kind == KindElement && n.Tag == tag {
			found = n.Key
			return false
		}
		return true
	})
	return found, found != NoParent
}

// Ancestors returns the keys from key's parent up to the root.
func (t *Tree) Ancestors(key NodeKey) []NodeKey {
	out := make([]NodeKey, 0)
	for p, ok := t.Parent(key); ok; p, ok = t.Parent(p) {
		out = append(out, p)
	}
	return out
}

// Clone returns a deep copy. Styles are values, so the copy shares nothing
// mutable with t.
func (t *Tree) Clone() *Tree {
	out := &Tree{nodes: make([]*Node, len(t.nodes)), next: t.next}
	for i, n := range t.nodes {
		if n == nil {
			continue
		}
		cp := *n
		cp.Children = append([]NodeKey(nil), n.Children...)
		if n.Attrs != nil {
			cp.Attrs = make(map[string]string, len(n.Attrs))
			for k, v := range n.Attrs {
				cp.Attrs[k] = v
			}
		}
		out.nodes[i] = &cp
	}
	return out
}
