package js

import (
	"github.com/dop251/goja"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/layouter"
)

// appendChildFn implements node.appendChild(child).
func (e *elementAccessor) appendChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'appendChild': 1 argument required"))
		}
		child := e.ctx.mustUnwrap(call.Arguments[0], "appendChild")
		e.ctx.insert(e.key, child, -1)
		return e.ctx.proxy(child)
	}
}

// removeChildFn implements node.removeChild(child).
func (e *elementAccessor) removeChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': 1 argument required"))
		}
		child := e.ctx.mustUnwrap(call.Arguments[0], "removeChild")
		if p, ok := e.ctx.parent(child); !ok || p != e.key {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': The node to be removed is not a child of this node"))
		}
		e.ctx.detach(child)
		return e.ctx.proxy(child)
	}
}

// insertBeforeFn implements node.insertBefore(newNode, refNode). A null
// reference appends.
func (e *elementAccessor) insertBeforeFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'insertBefore': 1 argument required"))
		}
		child := e.ctx.mustUnwrap(call.Arguments[0], "insertBefore")
		pos := -1
		if ref := call.Argument(1); !goja.IsNull(ref) && !goja.IsUndefined(ref) {
			refKey := e.ctx.mustUnwrap(ref, "insertBefore")
			pos = indexWithout(e.ctx.children(e.key), refKey, child)
			if pos < 0 {
				panic(e.ctx.vm.NewTypeError("Failed to execute 'insertBefore': The node before which the new node is to be inserted is not a child of this node"))
			}
		}
		e.ctx.insert(e.key, child, pos)
		return e.ctx.proxy(child)
	}
}

func (e *elementAccessor) removeFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if _, ok := e.ctx.parent(e.key); ok {
			e.ctx.detach(e.key)
		}
		return goja.Undefined()
	}
}

// setTextContent replaces all children with a single text node.
func (ctx *domContext) setTextContent(key boxtree.NodeKey, text string) {
	for _, c := range append([]boxtree.NodeKey(nil), ctx.children(key)...) {
		ctx.detach(c)
	}
	if text != "" {
		ctx.insert(key, ctx.create(boxtree.KindText, "", text), -1)
	}
}

// insert places child under parent at pos, moving it if it already has a
// parent.
func (ctx *domContext) insert(parent, child boxtree.NodeKey, pos int) {
	for p, ok := parent, true; ok; p, ok = ctx.parent(p) {
		if p == child {
			panic(ctx.vm.NewTypeError("The new child element contains the parent."))
		}
	}

	if d, ok := ctx.detached[parent]; ok {
		if !ctx.isDetached(child) {
			ctx.detach(child)
		}
		ctx.unlinkDetached(child)
		ctx.detached[child].parent = parent
		d.children = insertAt(d.children, child, pos)
		return
	}

	if !ctx.isDetached(child) {
		// The tree moves live nodes itself.
		if ctx.kind(child) == boxtree.KindText {
			ctx.apply(layouter.InsertText{Parent: parent, Node: child, Text: ctx.text(child), Pos: pos})
		} else {
			ctx.apply(layouter.InsertElement{Parent: parent, Node: child, Tag: ctx.tag(child), Pos: pos})
		}
		return
	}
	ctx.unlinkDetached(child)
	ctx.flush(parent, child, pos)
}

// flush inserts a detached subtree into the document, keeping its keys.
func (ctx *domContext) flush(parent, key boxtree.NodeKey, pos int) {
	d := ctx.detached[key]
	delete(ctx.detached, key)
	if d.kind == boxtree.KindText {
		ctx.apply(layouter.InsertText{Parent: parent, Node: key, Text: d.text, Pos: pos})
		return
	}
	ctx.apply(layouter.InsertElement{Parent: parent, Node: key, Tag: d.tag, Pos: pos})
	for _, name := range sortedAttrs(d.attrs) {
		ctx.apply(layouter.SetAttr{Node: key, Name: name, Value: d.attrs[name]})
	}
	for _, c := range d.children {
		ctx.flush(key, c, -1)
	}
}

// detach takes child out of its parent. A live subtree is captured as
// detached nodes first so the script can insert it again.
func (ctx *domContext) detach(child boxtree.NodeKey) {
	if ctx.isDetached(child) {
		ctx.unlinkDetached(child)
		return
	}
	if !ctx.tree().Has(child) {
		return
	}
	ctx.capture(child, boxtree.NoParent)
	ctx.apply(layouter.RemoveNode{Node: child})
}

func (ctx *domContext) capture(key, parent boxtree.NodeKey) {
	n := ctx.tree().Node(key)
	d := &detachedNode{
		kind:     n.Kind,
		tag:      n.Tag,
		text:     n.Text,
		attrs:    make(map[string]string, len(n.Attrs)),
		parent:   parent,
		children: append([]boxtree.NodeKey(nil), n.Children...),
	}
	for k, v := range n.Attrs {
		d.attrs[k] = v
	}
	ctx.detached[key] = d
	for _, c := range n.Children {
		ctx.capture(c, key)
	}
}

// unlinkDetached removes a detached node from its detached parent's list.
func (ctx *domContext) unlinkDetached(key boxtree.NodeKey) {
	d, ok := ctx.detached[key]
	if !ok || d.parent == boxtree.NoParent {
		return
	}
	if p, ok := ctx.detached[d.parent]; ok {
		p.children = removeKey(p.children, key)
	}
	d.parent = boxtree.NoParent
}

func insertAt(keys []boxtree.NodeKey, key boxtree.NodeKey, pos int) []boxtree.NodeKey {
	if pos < 0 || pos >= len(keys) {
		return append(keys, key)
	}
	keys = append(keys, 0)
	copy(keys[pos+1:], keys[pos:])
	keys[pos] = key
	return keys
}

func removeKey(keys []boxtree.NodeKey, key boxtree.NodeKey) []boxtree.NodeKey {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

// indexWithout is the index of ref in keys once skip has been removed.
func indexWithout(keys []boxtree.NodeKey, ref, skip boxtree.NodeKey) int {
	i := 0
	for _, k := range keys {
		if k == skip {
			continue
		}
		if k == ref {
			return i
		}
		i++
	}
	return -1
}
