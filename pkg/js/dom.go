package js

import (
	"sort"
	"strings"

	"github.com/dop251/goja"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/layouter"
)

// detachedNode is a node created by a script (or removed from the document)
// that is not in the tree. It is inserted with its key when appended.
type detachedNode struct {
	kind     boxtree.Kind
	tag      string
	text     string
	attrs    map[string]string
	parent   boxtree.NodeKey
	children []boxtree.NodeKey
}

// domContext holds shared state for DOM bindings within one engine. It keeps
// a key-to-proxy cache so the same JS object is returned for the same node,
// which === identity checks rely on.
type domContext struct {
	vm       *goja.Runtime
	doc      *layouter.Layouter
	cache    map[boxtree.NodeKey]*goja.Object
	keys     map[*goja.Object]boxtree.NodeKey
	detached map[boxtree.NodeKey]*detachedNode
	nextKey  boxtree.NodeKey
}

func newDOMContext(vm *goja.Runtime, doc *layouter.Layouter) *domContext {
	return &domContext{
		vm:       vm,
		doc:      doc,
		cache:    make(map[boxtree.NodeKey]*goja.Object),
		keys:     make(map[*goja.Object]boxtree.NodeKey),
		detached: make(map[boxtree.NodeKey]*detachedNode),
	}
}

func (ctx *domContext) tree() *boxtree.Tree { return ctx.doc.Tree() }

// registerDocument sets up the global `document` object.
func registerDocument(vm *goja.Runtime, doc *layouter.Layouter) *domContext {
	ctx := newDOMContext(vm, doc)

	docObj := vm.NewObject()
	docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		key, ok := ctx.tree().FindByID(call.Argument(0).String())
		if !ok {
			return goja.Null()
		}
		return ctx.proxy(key)
	})
	docObj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		return ctx.array(ctx.byTag(boxtree.Root, call.Argument(0).String()))
	})
	docObj.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		return ctx.array(ctx.byClass(boxtree.Root, call.Argument(0).String()))
	})
	docObj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'createElement' on 'Document': 1 argument required"))
		}
		return ctx.proxy(ctx.create(boxtree.KindElement, strings.ToLower(call.Arguments[0].String()), ""))
	})
	docObj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		text := ""
		if len(call.Arguments) > 0 {
			text = call.Arguments[0].String()
		}
		return ctx.proxy(ctx.create(boxtree.KindText, "", text))
	})
	registerQuerySelectors(ctx, docObj, boxtree.Root)

	for prop, tag := range map[string]string{"body": "body", "head": "head", "documentElement": "html"} {
		tag := tag
		docObj.DefineAccessorProperty(prop, vm.ToValue(func(goja.FunctionCall) goja.Value {
			key, ok := ctx.tree().FindByTag(tag)
			if !ok {
				return goja.Null()
			}
			return ctx.proxy(key)
		}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}

	vm.Set("document", docObj)
	return ctx
}

// allocKey returns a key no tree node or detached node uses.
func (ctx *domContext) allocKey() boxtree.NodeKey {
	key := ctx.tree().NextKey()
	if ctx.nextKey > key {
		key = ctx.nextKey
	}
	ctx.nextKey = key + 1
	return key
}

func (ctx *domContext) create(kind boxtree.Kind, tag, text string) boxtree.NodeKey {
	key := ctx.allocKey()
	ctx.detached[key] = &detachedNode{
		kind:   kind,
		tag:    tag,
		text:   text,
		attrs:  make(map[string]string),
		parent: boxtree.NoParent,
	}
	return key
}

// proxy returns the cached JS object wrapping key.
func (ctx *domContext) proxy(key boxtree.NodeKey) goja.Value {
	if v, ok := ctx.cache[key]; ok {
		return v
	}
	obj := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, key: key})
	ctx.cache[key] = obj
	ctx.keys[obj] = key
	return obj
}

// unwrap returns the node key behind a proxy.
func (ctx *domContext) unwrap(val goja.Value) (boxtree.NodeKey, bool) {
	obj, ok := val.(*goja.Object)
	if !ok {
		return 0, false
	}
	key, ok := ctx.keys[obj]
	return key, ok
}

func (ctx *domContext) mustUnwrap(val goja.Value, method string) boxtree.NodeKey {
	key, ok := ctx.unwrap(val)
	if !ok {
		panic(ctx.vm.NewTypeError("Failed to execute '" + method + "': parameter is not a Node"))
	}
	return key
}

func (ctx *domContext) array(keys []boxtree.NodeKey) goja.Value {
	items := make([]interface{}, len(keys))
	for i, k := range keys {
		items[i] = ctx.proxy(k)
	}
	return ctx.vm.NewArray(items...)
}

func (ctx *domContext) isDetached(key boxtree.NodeKey) bool {
	_, ok := ctx.detached[key]
	return ok
}

func (ctx *domContext) kind(key boxtree.NodeKey) boxtree.Kind {
	if d, ok := ctx.detached[key]; ok {
		return d.kind
	}
	if n := ctx.tree().Node(key); n != nil {
		return n.Kind
	}
	return boxtree.KindElement
}

func (ctx *domContext) tag(key boxtree.NodeKey) string {
	if d, ok := ctx.detached[key]; ok {
		return d.tag
	}
	if n := ctx.tree().Node(key); n != nil {
		return n.Tag
	}
	return ""
}

func (ctx *domContext) attr(key boxtree.NodeKey, name string) (string, bool) {
	name = strings.ToLower(name)
	if d, ok := ctx.detached[key]; ok {
		v, ok := d.attrs[name]
		return v, ok
	}
	n := ctx.tree().Node(key)
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// setAttr changes an attribute. On a live node this goes through the
// layouter so the node is restyled before the next geometry read.
func (ctx *domContext) setAttr(key boxtree.NodeKey, name, value string) {
	name = strings.ToLower(name)
	if d, ok := ctx.detached[key]; ok {
		d.attrs[name] = value
		return
	}
	ctx.apply(layouter.SetAttr{Node: key, Name: name, Value: value})
}

func (ctx *domContext) children(key boxtree.NodeKey) []boxtree.NodeKey {
	if d, ok := ctx.detached[key]; ok {
		return d.children
	}
	return ctx.tree().Children(key)
}

func (ctx *domContext) parent(key boxtree.NodeKey) (boxtree.NodeKey, bool) {
	if d, ok := ctx.detached[key]; ok {
		return d.parent, d.parent != boxtree.NoParent
	}
	return ctx.tree().Parent(key)
}

func (ctx *domContext) text(key boxtree.NodeKey) string {
	if d, ok := ctx.detached[key]; ok {
		if d.kind == boxtree.KindText {
			return d.text
		}
	} else if n := ctx.tree().Node(key); n != nil && n.Kind == boxtree.KindText {
		return n.Text
	}
	var b strings.Builder
	for _, c := range ctx.children(key) {
		b.WriteString(ctx.text(c))
	}
	return b.String()
}

func (ctx *domContext) apply(u layouter.Update) {
	if err := ctx.doc.ApplyUpdate(u); err != nil {
		panic(ctx.vm.NewGoError(err))
	}
}

// walk visits the descendants of key (not key itself) in document order.
// fn returns true to stop.
func (ctx *domContext) walk(key boxtree.NodeKey, fn func(boxtree.NodeKey) bool) bool {
	for _, c := range ctx.children(key) {
		if ctx.kind(c) == boxtree.KindElement && fn(c) {
			return true
		}
		if ctx.walk(c, fn) {
			return true
		}
	}
	return false
}

func (ctx *domContext) byTag(key boxtree.NodeKey, tag string) []boxtree.NodeKey {
	tag = strings.ToLower(tag)
	out := make([]boxtree.NodeKey, 0)
	ctx.walk(key, func(k boxtree.NodeKey) bool {
		if tag == "*" || ctx.tag(k) == tag {
			out = append(out, k)
		}
		return false
	})
	return out
}

func (ctx *domContext) byClass(key boxtree.NodeKey, class string) []boxtree.NodeKey {
	out := make([]boxtree.NodeKey, 0)
	ctx.walk(key, func(k boxtree.NodeKey) bool {
		v, _ := ctx.attr(k, "class")
		if containsToken(strings.Fields(v), class) {
			out = append(out, k)
		}
		return false
	})
	return out
}

// sortedAttrs returns attribute names in a stable order.
func sortedAttrs(attrs map[string]string) []string {
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
