package js

import (
	"strings"
	"unicode"

	"github.com/dop251/goja"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/layout"
)

// elementAccessor implements goja.DynamicObject to intercept property access
// on node proxies.
type elementAccessor struct {
	ctx *domContext
	key boxtree.NodeKey
}

var elementKeys = []string{
	"nodeType", "nodeName", "nodeValue", "tagName", "id", "className", "textContent",
	"getAttribute", "setAttribute", "hasAttribute",
	"children", "childNodes", "parentElement", "parentNode", "style", "classList",
	"firstChild", "lastChild", "firstElementChild", "lastElementChild",
	"nextSibling", "previousSibling", "nextElementSibling", "previousElementSibling",
	"childElementCount",
	"appendChild", "removeChild", "insertBefore", "remove",
	"querySelector", "querySelectorAll", "matches",
	"getElementsByTagName", "getElementsByClassName",
	"getBoundingClientRect", "offsetWidth", "offsetHeight", "offsetLeft", "offsetTop",
}

func (e *elementAccessor) Get(key string) goja.Value {
	vm := e.ctx.vm
	isText := e.ctx.kind(e.key) == boxtree.KindText

	switch key {
	case "nodeType":
		if isText {
			return vm.ToValue(3)
		}
		return vm.ToValue(1)
	case "nodeName", "tagName":
		if isText {
			if key == "tagName" {
				return goja.Undefined()
			}
			return vm.ToValue("#text")
		}
		return vm.ToValue(strings.ToUpper(e.ctx.tag(e.key)))
	case "nodeValue":
		if isText {
			return vm.ToValue(e.ctx.text(e.key))
		}
		return goja.Null()
	case "id":
		v, _ := e.ctx.attr(e.key, "id")
		return vm.ToValue(v)
	case "className":
		v, _ := e.ctx.attr(e.key, "class")
		return vm.ToValue(v)
	case "textContent":
		return vm.ToValue(e.ctx.text(e.key))
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			v, ok := e.ctx.attr(e.key, call.Argument(0).String())
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(v)
		})
	case "setAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				panic(vm.NewTypeError("Failed to execute 'setAttribute': 2 arguments required"))
			}
			e.ctx.setAttr(e.key, call.Arguments[0].String(), call.Arguments[1].String())
			return goja.Undefined()
		})
	case "hasAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			_, ok := e.ctx.attr(e.key, call.Argument(0).String())
			return vm.ToValue(ok)
		})
	case "children":
		return e.ctx.array(e.elementChildren())
	case "childNodes":
		return e.ctx.array(e.ctx.children(e.key))
	case "parentElement", "parentNode":
		p, ok := e.ctx.parent(e.key)
		if !ok || p == boxtree.Root {
			return goja.Null()
		}
		return e.ctx.proxy(p)
	case "style":
		return vm.NewDynamicObject(&styleAccessor{ctx: e.ctx, key: e.key})
	case "classList":
		return newClassListProxy(e.ctx, e.key)

	case "firstChild", "lastChild", "firstElementChild", "lastElementChild",
		"nextSibling", "previousSibling", "nextElementSibling", "previousElementSibling":
		return e.traverse(key)
	case "childElementCount":
		return vm.ToValue(len(e.elementChildren()))

	case "appendChild":
		return vm.ToValue(e.appendChildFn())
	case "removeChild":
		return vm.ToValue(e.removeChildFn())
	case "insertBefore":
		return vm.ToValue(e.insertBeforeFn())
	case "remove":
		return vm.ToValue(e.removeFn())

	case "querySelector":
		return vm.ToValue(querySelectorFn(e.ctx, e.key))
	case "querySelectorAll":
		return vm.ToValue(querySelectorAllFn(e.ctx, e.key))
	case "matches":
		return vm.ToValue(matchesFn(e.ctx, e.key))
	case "getElementsByTagName":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return e.ctx.array(e.ctx.byTag(e.key, call.Argument(0).String()))
		})
	case "getElementsByClassName":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return e.ctx.array(e.ctx.byClass(e.key, call.Argument(0).String()))
		})

	case "getBoundingClientRect":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return e.ctx.domRect(e.rect())
		})
	case "offsetWidth":
		return vm.ToValue(e.rect().Width)
	case "offsetHeight":
		return vm.ToValue(e.rect().Height)
	case "offsetLeft":
		return vm.ToValue(e.rect().X)
	case "offsetTop":
		return vm.ToValue(e.rect().Y)
	}
	return goja.Undefined()
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	switch key {
	case "textContent":
		e.ctx.setTextContent(e.key, val.String())
		return true
	case "className":
		e.ctx.setAttr(e.key, "class", val.String())
		return true
	case "id":
		e.ctx.setAttr(e.key, "id", val.String())
		return true
	}
	return false
}

func (e *elementAccessor) Has(key string) bool {
	for _, k := range elementKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (e *elementAccessor) Delete(key string) bool { return false }

func (e *elementAccessor) Keys() []string {
	return append([]string(nil), elementKeys...)
}

func (e *elementAccessor) elementChildren() []boxtree.NodeKey {
	out := make([]boxtree.NodeKey, 0)
	for _, c := range e.ctx.children(e.key) {
		if e.ctx.kind(c) == boxtree.KindElement {
			out = append(out, c)
		}
	}
	return out
}

// rect lays the document out if it changed and returns the node's border
// box. Detached nodes have an empty rect.
func (e *elementAccessor) rect() layout.Rect {
	if e.ctx.isDetached(e.key) {
		return layout.Rect{}
	}
	r, _ := e.ctx.doc.Layout().Rect(e.key)
	return r
}

// domRect builds a DOMRect-like object.
func (ctx *domContext) domRect(r layout.Rect) goja.Value {
	obj := ctx.vm.NewObject()
	for name, v := range map[string]float64{
		"x": r.X, "y": r.Y, "width": r.Width, "height": r.Height,
		"left": r.X, "top": r.Y, "right": r.Right(), "bottom": r.Bottom(),
	} {
		obj.Set(name, v)
	}
	return obj
}

// styleAccessor maps camelCase property access to kebab-case declarations
// in the element's style attribute.
type styleAccessor struct {
	ctx *domContext
	key boxtree.NodeKey
}

func (s *styleAccessor) Get(key string) goja.Value {
	prop := camelToKebab(key)
	for _, d := range s.decls() {
		if d[0] == prop {
			return s.ctx.vm.ToValue(d[1])
		}
	}
	return s.ctx.vm.ToValue("")
}

func (s *styleAccessor) Set(key string, val goja.Value) bool {
	prop := camelToKebab(key)
	decls := s.decls()
	value := strings.TrimSpace(val.String())
	found := false
	for i := range decls {
		if decls[i][0] == prop {
			decls[i][1] = value
			found = true
		}
	}
	if !found {
		decls = append(decls, [2]string{prop, value})
	}
	s.store(decls)
	return true
}

func (s *styleAccessor) Has(key string) bool { return true }

func (s *styleAccessor) Delete(key string) bool {
	prop := camelToKebab(key)
	kept := make([][2]string, 0)
	for _, d := range s.decls() {
		if d[0] != prop {
			kept = append(kept, d)
		}
	}
	s.store(kept)
	return true
}

func (s *styleAccessor) Keys() []string {
	decls := s.decls()
	keys := make([]string, len(decls))
	for i, d := range decls {
		keys[i] = d[0]
	}
	return keys
}

// decls parses the style attribute into ordered property/value pairs.
func (s *styleAccessor) decls() [][2]string {
	attr, _ := s.ctx.attr(s.key, "style")
	out := make([][2]string, 0)
	for _, decl := range strings.Split(attr, ";") {
		idx := strings.IndexByte(decl, ':')
		if idx < 0 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(decl[:idx]))
		if prop == "" {
			continue
		}
		out = append(out, [2]string{prop, strings.TrimSpace(decl[idx+1:])})
	}
	return out
}

func (s *styleAccessor) store(decls [][2]string) {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		if d[1] == "" {
			continue
		}
		parts = append(parts, d[0]+": "+d[1])
	}
	s.ctx.setAttr(s.key, "style", strings.Join(parts, "; "))
}

// camelToKebab converts a JS camelCase property name to CSS kebab-case.
func camelToKebab(s string) string {
	if s == "cssFloat" {
		return "float"
	}
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
