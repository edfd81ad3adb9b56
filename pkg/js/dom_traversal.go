package js

import (
	"github.com/dop251/goja"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
)

// traverse answers the child and sibling properties.
func (e *elementAccessor) traverse(prop string) goja.Value {
	var candidates []boxtree.NodeKey
	reverse := false
	elementsOnly := false

	switch prop {
	case "firstChild", "lastChild", "firstElementChild", "lastElementChild":
		candidates = e.ctx.children(e.key)
		reverse = prop == "lastChild" || prop == "lastElementChild"
		elementsOnly = prop == "firstElementChild" || prop == "lastElementChild"
	default:
		p, ok := e.ctx.parent(e.key)
		if !ok {
			return goja.Null()
		}
		siblings := e.ctx.children(p)
		idx := -1
		for i, k := range siblings {
			if k == e.key {
				idx = i
				break
			}
		}
		if idx < 0 {
			return goja.Null()
		}
		if prop == "nextSibling" || prop == "nextElementSibling" {
			candidates = siblings[idx+1:]
		} else {
			candidates = siblings[:idx]
			reverse = true
		}
		elementsOnly = prop == "nextElementSibling" || prop == "previousElementSibling"
	}

	for i := range candidates {
		k := candidates[i]
		if reverse {
			k = candidates[len(candidates)-1-i]
		}
		if elementsOnly && e.ctx.kind(k) != boxtree.KindElement {
			continue
		}
		return e.ctx.proxy(k)
	}
	return goja.Null()
}
