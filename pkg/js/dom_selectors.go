package js

import (
	"github.com/dop251/goja"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/css"
)

// registerQuerySelectors adds querySelector/querySelectorAll to a document object.
func registerQuerySelectors(ctx *domContext, obj *goja.Object, root boxtree.NodeKey) {
	obj.Set("querySelector", querySelectorFn(ctx, root))
	obj.Set("querySelectorAll", querySelectorAllFn(ctx, root))
}

func querySelectorFn(ctx *domContext, root boxtree.NodeKey) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(ctx.vm.NewTypeError("Failed to execute 'querySelector': 1 argument required"))
		}
		selectors := css.ParseSelectorList(call.Arguments[0].String())
		var result boxtree.NodeKey
		found := ctx.walk(root, func(k boxtree.NodeKey) bool {
			if ctx.matches(k, selectors) {
				result = k
				return true
			}
			return false
		})
		if !found {
			return goja.Null()
		}
		return ctx.proxy(result)
	}
}

func querySelectorAllFn(ctx *domContext, root boxtree.NodeKey) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(ctx.vm.NewTypeError("Failed to execute 'querySelectorAll': 1 argument required"))
		}
		selectors := css.ParseSelectorList(call.Arguments[0].String())
		results := make([]boxtree.NodeKey, 0)
		ctx.walk(root, func(k boxtree.NodeKey) bool {
			if ctx.matches(k, selectors) {
				results = append(results, k)
			}
			return false
		})
		return ctx.array(results)
	}
}

// matchesFn implements element.matches(selector).
func matchesFn(ctx *domContext, key boxtree.NodeKey) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(ctx.vm.NewTypeError("Failed to execute 'matches': 1 argument required"))
		}
		return ctx.vm.ToValue(ctx.matches(key, css.ParseSelectorList(call.Arguments[0].String())))
	}
}

func (ctx *domContext) matches(key boxtree.NodeKey, selectors []css.Selector) bool {
	if ctx.kind(key) != boxtree.KindElement {
		return false
	}
	id, _ := ctx.attr(key, "id")
	class, _ := ctx.attr(key, "class")
	classes := css.ClassList(class)
	for _, sel := range selectors {
		if sel.Matches(ctx.tag(key), id, classes) {
			return true
		}
	}
	return false
}
