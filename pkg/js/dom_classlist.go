package js

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
)

// newClassListProxy returns a DOMTokenList view over a node's class attribute.
func newClassListProxy(ctx *domContext, key boxtree.NodeKey) goja.Value {
	return ctx.vm.NewDynamicObject(&classListAccessor{ctx: ctx, key: key})
}

type classListAccessor struct {
	ctx *domContext
	key boxtree.NodeKey
}

var classListKeys = []string{"length", "value", "add", "remove", "toggle", "contains", "replace", "item", "toString"}

func (cl *classListAccessor) tokens() []string {
	attr, _ := cl.ctx.attr(cl.key, "class")
	return strings.Fields(attr)
}

// store writes the class attribute only when it changed, so no-op edits do
// not dirty the node.
func (cl *classListAccessor) store(before, after []string) {
	if slices.Equal(before, after) {
		return
	}
	cl.ctx.setAttr(cl.key, "class", strings.Join(after, " "))
}

func (cl *classListAccessor) Get(key string) goja.Value {
	vm := cl.ctx.vm
	classes := cl.tokens()

	switch key {
	case "length":
		return vm.ToValue(len(classes))
	case "value":
		return vm.ToValue(strings.Join(classes, " "))
	case "add":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			cls := cl.tokens()
			next := slices.Clone(cls)
			for _, arg := range call.Arguments {
				if token := arg.String(); !containsToken(next, token) {
					next = append(next, token)
				}
			}
			cl.store(cls, next)
			return goja.Undefined()
		})
	case "remove":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			cls := cl.tokens()
			next := cls
			for _, arg := range call.Arguments {
				next = removeToken(next, arg.String())
			}
			cl.store(cls, next)
			return goja.Undefined()
		})
	case "toggle":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				panic(vm.NewTypeError("Failed to execute 'toggle': 1 argument required"))
			}
			token := call.Arguments[0].String()
			cls := cl.tokens()
			want := !containsToken(cls, token)
			if len(call.Arguments) > 1 {
				want = call.Arguments[1].ToBoolean()
			}
			next := removeToken(cls, token)
			if want {
				next = append(next, token)
				if containsToken(cls, token) {
					next = cls
				}
			}
			cl.store(cls, next)
			return vm.ToValue(want)
		})
	case "contains":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(containsToken(classes, call.Argument(0).String()))
		})
	case "replace":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				panic(vm.NewTypeError("Failed to execute 'replace': 2 arguments required"))
			}
			cls := cl.tokens()
			i := slices.Index(cls, call.Arguments[0].String())
			if i < 0 {
				return vm.ToValue(false)
			}
			next := slices.Clone(cls)
			next[i] = call.Arguments[1].String()
			cl.store(cls, next)
			return vm.ToValue(true)
		})
	case "item":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			idx := int(call.Argument(0).ToInteger())
			if idx < 0 || idx >= len(classes) {
				return goja.Null()
			}
			return vm.ToValue(classes[idx])
		})
	case "toString":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(strings.Join(classes, " "))
		})
	}
	if idx, err := strconv.Atoi(key); err == nil && idx >= 0 && idx < len(classes) {
		return vm.ToValue(classes[idx])
	}
	return goja.Undefined()
}

func (cl *classListAccessor) Set(key string, val goja.Value) bool {
	if key != "value" {
		return false
	}
	cl.ctx.setAttr(cl.key, "class", val.String())
	return true
}

func (cl *classListAccessor) Has(key string) bool {
	if slices.Contains(classListKeys, key) {
		return true
	}
	idx, err := strconv.Atoi(key)
	return err == nil && idx >= 0 && idx < len(cl.tokens())
}

func (cl *classListAccessor) Delete(key string) bool { return false }

func (cl *classListAccessor) Keys() []string { return slices.Clone(classListKeys) }

func containsToken(tokens []string, token string) bool {
	return slices.Contains(tokens, token)
}

func removeToken(tokens []string, token string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != token {
			out = append(out, t)
		}
	}
	return out
}
