package js

import (
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// consoleAPI routes the console methods to the engine's logger.
type consoleAPI struct {
	logger *zap.Logger
}

var consoleLevels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"log":   zapcore.InfoLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

func (c *consoleAPI) register(vm *goja.Runtime) {
	obj := vm.NewObject()
	for name, level := range consoleLevels {
		obj.Set(name, c.method(level))
	}
	vm.Set("console", obj)
}

func (c *consoleAPI) method(level zapcore.Level) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if ce := c.logger.Check(level, joinArgs(call.Arguments)); ce != nil {
			ce.Write(zap.String("source", "console"))
		}
		return goja.Undefined()
	}
}

func joinArgs(args []goja.Value) string {
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(arg.String())
	}
	return b.String()
}
