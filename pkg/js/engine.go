// Package js runs fixture scripts against a laid-out document. Scripts see a
// small DOM (document, elements, getBoundingClientRect) backed by the
// layouter, and report results through a global assert(name, ok, details).
package js

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/BigBadE/valor-sub000/pkg/layouter"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 5 * time.Second

// Assertion is one call to assert() made by a script.
type Assertion struct {
	Script  string `json:"script"`
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Details string `json:"details,omitempty"`
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTimeout sets how long one script may run before it is interrupted. A
// zero duration disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// Engine executes JavaScript against a layouter's document. Mutations made
// by scripts are applied to the layouter as DOM updates, and geometry reads
// trigger a layout pass when something changed.
type Engine struct {
	vm      *goja.Runtime
	dom     *domContext
	logger  *zap.Logger
	timeout time.Duration

	current    string
	assertions []Assertion
}

// New creates an engine with a fresh goja runtime bound to doc.
func New(doc *layouter.Layouter, opts ...Option) *Engine {
	e := &Engine{
		vm:      goja.New(),
		logger:  zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	c := &consoleAPI{logger: e.logger}
	c.register(e.vm)
	e.dom = registerDocument(e.vm, doc)
	e.vm.Set("assert", e.assert)
	return e
}

// Run executes one script. name labels errors and recorded assertions.
func (e *Engine) Run(name, src string) error {
	e.current = name
	defer e.vm.ClearInterrupt()
	if e.timeout > 0 {
		timer := time.AfterFunc(e.timeout, func() {
			e.vm.Interrupt(fmt.Sprintf("timed out after %s", e.timeout))
		})
		defer timer.Stop()
	}

	if _, err := e.vm.RunScript(name, src); err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}
	return nil
}

// Execute runs scripts in order, naming them script-0, script-1, ... It
// stops at the first script that throws.
func (e *Engine) Execute(scripts []string) error {
	for i, src := range scripts {
		if err := e.Run(fmt.Sprintf("script-%d", i), src); err != nil {
			return err
		}
	}
	return nil
}

// Assertions returns every assertion recorded so far, in call order.
func (e *Engine) Assertions() []Assertion {
	return append([]Assertion(nil), e.assertions...)
}

// Failures returns the assertions that did not pass.
func (e *Engine) Failures() []Assertion {
	out := make([]Assertion, 0)
	for _, a := range e.assertions {
		if !a.Passed {
			out = append(out, a)
		}
	}
	return out
}

func (e *Engine) assert(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) < 2 {
		panic(e.vm.NewTypeError("assert(name, ok, details) needs at least 2 arguments"))
	}
	a := Assertion{
		Script: e.current,
		Name:   call.Argument(0).String(),
		Passed: call.Argument(1).ToBoolean(),
	}
	if d := call.Argument(2); !goja.IsUndefined(d) && !goja.IsNull(d) {
		a.Details = d.String()
	}
	e.assertions = append(e.assertions, a)
	if !a.Passed {
		e.logger.Debug("assertion failed",
			zap.String("script", a.Script), zap.String("name", a.Name), zap.String("details", a.Details))
	}
	return e.vm.ToValue(a.Passed)
}
