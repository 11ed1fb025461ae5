//go:build js_eval

package recolor

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	jsSettings
}

// NewJSEvaluator returns a derive engine backed by goja. Registry functions
// are installed as globals and every evaluation is bounded by the configured
// timeout.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	return &jsEvaluator{jsSettings: newJSSettings(opts)}
}

func (e *jsEvaluator) Engine() string { return EngineJS }

func (e *jsEvaluator) Compile(expression string) (Program, error) {
	program, err := compileCached(e.cache, EngineJS, expression, compileJS)
	if err != nil {
		return nil, err
	}
	return jsProgram{program: program, settings: e.jsSettings}, nil
}

func compileJS(expression string) (*goja.Program, error) {
	return goja.Compile("derive", fmt.Sprintf("(function(){ return (%s); })()", expression), true)
}

type jsProgram struct {
	program  *goja.Program
	settings jsSettings
}

// Eval runs on a fresh runtime; goja runtimes are not reentrant.
func (p jsProgram) Eval(b Bindings) (any, error) {
	vm := goja.New()
	for name, value := range b.Vars() {
		if err := vm.Set(name, value); err != nil {
			return nil, err
		}
	}
	for _, name := range p.settings.registry.Names() {
		if err := vm.Set(name, p.settings.registry.bind(name)); err != nil {
			return nil, err
		}
	}
	if timeout := p.settings.timeout; timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			vm.Interrupt(fmt.Sprintf("evaluation exceeded %s", timeout))
		})
		defer timer.Stop()
	}
	value, err := vm.RunProgram(p.program)
	if err != nil {
		return nil, err
	}
	return value.Export(), nil
}

func jsEvaluatorAvailable() bool {
	return true
}
