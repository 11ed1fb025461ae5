package recolor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoEvaluator reports a missing or unavailable expression engine.
var ErrNoEvaluator = errors.New("recolor: evaluator not available")

// Engines accepted by NewEvaluator and Config.Evaluator.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// bindingNames lists the variables every derive expression may reference.
var bindingNames = []string{"r", "g", "b", "h", "s", "v", "hex", "color", "index", "label"}

// Bindings describe one basis slot to a derive expression.
type Bindings struct {
	Index int
	Color Color
	Label string
}

// Vars returns the expression variables for the slot:
//
//	r, g, b   components in [0, 1]
//	h, s, v   hue in degrees, saturation and value
//	hex       "#rrggbb"
//	color     [r, g, b] list
//	index     slot index
//	label     slot label
func (b Bindings) Vars() map[string]any {
	h, s, v := b.Color.HSV()
	return map[string]any{
		"r":     b.Color.R,
		"g":     b.Color.G,
		"b":     b.Color.B,
		"h":     h,
		"s":     s,
		"v":     v,
		"hex":   b.Color.Hex(),
		"color": colorValue(b.Color),
		"index": b.Index,
		"label": b.Label,
	}
}

// Evaluator compiles derive expressions for one engine.
type Evaluator interface {
	Engine() string
	Compile(expression string) (Program, error)
}

// Program is a compiled expression, evaluated once per basis slot.
type Program interface {
	Eval(Bindings) (any, error)
}

// ProgramCache stores compiled programs. Keys are prefixed with the engine
// name so one cache can serve several evaluators.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MapProgramCache is an unbounded ProgramCache.
type MapProgramCache map[string]any

func (c MapProgramCache) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

func (c MapProgramCache) Set(key string, value any) {
	c[key] = value
}

// NewEvaluator returns the evaluator for engine. An empty engine selects
// expr; js needs the js_eval build tag.
func NewEvaluator(engine string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	var evaluator Evaluator
	switch engine {
	case "", EngineExpr:
		evaluator = NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry))
	case EngineCEL:
		evaluator = NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry))
	case EngineJS:
		evaluator = NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry))
	default:
		return nil, fmt.Errorf("recolor: unknown evaluator %q", engine)
	}
	if evaluator == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoEvaluator, engine)
	}
	return evaluator, nil
}

// compileCached returns the cached program for expression or compiles and
// stores it. Failures come back as an EvaluationError without a slot.
func compileCached[P any](cache ProgramCache, engine, expression string, compile func(string) (P, error)) (P, error) {
	var zero P
	if strings.TrimSpace(expression) == "" {
		return zero, &EvaluationError{Engine: engine, Slot: -1, Err: errEmptyExpression}
	}
	key := engine + ":" + expression
	if cache != nil {
		if cached, ok := cache.Get(key); ok {
			if program, ok := cached.(P); ok {
				return program, nil
			}
		}
	}
	program, err := compile(expression)
	if err != nil {
		return zero, evaluationError(engine, expression, -1, err)
	}
	if cache != nil {
		cache.Set(key, program)
	}
	return program, nil
}
