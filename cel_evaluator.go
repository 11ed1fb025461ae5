package recolor

import (
	"reflect"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluatorOption configures NewCELEvaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache shares compiled programs through cache.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry makes registry functions reachable through
// call("name", [args...]).
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.registry = registry.Clone()
	}
}

var anySliceType = reflect.TypeOf([]any{})

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
	env      *celgo.Env
}

// NewCELEvaluator returns a derive engine backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Engine() string { return EngineCEL }

func (e *celEvaluator) Compile(expression string) (Program, error) {
	program, err := compileCached(e.cache, EngineCEL, expression, e.compile)
	if err != nil {
		return nil, err
	}
	return celProgram{program: program}, nil
}

func (e *celEvaluator) compile(expression string) (celgo.Program, error) {
	env, err := e.environment()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	return env.Program(ast)
}

// environment declares the slot bindings with their CEL types. It is built
// once per evaluator.
func (e *celEvaluator) environment() (*celgo.Env, error) {
	if e.env != nil {
		return e.env, nil
	}
	opts := []celgo.EnvOption{
		celgo.CrossTypeNumericComparisons(true),
		celgo.Variable("r", celgo.DoubleType),
		celgo.Variable("g", celgo.DoubleType),
		celgo.Variable("b", celgo.DoubleType),
		celgo.Variable("h", celgo.DoubleType),
		celgo.Variable("s", celgo.DoubleType),
		celgo.Variable("v", celgo.DoubleType),
		celgo.Variable("hex", celgo.StringType),
		celgo.Variable("color", celgo.ListType(celgo.DoubleType)),
		celgo.Variable("index", celgo.IntType),
		celgo.Variable("label", celgo.StringType),
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_string_list",
				[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
				celgo.DynType,
				celgo.BinaryBinding(e.call),
			),
		))
	}
	env, err := celgo.NewEnv(opts...)
	if err != nil {
		return nil, err
	}
	e.env = env
	return env, nil
}

// call dispatches call(name, [args...]) to the function registry.
func (e *celEvaluator) call(nameVal, argsVal ref.Val) ref.Val {
	name, ok := nameVal.Value().(string)
	if !ok {
		return types.NewErr("call: function name must be a string")
	}
	native, err := argsVal.ConvertToNative(anySliceType)
	if err != nil {
		return types.NewErr("call %s: %v", name, err)
	}
	result, err := e.registry.Call(name, native.([]any)...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

type celProgram struct {
	program celgo.Program
}

func (p celProgram) Eval(b Bindings) (any, error) {
	out, _, err := p.program.Eval(b.Vars())
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}
