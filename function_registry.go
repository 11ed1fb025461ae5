package recolor

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Function is a helper callable from derive expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry maps case-insensitive names to Functions. It is safe for
// concurrent use.
type FunctionRegistry struct {
	mu    sync.RWMutex
	funcs map[string]registeredFunction
}

type registeredFunction struct {
	fn Function
	// arity is checked before fn runs; -1 accepts any count.
	arity int
}

// NewFunctionRegistry returns an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{funcs: map[string]registeredFunction{}}
}

// Register adds fn under name. fn validates its own arguments.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	return r.register(name, -1, fn)
}

func (r *FunctionRegistry) register(name string, arity int, fn Function) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return errors.New("recolor: function name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("recolor: function %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.funcs == nil {
		r.funcs = map[string]registeredFunction{}
	}
	if _, dup := r.funcs[key]; dup {
		return fmt.Errorf("recolor: function %q already registered", name)
	}
	r.funcs[key] = registeredFunction{fn: fn, arity: arity}
	return nil
}

// Call runs the function registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("recolor: unknown function %q", name)
	}
	r.mu.RLock()
	f, ok := r.funcs[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("recolor: unknown function %q", name)
	}
	if f.arity >= 0 && len(args) != f.arity {
		return nil, fmt.Errorf("recolor: %s expects %d arguments, got %d", name, f.arity, len(args))
	}
	return f.fn(args...)
}

// Clone returns an independent copy; registering on the copy leaves r
// unchanged.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &FunctionRegistry{funcs: maps.Clone(r.funcs)}
}

// Names returns the registered names in sorted order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.funcs))
}

// bind returns a Function that calls name through r.
func (r *FunctionRegistry) bind(name string) Function {
	return func(args ...any) (any, error) {
		return r.Call(name, args...)
	}
}
