package recolor

import "time"

// DefaultJSTimeout bounds a single script evaluation. Derived palette
// expressions are one-liners, anything slower is a runaway loop.
const DefaultJSTimeout = 250 * time.Millisecond

// JSEvaluatorOption configures the goja-backed evaluator. Options are
// accepted in every build so callers compile without the js_eval tag.
type JSEvaluatorOption func(*jsSettings)

type jsSettings struct {
	cache    ProgramCache
	registry *FunctionRegistry
	timeout  time.Duration
}

// JSWithProgramCache shares compiled scripts through cache.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(s *jsSettings) { s.cache = cache }
}

// JSWithFunctionRegistry exposes registry functions as script globals.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(s *jsSettings) { s.registry = registry.Clone() }
}

// JSWithTimeout overrides DefaultJSTimeout. Zero disables the limit.
func JSWithTimeout(timeout time.Duration) JSEvaluatorOption {
	return func(s *jsSettings) { s.timeout = timeout }
}

func newJSSettings(opts []JSEvaluatorOption) jsSettings {
	s := jsSettings{timeout: DefaultJSTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
