//go:build !js_eval

package recolor

// NewJSEvaluator is unavailable without the js_eval build tag and returns
// nil; NewEvaluator reports ErrNoEvaluator for it.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = newJSSettings(opts)
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}
