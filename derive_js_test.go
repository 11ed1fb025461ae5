//go:build js_eval

package recolor

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDeriveColorsWithJS(t *testing.T) {
	evaluator := NewJSEvaluator(JSWithFunctionRegistry(NewColorFunctionRegistry()))

	got, err := DeriveColors(evaluator, newDeriveStore(t), "label === 'skin' ? mix(color, '#ffffff', 0.5) : [b, g, r]")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	want := []Color{RGB(1, 0.5, 0.5), red}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("unexpected colors:\nwant: %v\n got: %v", want, got)
	}
}

func TestJSEvaluatorTimeout(t *testing.T) {
	evaluator := NewJSEvaluator(JSWithTimeout(20 * time.Millisecond))

	_, err := DeriveColors(evaluator, newDeriveStore(t), "(() => { while (true) {} })()")
	if err == nil || !strings.Contains(err.Error(), "exceeded") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}
