package recolor

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestToColorAcceptsExpressionShapes(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  Color
	}{
		{name: "color", value: RGB(0.2, 0.4, 0.6), want: RGB(0.2, 0.4, 0.6)},
		{name: "rgba", value: RGBA{R: 1, G: 0, B: 0, A: 0.5}, want: red},
		{name: "hex", value: "#00ff00", want: green},
		{name: "hex without hash", value: " 0000ff ", want: blue},
		{name: "float list", value: []any{1.0, 0.0, 0.0}, want: red},
		{name: "int list", value: []int{0, 1, 0}, want: green},
		{name: "list with alpha", value: []float64{0, 0, 1, 0.25}, want: blue},
		{name: "map", value: map[string]any{"r": 1, "g": 1, "b": 1}, want: white},
		{name: "typed map", value: map[string]float64{"r": 0, "g": 0, "b": 1}, want: blue},
		{name: "json number", value: []any{json.Number("1"), json.Number("0"), json.Number("0")}, want: red},
		{name: "clamped", value: []any{2.0, -1.0, 0.5}, want: RGB(1, 0, 0.5)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToColor(tc.value)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestToColorRejectsUnsupportedValues(t *testing.T) {
	cases := map[string]any{
		"nil":         nil,
		"short list":  []any{1.0, 0.0},
		"missing key": map[string]any{"r": 1, "g": 0},
		"non numeric": []any{"a", 0, 0},
		"bad hex":     "#zzzzzz",
		"bool":        true,
		"int keys":    map[int]float64{0: 1, 1: 0, 2: 0},
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ToColor(value); err == nil {
				t.Fatalf("expected error for %v", value)
			}
		})
	}
}

func TestColorFunctionRegistry(t *testing.T) {
	registry := NewColorFunctionRegistry()

	call := func(name string, args ...any) Color {
		t.Helper()
		result, err := registry.Call(name, args...)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		c, err := ToColor(result)
		if err != nil {
			t.Fatalf("%s result: %v", name, err)
		}
		return c
	}

	if got := call("rgb", 0, 1, 0); got != green {
		t.Fatalf("rgb: got %+v", got)
	}
	if got := call("hsv", 240, 1, 1); got != blue {
		t.Fatalf("hsv: got %+v", got)
	}
	if got := call("mix", "#ff0000", []any{1.0, 1.0, 1.0}, 0.5); got != RGB(1, 0.5, 0.5) {
		t.Fatalf("mix: got %+v", got)
	}
	if got := call("shift_hue", "#ff0000", 120); got != green {
		t.Fatalf("shift_hue: got %+v", got)
	}
	if got := call("shift_hue", "#0000ff", -120); got != green {
		t.Fatalf("shift_hue negative: got %+v", got)
	}

	hex, err := registry.Call("to_hex", []any{0.0, 0.0, 1.0})
	if err != nil || hex != "#0000ff" {
		t.Fatalf("to_hex: got %v err=%v", hex, err)
	}

	_, err = registry.Call("rgb", 1, 2)
	if err == nil || !strings.Contains(err.Error(), "expects 3 arguments") {
		t.Fatalf("expected arity error, got %v", err)
	}
	if _, err := registry.Call("mix", "#ff0000", "oops", 0.5); err == nil {
		t.Fatalf("expected mix conversion error")
	}
}
