package recolor

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// NewColorFunctionRegistry returns a registry preloaded with the color
// helpers available to derived palette expressions:
//
//	rgb(r, g, b)            color from components in [0, 1]
//	hsv(h, s, v)            color from hue degrees, saturation and value
//	mix(a, b, t)            linear blend of two colors
//	shift_hue(c, degrees)   rotate the hue of a color
//	to_hex(c)               "#rrggbb" form of a color
//
// Colors are accepted as hex strings, [r, g, b] lists or {r, g, b} maps and
// returned as [r, g, b] lists.
func NewColorFunctionRegistry() *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.register("rgb", 3, func(args ...any) (any, error) {
		c, err := colorFromComponents(args)
		if err != nil {
			return nil, fmt.Errorf("recolor: rgb: %w", err)
		}
		return colorValue(c), nil
	})
	_ = registry.register("hsv", 3, func(args ...any) (any, error) {
		var hsv [3]float64
		for i, arg := range args {
			f, err := toFloat(arg)
			if err != nil {
				return nil, fmt.Errorf("recolor: hsv: %w", err)
			}
			hsv[i] = f
		}
		return colorValue(HSV(hsv[0], hsv[1], hsv[2])), nil
	})
	_ = registry.register("mix", 3, func(args ...any) (any, error) {
		a, err := ToColor(args[0])
		if err != nil {
			return nil, fmt.Errorf("recolor: mix: %w", err)
		}
		b, err := ToColor(args[1])
		if err != nil {
			return nil, fmt.Errorf("recolor: mix: %w", err)
		}
		t, err := toFloat(args[2])
		if err != nil {
			return nil, fmt.Errorf("recolor: mix: %w", err)
		}
		return colorValue(a.Mix(b, t)), nil
	})
	_ = registry.register("shift_hue", 2, func(args ...any) (any, error) {
		c, err := ToColor(args[0])
		if err != nil {
			return nil, fmt.Errorf("recolor: shift_hue: %w", err)
		}
		degrees, err := toFloat(args[1])
		if err != nil {
			return nil, fmt.Errorf("recolor: shift_hue: %w", err)
		}
		h, s, v := c.HSV()
		return colorValue(HSV(math.Mod(math.Mod(h+degrees, 360)+360, 360), s, v)), nil
	})
	_ = registry.register("to_hex", 1, func(args ...any) (any, error) {
		c, err := ToColor(args[0])
		if err != nil {
			return nil, fmt.Errorf("recolor: to_hex: %w", err)
		}
		return c.Hex(), nil
	})
	return registry
}

// ToColor converts an expression result into a Color. It accepts a Color, a
// hex string, a list of three (or four, alpha ignored) numbers or a map with
// r, g and b keys. Components are clamped into [0, 1].
func ToColor(value any) (Color, error) {
	value = unwrapValue(value)
	switch typed := value.(type) {
	case nil:
		return Color{}, fmt.Errorf("color value is nil")
	case Color:
		return RGB(typed.R, typed.G, typed.B), nil
	case RGBA:
		return RGB(typed.R, typed.G, typed.B), nil
	case string:
		hex := strings.TrimSpace(typed)
		if !strings.HasPrefix(hex, "#") {
			hex = "#" + hex
		}
		return ParseHex(hex)
	case map[string]any:
		return colorFromMap(typed)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() != 3 && rv.Len() != 4 {
			return Color{}, fmt.Errorf("color list needs 3 components, got %d", rv.Len())
		}
		components := make([]any, 3)
		for i := range components {
			components[i] = rv.Index(i).Interface()
		}
		return colorFromComponents(components)
	case reflect.Map:
		// Evaluator maps may be keyed by wrapped values (CEL ref.Val).
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, ok := unwrapValue(iter.Key().Interface()).(string)
			if !ok {
				return Color{}, fmt.Errorf("color map keys must be strings, got %T", iter.Key().Interface())
			}
			m[key] = iter.Value().Interface()
		}
		return colorFromMap(m)
	}
	return Color{}, fmt.Errorf("cannot convert %T to a color", value)
}

func colorFromMap(m map[string]any) (Color, error) {
	components := make([]any, 3)
	for i, key := range []string{"r", "g", "b"} {
		v, ok := m[key]
		if !ok {
			return Color{}, fmt.Errorf("color map missing %q", key)
		}
		components[i] = v
	}
	return colorFromComponents(components)
}

func colorFromComponents(components []any) (Color, error) {
	var rgb [3]float64
	for i := range rgb {
		f, err := toFloat(components[i])
		if err != nil {
			return Color{}, err
		}
		rgb[i] = f
	}
	return RGB(rgb[0], rgb[1], rgb[2]), nil
}

// colorValue is the list form colors take inside expressions.
func colorValue(c Color) []any {
	return []any{c.R, c.G, c.B}
}

func toFloat(value any) (float64, error) {
	switch typed := unwrapValue(value).(type) {
	case float64:
		return typed, nil
	case float32:
		return float64(typed), nil
	case int:
		return float64(typed), nil
	case int32:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	case uint:
		return float64(typed), nil
	case uint32:
		return float64(typed), nil
	case uint64:
		return float64(typed), nil
	case json.Number:
		return typed.Float64()
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}

// unwrapValue unpacks evaluator-native wrappers (such as CEL ref.Val) that
// expose their Go value through Value().
func unwrapValue(value any) any {
	for {
		wrapped, ok := value.(interface{ Value() any })
		if !ok {
			return value
		}
		inner := wrapped.Value()
		if reflect.TypeOf(inner) == reflect.TypeOf(value) {
			return inner
		}
		value = inner
	}
}
