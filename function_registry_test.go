package recolor

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestFunctionRegistryRegisterAndCall(t *testing.T) {
	registry := NewFunctionRegistry()
	double := func(args ...any) (any, error) {
		f, err := toFloat(args[0])
		return f * 2, err
	}
	if err := registry.Register("Double", double); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("double", double); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := registry.Register(" ", double); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if err := registry.Register("nil", nil); err == nil {
		t.Fatalf("expected nil function to fail")
	}

	got, err := registry.Call("DOUBLE", 2)
	if err != nil || got != 4.0 {
		t.Fatalf("expected case-insensitive call to return 4, got %v err=%v", got, err)
	}
	if _, err := registry.Call("triple", 1); err == nil || !strings.Contains(err.Error(), "unknown function") {
		t.Fatalf("expected unknown function error, got %v", err)
	}
}

func TestFunctionRegistryCloneIsIndependent(t *testing.T) {
	base := NewColorFunctionRegistry()
	clone := base.Clone()
	if err := clone.Register("invert", func(args ...any) (any, error) { return nil, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	want := []string{"hsv", "mix", "rgb", "shift_hue", "to_hex"}
	if !reflect.DeepEqual(want, base.Names()) {
		t.Fatalf("base registry changed: %v", base.Names())
	}
	if len(clone.Names()) != len(want)+1 {
		t.Fatalf("expected clone to gain invert, got %v", clone.Names())
	}

	var missing *FunctionRegistry
	if missing.Clone() != nil || missing.Names() != nil {
		t.Fatalf("nil registry must clone to nil")
	}
	if _, err := missing.Call("rgb"); err == nil {
		t.Fatalf("expected error calling a nil registry")
	}
}

func TestFunctionRegistryBindPropagatesErrors(t *testing.T) {
	registry := NewFunctionRegistry()
	boom := errors.New("boom")
	_ = registry.Register("fail", func(...any) (any, error) { return nil, boom })
	if _, err := registry.bind("fail")(); !errors.Is(err, boom) {
		t.Fatalf("expected bound call to return boom, got %v", err)
	}
}
