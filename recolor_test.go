package recolor

import (
	"reflect"
	"testing"
)

func TestApplyPaletteReappliesActive(t *testing.T) {
	mesh := NewMemoryMesh(red, red, blue, white)
	s := NewPaletteStore()
	BuildBasis(mesh, s, DefaultAttributeName)
	Assignments(mesh, DefaultAttributeName).Assign(3, Unassigned)
	alt := s.AddPalette("alt")
	s.SetColor(alt, 0, green)
	s.SetActivePalette(alt)

	written := ApplyPalette(mesh, s, DefaultAttributeName, ReapplyActive)

	if written != 3 {
		t.Fatalf("expected 3 elements written, got %d", written)
	}
	want := []Color{green, green, blue, white}
	if got := mesh.Displayed(); !reflect.DeepEqual(want, got) {
		t.Fatalf("unexpected display:\nwant: %v\n got: %v", want, got)
	}
	for i, c := range mesh.Colors[:3] {
		if c.A != 1 {
			t.Fatalf("element %d: expected full opacity, got %v", i, c.A)
		}
	}
}

func TestApplyPaletteSingleSlot(t *testing.T) {
	mesh := NewMemoryMesh(red, blue)
	s := NewPaletteStore()
	BuildBasis(mesh, s, DefaultAttributeName)
	s.SetColor(BasisIndex, 0, green)
	s.SetColor(BasisIndex, 1, white)

	if written := ApplyPalette(mesh, s, DefaultAttributeName, 0); written != 1 {
		t.Fatalf("expected 1 element written, got %d", written)
	}
	if got := mesh.Displayed(); !reflect.DeepEqual([]Color{green, blue}, got) {
		t.Fatalf("expected only slot 0 repainted, got %v", got)
	}
}

func TestApplyPaletteNoOps(t *testing.T) {
	s := newTestStore(t, red)
	if ApplyPalette(&MemoryMesh{}, s, DefaultAttributeName, ReapplyActive) != 0 {
		t.Fatalf("expected no-op without a color layer")
	}
	if ApplyPalette(NewMemoryMesh(blue), s, DefaultAttributeName, ReapplyActive) != 0 {
		t.Fatalf("expected no-op without assignments")
	}
	mesh := NewMemoryMesh(blue)
	mesh.CreateAttribute(DefaultAttributeName, 1)
	if ApplyPalette(mesh, NewPaletteStore(), DefaultAttributeName, ReapplyActive) != 0 {
		t.Fatalf("expected no-op without an active palette")
	}
}

func TestApplyPaletteSkipsStaleAssignments(t *testing.T) {
	s := newTestStore(t, red)
	mesh := NewMemoryMesh(blue, blue)
	m := NewAssignmentMap(mesh.CreateAttribute(DefaultAttributeName, 2))
	m.Assign(0, 0)
	m.Assign(1, 4)

	if written := ApplyPalette(mesh, s, DefaultAttributeName, ReapplyActive); written != 1 {
		t.Fatalf("expected 1 element written, got %d", written)
	}
	if got := mesh.Displayed(); !reflect.DeepEqual([]Color{red, blue}, got) {
		t.Fatalf("unexpected display %v", got)
	}
}

func TestAddPaletteThenApplyReproducesBasis(t *testing.T) {
	mesh := NewMemoryMesh(red, green, blue, green)
	s := NewPaletteStore()
	BuildBasis(mesh, s, DefaultAttributeName)
	before := mesh.Displayed()

	s.SetActivePalette(s.AddPalette(""))
	ApplyPalette(mesh, s, DefaultAttributeName, ReapplyActive)

	if got := mesh.Displayed(); !reflect.DeepEqual(before, got) {
		t.Fatalf("expected display unchanged:\nwant: %v\n got: %v", before, got)
	}
}
