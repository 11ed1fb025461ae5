package recolor

import (
	"reflect"
	"testing"
)

func newTestAssignments(values ...int) (*MemoryMesh, *AssignmentMap) {
	mesh := &MemoryMesh{}
	attr := mesh.CreateAttribute(DefaultAttributeName, len(values))
	m := NewAssignmentMap(attr)
	for i, v := range values {
		m.Assign(i, v)
	}
	return mesh, m
}

func TestDecrementAboveLeavesThresholdAlone(t *testing.T) {
	_, m := newTestAssignments(0, 1, 2, 3, 2, Unassigned)

	changed := m.DecrementAbove(2)

	if changed != 1 {
		t.Fatalf("expected 1 change, got %d", changed)
	}
	want := []int{0, 1, 2, 2, 2, Unassigned}
	if got := m.Values(); !reflect.DeepEqual(want, got) {
		t.Fatalf("unexpected values:\nwant: %v\n got: %v", want, got)
	}
}

func TestAssignRangeChecks(t *testing.T) {
	_, m := newTestAssignments(0, 0)
	if m.Assign(2, 0) || m.Assign(-1, 0) {
		t.Fatalf("expected out-of-range element rejected")
	}
	if m.Assign(0, -2) {
		t.Fatalf("expected slot below Unassigned rejected")
	}
	if !m.Assign(1, Unassigned) || m.Get(1) != Unassigned {
		t.Fatalf("expected unassign to succeed")
	}
	if m.Get(5) != Unassigned {
		t.Fatalf("expected out-of-range Get to read Unassigned")
	}
}

func TestCountReplaceAndReset(t *testing.T) {
	_, m := newTestAssignments(1, 0, 1, 1)
	if got := m.CountAssigned(1); got != 3 {
		t.Fatalf("expected 3 elements on slot 1, got %d", got)
	}
	if got := m.Replace(1, 4); got != 3 || m.CountAssigned(4) != 3 {
		t.Fatalf("expected 3 replacements, got %d", got)
	}
	m.Reset()
	if got := m.CountAssigned(Unassigned); got != 4 {
		t.Fatalf("expected every element unassigned, got %d", got)
	}
}

func TestNilAssignmentMapIsEmpty(t *testing.T) {
	var m *AssignmentMap
	if m.Len() != 0 {
		t.Fatalf("expected empty map")
	}
	if Assignments(&MemoryMesh{}, DefaultAttributeName) != nil {
		t.Fatalf("expected nil map for a mesh without the attribute")
	}
}
