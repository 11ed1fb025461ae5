package recolor

// Unassigned marks a surface element that does not reference any palette
// slot.
const Unassigned = -1

// AssignmentMap maps every paintable element (mesh corner) to a palette slot
// index. Storage belongs to the host attribute it wraps.
type AssignmentMap struct {
	attr IntAttribute
}

// NewAssignmentMap wraps attr. A nil attr yields an empty map.
func NewAssignmentMap(attr IntAttribute) *AssignmentMap {
	return &AssignmentMap{attr: attr}
}

// Len returns the number of elements covered by the map.
func (m *AssignmentMap) Len() int {
	if m == nil || m.attr == nil {
		return 0
	}
	return m.attr.Len()
}

// Get returns the slot assigned to element, or Unassigned when element is out
// of range.
func (m *AssignmentMap) Get(element int) int {
	if element < 0 || element >= m.Len() {
		return Unassigned
	}
	return m.attr.Value(element)
}

// Assign writes slot for element. It reports false when element is out of
// range or slot is below Unassigned.
func (m *AssignmentMap) Assign(element, slot int) bool {
	if element < 0 || element >= m.Len() || slot < Unassigned {
		return false
	}
	m.attr.SetValue(element, slot)
	return true
}

// Reset marks every element Unassigned.
func (m *AssignmentMap) Reset() {
	for i := 0; i < m.Len(); i++ {
		m.attr.SetValue(i, Unassigned)
	}
}

// DecrementAbove subtracts one from every assignment strictly greater than
// threshold. Assignments equal to threshold are left as they are. It returns
// the number of elements changed.
func (m *AssignmentMap) DecrementAbove(threshold int) int {
	changed := 0
	for i := 0; i < m.Len(); i++ {
		if v := m.attr.Value(i); v > threshold {
			m.attr.SetValue(i, v-1)
			changed++
		}
	}
	return changed
}

// Replace rewrites every assignment equal to from as to.
func (m *AssignmentMap) Replace(from, to int) int {
	changed := 0
	for i := 0; i < m.Len(); i++ {
		if m.attr.Value(i) == from {
			m.attr.SetValue(i, to)
			changed++
		}
	}
	return changed
}

// CountAssigned returns the number of elements assigned to slot.
func (m *AssignmentMap) CountAssigned(slot int) int {
	count := 0
	for i := 0; i < m.Len(); i++ {
		if m.attr.Value(i) == slot {
			count++
		}
	}
	return count
}

// Values returns a copy of every assignment in element order.
func (m *AssignmentMap) Values() []int {
	out := make([]int, m.Len())
	for i := range out {
		out[i] = m.attr.Value(i)
	}
	return out
}
