package recolor

// DefaultAttributeName is the per-corner integer attribute that stores the
// Surface Assignment Map.
const DefaultAttributeName = "PaletteId"

// ColorLayer is the host's displayed per-corner color channel.
type ColorLayer interface {
	Len() int
	Color(element int) RGBA
	SetColor(element int, c RGBA)
}

// IntAttribute is a named per-corner integer attribute owned by the host.
type IntAttribute interface {
	Len() int
	Value(element int) int
	SetValue(element, value int)
}

// Mesh is the host geometry provider. Implementations return nil when the
// requested layer or attribute does not exist.
type Mesh interface {
	ActiveColorLayer() ColorLayer
	Attribute(name string) IntAttribute
	// CreateAttribute creates (or replaces) the named attribute with size
	// elements.
	CreateAttribute(name string, size int) IntAttribute
}

// Assignments returns the assignment map stored in mesh under name, or nil
// when the attribute has not been created yet.
func Assignments(mesh Mesh, name string) *AssignmentMap {
	if mesh == nil {
		return nil
	}
	attr := mesh.Attribute(name)
	if attr == nil {
		return nil
	}
	return NewAssignmentMap(attr)
}
