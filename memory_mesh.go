package recolor

// MemoryMesh is a minimal in-memory Mesh intended for tests, examples and the
// CLI. A nil Colors slice means the mesh has no active color layer.
type MemoryMesh struct {
	Colors     []RGBA           `json:"colors"`
	Attributes map[string][]int `json:"attributes,omitempty"`
}

// NewMemoryMesh builds a mesh whose corners display the given colors.
func NewMemoryMesh(colors ...Color) *MemoryMesh {
	layer := make([]RGBA, len(colors))
	for i, c := range colors {
		layer[i] = c.Opaque()
	}
	return &MemoryMesh{Colors: layer}
}

func (m *MemoryMesh) ActiveColorLayer() ColorLayer {
	if m == nil || m.Colors == nil {
		return nil
	}
	return memoryLayer{mesh: m}
}

func (m *MemoryMesh) Attribute(name string) IntAttribute {
	if m == nil {
		return nil
	}
	values, ok := m.Attributes[name]
	if !ok {
		return nil
	}
	return memoryAttribute{mesh: m, name: name, size: len(values)}
}

func (m *MemoryMesh) CreateAttribute(name string, size int) IntAttribute {
	if m.Attributes == nil {
		m.Attributes = map[string][]int{}
	}
	if size < 0 {
		size = 0
	}
	m.Attributes[name] = make([]int, size)
	return memoryAttribute{mesh: m, name: name, size: size}
}

// Displayed returns the RGB part of every displayed corner color.
func (m *MemoryMesh) Displayed() []Color {
	out := make([]Color, len(m.Colors))
	for i, c := range m.Colors {
		out[i] = c.RGB()
	}
	return out
}

type memoryLayer struct {
	mesh *MemoryMesh
}

func (l memoryLayer) Len() int { return len(l.mesh.Colors) }

func (l memoryLayer) Color(element int) RGBA { return l.mesh.Colors[element] }

func (l memoryLayer) SetColor(element int, c RGBA) { l.mesh.Colors[element] = c }

type memoryAttribute struct {
	mesh *MemoryMesh
	name string
	size int
}

func (a memoryAttribute) Len() int { return a.size }

func (a memoryAttribute) Value(element int) int { return a.mesh.Attributes[a.name][element] }

func (a memoryAttribute) SetValue(element, value int) {
	a.mesh.Attributes[a.name][element] = value
}
