package recolor

// ReapplyActive asks ApplyPalette to repaint every assigned element.
const ReapplyActive = -1

// ApplyPalette repaints displayed colors from the active palette. With slot
// set to ReapplyActive every assigned element is repainted; otherwise only
// elements assigned to slot. It silently does nothing when the mesh has no
// color layer, no assignment attribute or the store has no active palette,
// and returns the number of elements written.
func ApplyPalette(mesh Mesh, store *PaletteStore, attribute string, slot int) int {
	if mesh == nil || store == nil {
		return 0
	}
	layer := mesh.ActiveColorLayer()
	if layer == nil {
		return 0
	}
	assignments := Assignments(mesh, attribute)
	if assignments == nil {
		return 0
	}
	active := store.Active()
	if active == Unset {
		return 0
	}

	n := min(assignments.Len(), layer.Len())
	written := 0
	for element := 0; element < n; element++ {
		assigned := assignments.Get(element)
		if assigned < 0 {
			continue
		}
		if slot != ReapplyActive && assigned != slot {
			continue
		}
		c, ok := store.Color(active, assigned)
		if !ok {
			continue
		}
		layer.SetColor(element, c.Opaque())
		written++
	}
	return written
}
