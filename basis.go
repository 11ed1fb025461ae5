package recolor

// BasisReport summarises one BuildBasis run.
type BasisReport struct {
	// Elements is the number of surface elements scanned.
	Elements int
	// Added counts colors appended to the basis during the scan.
	Added int
	// Pruned counts basis slots removed because nothing referenced them.
	Pruned int
	// Skipped is set when the run was a no-op.
	Skipped bool
}

// Changed reports whether the run altered the palette slots.
func (r BasisReport) Changed() bool {
	return r.Added > 0 || r.Pruned > 0
}

// BuildBasis scans the displayed colors of mesh, appends every color not yet
// present in the basis palette, assigns each element to its nearest basis
// slot and finally prunes slots no element references.
//
// It only runs while the basis palette is active (an empty store gets a basis
// created and activated first) and leaves everything untouched for a mesh
// without a color layer or without elements. BuildBasis never repaints; the
// caller decides when to apply the palette.
func BuildBasis(mesh Mesh, store *PaletteStore, attribute string) BasisReport {
	if mesh == nil || store == nil {
		return BasisReport{Skipped: true}
	}
	layer := mesh.ActiveColorLayer()
	if layer == nil || layer.Len() == 0 {
		return BasisReport{Skipped: true}
	}
	if store.Len() == 0 {
		store.ensureBasis()
		store.SetActivePalette(BasisIndex)
	}
	if store.Active() != BasisIndex {
		return BasisReport{Skipped: true}
	}

	count := layer.Len()
	attr := mesh.Attribute(attribute)
	if attr == nil || attr.Len() != count {
		attr = mesh.CreateAttribute(attribute, count)
		NewAssignmentMap(attr).Reset()
	}
	assignments := NewAssignmentMap(attr)

	report := BasisReport{Elements: count}
	basis := store.BasisColors()
	for element := 0; element < count; element++ {
		displayed := layer.Color(element).RGB()
		if _, ok := matchIndex(basis, displayed); !ok {
			store.AddColor(displayed)
			basis = store.BasisColors()
			report.Added++
		}
		assignments.Assign(element, nearestIndex(basis, displayed))
	}

	for slot := 0; slot < store.ColorCount(); {
		if assignments.CountAssigned(slot) > 0 {
			slot++
			continue
		}
		store.RemoveColor(slot, assignments)
		report.Pruned++
	}
	return report
}
