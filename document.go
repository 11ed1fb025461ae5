package recolor

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-recolor/internal/hydrate"
)

// ErrInvalidDocument reports a palette document that breaks the lock-step
// invariant.
var ErrInvalidDocument = errors.New("recolor: invalid palette document")

// Document is the persisted form of a PaletteStore plus the assignment map,
// shaped like the host's per-mesh property bag.
type Document struct {
	Palettes           []PaletteRecord `json:"palettes"`
	Labels             []string        `json:"labels"`
	ActivePaletteIndex int             `json:"active_palette_index"`
	Assignments        []int           `json:"assignments,omitempty"`
}

// PaletteRecord is one persisted palette.
type PaletteRecord struct {
	ID     string       `json:"id,omitempty"`
	Name   string       `json:"name"`
	Colors [][3]float64 `json:"colors"`
}

// EmptyDocument is the persisted form of a fresh store.
func EmptyDocument() Document {
	return Document{ActivePaletteIndex: Unset}
}

// Validate checks the lock-step invariant of the document.
func (d Document) Validate() error {
	_, err := d.store()
	return err
}

// Snapshot captures the store and, when assignments is non-nil, the
// assignment values.
func (s *PaletteStore) Snapshot(assignments *AssignmentMap) Document {
	doc := Document{
		Palettes:           make([]PaletteRecord, len(s.palettes)),
		Labels:             s.Labels(),
		ActivePaletteIndex: s.active,
	}
	if doc.Labels == nil {
		doc.Labels = []string{}
	}
	for i, p := range s.palettes {
		colors := make([][3]float64, len(p.Colors))
		for j, c := range p.Colors {
			colors[j] = [3]float64{c.R, c.G, c.B}
		}
		doc.Palettes[i] = PaletteRecord{ID: p.ID, Name: p.Name, Colors: colors}
	}
	if assignments != nil {
		doc.Assignments = assignments.Values()
	}
	return doc
}

// RestoreStore rebuilds a PaletteStore from doc, rejecting documents that
// break the lock-step invariant.
func RestoreStore(doc Document, opts ...StoreOption) (*PaletteStore, error) {
	s, err := doc.store(opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d Document) store(opts ...StoreOption) (*PaletteStore, error) {
	s := NewPaletteStore(opts...)
	for i, record := range d.Palettes {
		p := Palette{ID: record.ID, Name: record.Name, Colors: make([]Color, len(record.Colors))}
		for j, c := range record.Colors {
			p.Colors[j] = RGB(c[0], c[1], c[2])
		}
		if p.ID == "" {
			p.ID = fmt.Sprintf("palette-%d", i)
		}
		if i == BasisIndex {
			p.Name = s.basisName
		}
		s.palettes = append(s.palettes, p)
	}
	s.labels = append([]string(nil), d.Labels...)
	s.active = d.ActivePaletteIndex
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// RestoreAssignments writes doc.Assignments into the mesh attribute name,
// creating it when needed. Documents without assignments leave the mesh
// untouched.
func RestoreAssignments(mesh Mesh, name string, doc Document) *AssignmentMap {
	if mesh == nil || len(doc.Assignments) == 0 {
		return Assignments(mesh, name)
	}
	attr := mesh.Attribute(name)
	if attr == nil || attr.Len() != len(doc.Assignments) {
		attr = mesh.CreateAttribute(name, len(doc.Assignments))
	}
	m := NewAssignmentMap(attr)
	for i, v := range doc.Assignments {
		m.Assign(i, v)
	}
	return m
}

var documentDecoder = hydrate.NewDecoder[Document](
	hydrate.WithPreHook[Document](defaultActiveIndex),
	hydrate.WithPostHook[Document](func(_ hydrate.Context, doc *Document) error {
		return doc.Validate()
	}),
)

// DecodeDocument converts a host property bag into a validated Document.
// mesh identifies the source in error messages.
func DecodeDocument(mesh string, payload map[string]any) (Document, error) {
	return documentDecoder.Decode(hydrate.Context{Mesh: mesh, Property: "recolor_props"}, payload)
}

// defaultActiveIndex treats a missing active index as Unset rather than 0.
func defaultActiveIndex(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	if _, ok := payload["active_palette_index"]; !ok {
		payload["active_palette_index"] = Unset
	}
	return payload, nil
}
