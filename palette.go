package recolor

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

const (
	// Unset is the active palette index of a store without a selection.
	Unset = -1
	// BasisIndex is the position of the basis palette.
	BasisIndex = 0
	// DefaultBasisName is the fixed display name of the basis palette.
	DefaultBasisName = "Basis"
	// DefaultPaletteName names palettes added without an explicit name.
	DefaultPaletteName = "Untitled Palette"
)

// RemovedSlotPolicy decides what happens to elements assigned to a slot that
// is being removed.
type RemovedSlotPolicy string

const (
	// RemovedSlotUnassign marks the affected elements Unassigned.
	RemovedSlotUnassign RemovedSlotPolicy = "unassign"
	// RemovedSlotKeep leaves the numeric assignment untouched, so the elements
	// end up pointing at whichever slot shifted into the removed position.
	RemovedSlotKeep RemovedSlotPolicy = "keep"
	// RemovedSlotNearest remaps the elements to the surviving basis color
	// closest to the removed one.
	RemovedSlotNearest RemovedSlotPolicy = "nearest"
)

// Valid reports whether p names a known policy.
func (p RemovedSlotPolicy) Valid() bool {
	switch p {
	case RemovedSlotUnassign, RemovedSlotKeep, RemovedSlotNearest:
		return true
	default:
		return false
	}
}

// Palette is one ordered set of slot colors. Index i of every palette in a
// store refers to the same logical slot.
type Palette struct {
	ID     string
	Name   string
	Colors []Color
}

func (p Palette) clone() Palette {
	return Palette{ID: p.ID, Name: p.Name, Colors: slices.Clone(p.Colors)}
}

// PaletteStore holds the basis palette, the recolor palettes and the shared
// slot labels of one mesh. Every palette always has exactly one color per
// label; all mutation goes through methods that keep them in lock-step.
type PaletteStore struct {
	palettes []Palette
	labels   []string
	active   int

	basisName    string
	paletteName  string
	defaultLabel string
	policy       RemovedSlotPolicy
}

// StoreOption configures a PaletteStore.
type StoreOption func(*PaletteStore)

// WithStoreConfig applies the naming and removal settings from cfg.
func WithStoreConfig(cfg Config) StoreOption {
	return func(s *PaletteStore) {
		if cfg.BasisName != "" {
			s.basisName = cfg.BasisName
		}
		if cfg.PaletteName != "" {
			s.paletteName = cfg.PaletteName
		}
		s.defaultLabel = cfg.DefaultLabel
		if cfg.RemovedSlotPolicy.Valid() {
			s.policy = cfg.RemovedSlotPolicy
		}
	}
}

// WithRemovedSlotPolicy sets the policy RemoveColor applies.
func WithRemovedSlotPolicy(policy RemovedSlotPolicy) StoreOption {
	return func(s *PaletteStore) {
		if policy.Valid() {
			s.policy = policy
		}
	}
}

// NewPaletteStore returns an empty store with no active palette.
func NewPaletteStore(opts ...StoreOption) *PaletteStore {
	s := &PaletteStore{
		active:      Unset,
		basisName:   DefaultBasisName,
		paletteName: DefaultPaletteName,
		policy:      RemovedSlotUnassign,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Len returns the number of palettes including the basis.
func (s *PaletteStore) Len() int {
	return len(s.palettes)
}

// ColorCount returns the number of slots.
func (s *PaletteStore) ColorCount() int {
	if len(s.palettes) == 0 {
		return 0
	}
	return len(s.palettes[BasisIndex].Colors)
}

// Active returns the active palette index or Unset.
func (s *PaletteStore) Active() int {
	return s.active
}

// Policy returns the removed-slot policy applied by RemoveColor.
func (s *PaletteStore) Policy() RemovedSlotPolicy {
	return s.policy
}

// Palette returns a copy of palette index.
func (s *PaletteStore) Palette(index int) (Palette, bool) {
	if index < 0 || index >= len(s.palettes) {
		return Palette{}, false
	}
	return s.palettes[index].clone(), true
}

// ActivePalette returns a copy of the active palette.
func (s *PaletteStore) ActivePalette() (Palette, bool) {
	return s.Palette(s.active)
}

// Palettes returns copies of every palette, basis first.
func (s *PaletteStore) Palettes() []Palette {
	out := make([]Palette, len(s.palettes))
	for i, p := range s.palettes {
		out[i] = p.clone()
	}
	return out
}

// BasisColors returns a copy of the basis palette colors.
func (s *PaletteStore) BasisColors() []Color {
	if len(s.palettes) == 0 {
		return nil
	}
	return slices.Clone(s.palettes[BasisIndex].Colors)
}

// Labels returns a copy of the slot labels.
func (s *PaletteStore) Labels() []string {
	return slices.Clone(s.labels)
}

// Label returns the label of slot.
func (s *PaletteStore) Label(slot int) (string, bool) {
	if slot < 0 || slot >= len(s.labels) {
		return "", false
	}
	return s.labels[slot], true
}

// Color returns the color of slot in palette. Out-of-range indices are a
// normal condition and report false.
func (s *PaletteStore) Color(palette, slot int) (Color, bool) {
	if palette < 0 || palette >= len(s.palettes) {
		return Color{}, false
	}
	colors := s.palettes[palette].Colors
	if slot < 0 || slot >= len(colors) {
		return Color{}, false
	}
	return colors[slot], true
}

// ensureBasis creates an empty basis palette on a store without palettes.
func (s *PaletteStore) ensureBasis() {
	if len(s.palettes) > 0 {
		return
	}
	s.palettes = append(s.palettes, Palette{ID: uuid.NewString(), Name: s.basisName})
	s.labels = nil
}

// SetActivePalette clamps index into range, makes it active and
// resynchronises the label count with the basis. It reports false on a store
// without palettes.
func (s *PaletteStore) SetActivePalette(index int) bool {
	if len(s.palettes) == 0 {
		return false
	}
	s.active = max(min(index, len(s.palettes)-1), 0)
	s.syncLabels()
	return true
}

func (s *PaletteStore) syncLabels() {
	want := s.ColorCount()
	for len(s.labels) < want {
		s.labels = append(s.labels, s.defaultLabel)
	}
	if len(s.labels) > want {
		s.labels = s.labels[:want]
	}
}

// AddPalette appends a value copy of the basis palette and returns its index.
// On an empty store the new palette becomes the basis. The active palette is
// not changed.
func (s *PaletteStore) AddPalette(name string) int {
	if len(s.palettes) == 0 {
		s.ensureBasis()
		return BasisIndex
	}
	if name == "" {
		name = s.paletteName
	}
	s.palettes = append(s.palettes, Palette{
		ID:     uuid.NewString(),
		Name:   name,
		Colors: slices.Clone(s.palettes[BasisIndex].Colors),
	})
	return len(s.palettes) - 1
}

// addDerived appends a palette built from colors, which must have one entry
// per slot.
func (s *PaletteStore) addDerived(name string, colors []Color) (int, error) {
	if len(s.palettes) == 0 {
		return -1, fmt.Errorf("recolor: basis palette missing")
	}
	if len(colors) != s.ColorCount() {
		return -1, fmt.Errorf("recolor: derived palette has %d colors, basis has %d", len(colors), s.ColorCount())
	}
	if name == "" {
		name = s.paletteName
	}
	s.palettes = append(s.palettes, Palette{ID: uuid.NewString(), Name: name, Colors: slices.Clone(colors)})
	return len(s.palettes) - 1, nil
}

// RemovePalette removes a recolor palette. The basis and out-of-range
// indices are refused. When a palette before the active one is removed the
// same palette stays active; otherwise the active index is clamped into the
// remaining range.
func (s *PaletteStore) RemovePalette(index int) bool {
	if index <= BasisIndex || index >= len(s.palettes) {
		return false
	}
	s.palettes = slices.Delete(s.palettes, index, index+1)
	switch {
	case s.active == Unset:
	case index < s.active:
		s.active--
	case s.active >= len(s.palettes):
		s.active = len(s.palettes) - 1
	}
	return true
}

// RenamePalette renames a recolor palette. The basis name is fixed.
func (s *PaletteStore) RenamePalette(index int, name string) bool {
	if index <= BasisIndex || index >= len(s.palettes) {
		return false
	}
	s.palettes[index].Name = name
	return true
}

// AddColor appends c to every palette and a default label, creating the
// basis first when needed. It returns the new slot index.
func (s *PaletteStore) AddColor(c Color) int {
	s.ensureBasis()
	for i := range s.palettes {
		s.palettes[i].Colors = append(s.palettes[i].Colors, c)
	}
	s.labels = append(s.labels, s.defaultLabel)
	return len(s.labels) - 1
}

// SetColor replaces one slot color in one palette.
func (s *PaletteStore) SetColor(palette, slot int, c Color) bool {
	if _, ok := s.Color(palette, slot); !ok {
		return false
	}
	s.palettes[palette].Colors[slot] = c
	return true
}

// SetLabel renames slot.
func (s *PaletteStore) SetLabel(slot int, label string) bool {
	if slot < 0 || slot >= len(s.labels) {
		return false
	}
	s.labels[slot] = label
	return true
}

// RemoveColor removes slot from every palette and the labels, then remaps
// assignments: elements above slot shift down by one and elements on slot
// are handled by the store's RemovedSlotPolicy. assignments may be nil.
func (s *PaletteStore) RemoveColor(slot int, assignments *AssignmentMap) bool {
	if slot < 0 || slot >= s.ColorCount() {
		return false
	}
	removed := s.palettes[BasisIndex].Colors[slot]
	for i := range s.palettes {
		s.palettes[i].Colors = slices.Delete(s.palettes[i].Colors, slot, slot+1)
	}
	if slot < len(s.labels) {
		s.labels = slices.Delete(s.labels, slot, slot+1)
	}
	s.syncLabels()

	if assignments == nil {
		return true
	}
	switch s.policy {
	case RemovedSlotUnassign:
		assignments.Replace(slot, Unassigned)
	case RemovedSlotNearest:
		survivors := s.palettes[BasisIndex].Colors
		if len(survivors) == 0 {
			assignments.Replace(slot, Unassigned)
			break
		}
		target := nearestIndex(survivors, removed)
		// Expressed in pre-removal indices so DecrementAbove shifts it too.
		if target >= slot {
			target++
		}
		assignments.Replace(slot, target)
	}
	assignments.DecrementAbove(slot)
	return true
}

// Validate checks the lock-step invariant and the active index.
func (s *PaletteStore) Validate() error {
	if len(s.palettes) == 0 {
		if len(s.labels) != 0 {
			return fmt.Errorf("%w: %d labels without a basis palette", ErrInvalidDocument, len(s.labels))
		}
		if s.active != Unset {
			return fmt.Errorf("%w: active palette %d without palettes", ErrInvalidDocument, s.active)
		}
		return nil
	}
	want := len(s.palettes[BasisIndex].Colors)
	if len(s.labels) != want {
		return fmt.Errorf("%w: %d labels for %d slots", ErrInvalidDocument, len(s.labels), want)
	}
	for i, p := range s.palettes {
		if len(p.Colors) != want {
			return fmt.Errorf("%w: palette %d has %d colors, basis has %d", ErrInvalidDocument, i, len(p.Colors), want)
		}
	}
	if s.active < Unset || s.active >= len(s.palettes) {
		return fmt.Errorf("%w: active palette %d out of range", ErrInvalidDocument, s.active)
	}
	return nil
}
