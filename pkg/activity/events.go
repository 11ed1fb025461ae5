package activity

import (
	"strconv"
	"strings"
	"time"
)

// Verbs emitted by the palette editor.
const (
	VerbPaletteAdded        = "recolor.palette.added"
	VerbPaletteRemoved      = "recolor.palette.removed"
	VerbPaletteActivated    = "recolor.palette.activated"
	VerbPaletteRenamed      = "recolor.palette.renamed"
	VerbPaletteDerived      = "recolor.palette.derived"
	VerbColorAdded          = "recolor.color.added"
	VerbColorRemoved        = "recolor.color.removed"
	VerbColorEdited         = "recolor.color.edited"
	VerbLabelEdited         = "recolor.label.edited"
	VerbBasisRebuilt        = "recolor.basis.rebuilt"
	VerbCheckpointRequested = "recolor.checkpoint.requested"
)

const (
	objectTypePalette    = "palette"
	objectTypeSlot       = "palette.slot"
	objectTypeMesh       = "mesh"
	objectTypeCheckpoint = "checkpoint"

	noSlot = -1
)

// PaletteEventInput carries the fields shared by palette edit events.
type PaletteEventInput struct {
	ActorID     string
	TenantID    string
	MeshID      string
	PaletteID   string
	PaletteName string
	// Slot is the color slot touched by the edit, or -1.
	Slot       int
	OldValue   any
	NewValue   any
	Metadata   map[string]any
	OccurredAt time.Time
}

// NoSlot returns input with Slot cleared, for palette-level edits.
func (input PaletteEventInput) NoSlot() PaletteEventInput {
	input.Slot = noSlot
	return input
}

// BuildPaletteEvent builds the event for a palette-level verb such as
// VerbPaletteAdded or VerbPaletteRenamed.
func BuildPaletteEvent(verb string, input PaletteEventInput) Event {
	return buildEvent(verb, objectTypePalette, input.PaletteID, input)
}

// BuildSlotEvent builds the event for a slot-level verb such as
// VerbColorEdited. The object id is "<palette>/<slot>", or the slot alone
// for verbs that touch every palette.
func BuildSlotEvent(verb string, input PaletteEventInput) Event {
	objectID := strconv.Itoa(input.Slot)
	if id := strings.TrimSpace(input.PaletteID); id != "" {
		objectID = id + "/" + objectID
	}
	return buildEvent(verb, objectTypeSlot, objectID, input)
}

// BuildBasisRebuiltEvent reports a basis rebuild from painted colors.
func BuildBasisRebuiltEvent(input PaletteEventInput, added, pruned int) Event {
	input.Metadata = cloneMap(input.Metadata)
	if input.Metadata == nil {
		input.Metadata = map[string]any{}
	}
	input.Metadata["added"] = added
	input.Metadata["pruned"] = pruned
	return buildEvent(VerbBasisRebuilt, objectTypeMesh, input.MeshID, input.NoSlot())
}

// BuildCheckpointEvent reports an undo checkpoint request.
func BuildCheckpointEvent(meshID, reason string, at time.Time) Event {
	return buildEvent(VerbCheckpointRequested, objectTypeCheckpoint, reason, PaletteEventInput{
		MeshID:     meshID,
		Slot:       noSlot,
		OccurredAt: at,
	})
}

func buildEvent(verb, objectType, objectID string, input PaletteEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if input.PaletteName != "" {
		set("palette_name", input.PaletteName)
	}
	if input.PaletteID != "" && objectType != objectTypePalette {
		set("palette_id", input.PaletteID)
	}
	if input.Slot >= 0 {
		set("slot", input.Slot)
	}
	if input.OldValue != nil {
		set("old_value", input.OldValue)
	}
	if input.NewValue != nil {
		set("new_value", input.NewValue)
	}

	objectID = strings.TrimSpace(objectID)
	if objectID == "" {
		objectID = objectType
	}
	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		MeshID:     strings.TrimSpace(input.MeshID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
