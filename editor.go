package recolor

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/goliatone/go-recolor/pkg/activity"
)

// Checkpoint reasons passed to the Checkpointer.
const (
	ReasonSetActivePalette = "Set Active Palette"
	ReasonAddPalette       = "Add Palette"
	ReasonRemovePalette    = "Remove Palette"
	ReasonRenamePalette    = "Rename Palette"
	ReasonDerivePalette    = "Derive Palette"
	ReasonAddColor         = "Add Color"
	ReasonRemoveColor      = "Remove Color"
	ReasonEditColor        = "Edit Color"
	ReasonEditLabel        = "Edit Label"
	ReasonRebuildBasis     = "Rebuild Basis"
)

// Editor is the command surface the presentation layer calls into. Every
// command performs the full lock-step update on the store, then repaints
// the mesh and requests an undo checkpoint as the edit requires.
//
// Color edits are coalesced per palette slot; every other edit checkpoints
// unconditionally. An Editor is not safe for concurrent use.
type Editor struct {
	mesh      Mesh
	store     *PaletteStore
	cfg       editorConfig
	coalescer *Coalescer
	emitter   *activity.Emitter
	logger    *slog.Logger
	evaluator Evaluator
	batch     batchState
}

// NewEditor binds mesh and store. A nil store starts empty with settings
// from WithConfig.
func NewEditor(mesh Mesh, store *PaletteStore, opts ...Option) *Editor {
	cfg := applyOptions(opts)
	if store == nil {
		store = NewPaletteStore(WithStoreConfig(cfg.config))
	}
	logger := cfg.logger
	if cfg.meshID != "" {
		logger = logger.With(slog.String("mesh", cfg.meshID))
	}
	return &Editor{
		mesh:      mesh,
		store:     store,
		cfg:       cfg,
		coalescer: NewCoalescer(cfg.config.CoalesceInterval, cfg.now),
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: len(cfg.activityHooks) > 0,
			MeshID:  cfg.meshID,
		}),
		logger: logger,
	}
}

// Store returns the palette store the editor mutates.
func (e *Editor) Store() *PaletteStore {
	return e.store
}

// Mesh returns the edited mesh.
func (e *Editor) Mesh() Mesh {
	return e.mesh
}

// Assignments returns the mesh's assignment map, or nil before the basis has
// been built.
func (e *Editor) Assignments() *AssignmentMap {
	return Assignments(e.mesh, e.cfg.config.AttributeName)
}

// Snapshot captures the store and assignments for persistence.
func (e *Editor) Snapshot() Document {
	return e.store.Snapshot(e.Assignments())
}

// Reapply repaints every assigned element from the active palette.
func (e *Editor) Reapply(context.Context) {
	e.requestRecolor(ReapplyActive)
}

// SetActivePalette activates index (clamped into range) and repaints.
func (e *Editor) SetActivePalette(ctx context.Context, index int) bool {
	previous := e.store.Active()
	if !e.store.SetActivePalette(index) {
		return false
	}
	active := e.store.Active()
	e.requestRecolor(ReapplyActive)
	if active == previous {
		return true
	}
	input := e.paletteInput(active)
	input.OldValue = previous
	input.NewValue = active
	e.emit(ctx, activity.BuildPaletteEvent(activity.VerbPaletteActivated, input))
	e.requestCheckpoint(ctx, ReasonSetActivePalette)
	return true
}

// AddPalette appends a copy of the basis palette and returns its index. On
// an empty store this creates the basis.
func (e *Editor) AddPalette(ctx context.Context, name string) int {
	index := e.store.AddPalette(name)
	e.requestRecolor(ReapplyActive)
	e.emit(ctx, activity.BuildPaletteEvent(activity.VerbPaletteAdded, e.paletteInput(index)))
	e.requestCheckpoint(ctx, ReasonAddPalette)
	return index
}

// RemovePalette removes the active palette. The basis cannot be removed.
func (e *Editor) RemovePalette(ctx context.Context) bool {
	return e.RemovePaletteAt(ctx, e.store.Active())
}

// RemovePaletteAt removes the palette at index and repaints from whichever
// palette is active afterwards.
func (e *Editor) RemovePaletteAt(ctx context.Context, index int) bool {
	input := e.paletteInput(index)
	if !e.store.RemovePalette(index) {
		return false
	}
	e.requestRecolor(ReapplyActive)
	e.emit(ctx, activity.BuildPaletteEvent(activity.VerbPaletteRemoved, input))
	e.requestCheckpoint(ctx, ReasonRemovePalette)
	return true
}

// RenamePalette renames a recolor palette.
func (e *Editor) RenamePalette(ctx context.Context, index int, name string) bool {
	input := e.paletteInput(index)
	if !e.store.RenamePalette(index, name) {
		return false
	}
	input.OldValue = input.PaletteName
	input.NewValue = name
	input.PaletteName = name
	e.emit(ctx, activity.BuildPaletteEvent(activity.VerbPaletteRenamed, input))
	e.requestCheckpoint(ctx, ReasonRenamePalette)
	return true
}

// AddColor appends c to every palette and returns the new slot. Nothing is
// assigned to the new slot yet, so the mesh is not repainted.
func (e *Editor) AddColor(ctx context.Context, c Color) int {
	slot := e.store.AddColor(c)
	input := e.paletteInput(Unset)
	input.Slot = slot
	input.NewValue = c.Hex()
	e.emit(ctx, activity.BuildSlotEvent(activity.VerbColorAdded, input))
	e.requestCheckpoint(ctx, ReasonAddColor)
	return slot
}

// RemoveColor removes slot from every palette, remaps the assignment map
// and repaints.
func (e *Editor) RemoveColor(ctx context.Context, slot int) bool {
	basis, _ := e.store.Color(BasisIndex, slot)
	if !e.store.RemoveColor(slot, e.Assignments()) {
		return false
	}
	// Slot keys shift after a removal.
	e.coalescer.Reset()
	e.requestRecolor(ReapplyActive)
	input := e.paletteInput(Unset)
	input.Slot = slot
	input.OldValue = basis.Hex()
	e.emit(ctx, activity.BuildSlotEvent(activity.VerbColorRemoved, input))
	e.requestCheckpoint(ctx, ReasonRemoveColor)
	return true
}

// EditColor sets one slot color in one palette. Elements assigned to slot
// are repainted when palette is active. Rapid edits to the same slot share
// one checkpoint.
func (e *Editor) EditColor(ctx context.Context, palette, slot int, c Color) bool {
	old, ok := e.store.Color(palette, slot)
	if !ok || !e.store.SetColor(palette, slot, c) {
		return false
	}
	if palette == e.store.Active() {
		e.requestRecolor(slot)
	}
	input := e.paletteInput(palette)
	input.Slot = slot
	input.OldValue = old.Hex()
	input.NewValue = c.Hex()
	e.emit(ctx, activity.BuildSlotEvent(activity.VerbColorEdited, input))
	if e.coalescer.Allow(input.PaletteID + "/" + strconv.Itoa(slot)) {
		e.requestCheckpoint(ctx, ReasonEditColor)
	}
	return true
}

// EditLabel renames a slot. Label edits always checkpoint.
func (e *Editor) EditLabel(ctx context.Context, slot int, label string) bool {
	old, _ := e.store.Label(slot)
	if !e.store.SetLabel(slot, label) {
		return false
	}
	input := e.paletteInput(Unset)
	input.Slot = slot
	input.OldValue = old
	input.NewValue = label
	e.emit(ctx, activity.BuildSlotEvent(activity.VerbLabelEdited, input))
	e.requestCheckpoint(ctx, ReasonEditLabel)
	return true
}

// RebuildBasisFromPaint scans the displayed colors into the basis palette
// and assignment map. The scan runs as one batch: the mesh is repainted and
// a checkpoint requested once at the end.
func (e *Editor) RebuildBasisFromPaint(ctx context.Context) BasisReport {
	var report BasisReport
	_ = e.Batch(ctx, func() error {
		report = BuildBasis(e.mesh, e.store, e.cfg.config.AttributeName)
		if report.Skipped {
			return nil
		}
		e.coalescer.Reset()
		e.requestRecolor(ReapplyActive)
		e.emit(ctx, activity.BuildBasisRebuiltEvent(e.paletteInput(BasisIndex), report.Added, report.Pruned))
		e.requestCheckpoint(ctx, ReasonRebuildBasis)
		return nil
	})
	e.logger.Debug("recolor: basis rebuilt",
		slog.Int("elements", report.Elements),
		slog.Int("added", report.Added),
		slog.Int("pruned", report.Pruned),
		slog.Bool("skipped", report.Skipped),
	)
	return report
}

// DerivePalette evaluates expression for every basis slot and appends the
// results as a new recolor palette. The active palette is not changed.
func (e *Editor) DerivePalette(ctx context.Context, name, expression string) (int, error) {
	evaluator, err := e.resolveEvaluator()
	if err != nil {
		return Unset, err
	}
	start := e.cfg.now()
	colors, err := DeriveColors(evaluator, e.store, expression)
	e.cfg.evaluatorLogger.LogEvaluation(EvaluatorLogEvent{
		Engine:     evaluator.Engine(),
		Expression: expression,
		Palette:    name,
		Slots:      len(colors),
		Duration:   e.cfg.now().Sub(start),
		Err:        err,
	})
	if err != nil {
		return Unset, err
	}
	index, err := e.store.addDerived(name, colors)
	if err != nil {
		return Unset, err
	}
	input := e.paletteInput(index)
	input.Metadata = map[string]any{"expression": expression}
	e.emit(ctx, activity.BuildPaletteEvent(activity.VerbPaletteDerived, input))
	e.requestCheckpoint(ctx, ReasonDerivePalette)
	return index, nil
}

func (e *Editor) resolveEvaluator() (Evaluator, error) {
	if e.evaluator != nil {
		return e.evaluator, nil
	}
	if e.cfg.evaluator != nil {
		e.evaluator = e.cfg.evaluator
		return e.evaluator, nil
	}
	cache := e.cfg.programCache
	if cache == nil {
		cache = MapProgramCache{}
	}
	evaluator, err := NewEvaluator(e.cfg.config.Evaluator, cache, e.cfg.functions)
	if err != nil {
		return nil, err
	}
	e.evaluator = evaluator
	return evaluator, nil
}

func (e *Editor) checkpoint(ctx context.Context, reason string) {
	if err := e.cfg.checkpointer.RequestCheckpoint(ctx, reason); err != nil {
		e.logger.Warn("recolor: checkpoint request failed", slog.String("reason", reason), slog.Any("err", err))
		return
	}
	e.emit(ctx, activity.BuildCheckpointEvent(e.cfg.meshID, reason, e.cfg.now()))
}

func (e *Editor) emit(ctx context.Context, event activity.Event) {
	if !e.emitter.Enabled() {
		return
	}
	event.ActorID = e.cfg.actorID
	event.TenantID = e.cfg.tenantID
	if err := e.emitter.Emit(ctx, event); err != nil {
		e.logger.Warn("recolor: activity hook failed", slog.String("verb", event.Verb), slog.Any("err", err))
	}
}

// paletteInput describes palette index for activity events. Unset yields an
// input without palette fields.
func (e *Editor) paletteInput(index int) activity.PaletteEventInput {
	input := activity.PaletteEventInput{
		MeshID:     e.cfg.meshID,
		Slot:       Unset,
		OccurredAt: e.cfg.now(),
	}
	if p, ok := e.store.Palette(index); ok {
		input.PaletteID = p.ID
		input.PaletteName = p.Name
	}
	return input
}
