package recolor

import (
	"context"
	"slices"
)

// batchState collects side effects deferred by Batch.
type batchState struct {
	depth      int
	recolorAll bool
	slots      []int
	reason     string
}

func (b *batchState) active() bool {
	return b.depth > 0
}

// Batch runs fn with repaints and checkpoint requests deferred until the
// outermost Batch returns. Then the mesh is repainted once (only the touched
// slots when no full repaint was requested) and at most one checkpoint is
// requested, carrying the first reason recorded in the batch. Side effects
// are flushed even when fn fails; its error is returned.
func (e *Editor) Batch(ctx context.Context, fn func() error) error {
	e.batch.depth++
	defer func() {
		e.batch.depth--
		if e.batch.depth == 0 {
			e.flush(ctx)
		}
	}()
	if fn == nil {
		return nil
	}
	return fn()
}

// InBatch reports whether side effects are currently deferred.
func (e *Editor) InBatch() bool {
	return e.batch.active()
}

func (e *Editor) requestRecolor(slot int) {
	if !e.batch.active() {
		ApplyPalette(e.mesh, e.store, e.cfg.config.AttributeName, slot)
		return
	}
	switch {
	case e.batch.recolorAll:
	case slot == ReapplyActive:
		e.batch.recolorAll = true
		e.batch.slots = nil
	case !slices.Contains(e.batch.slots, slot):
		e.batch.slots = append(e.batch.slots, slot)
	}
}

func (e *Editor) requestCheckpoint(ctx context.Context, reason string) {
	if !e.batch.active() {
		e.checkpoint(ctx, reason)
		return
	}
	if e.batch.reason == "" {
		e.batch.reason = reason
	}
}

func (e *Editor) flush(ctx context.Context) {
	pending := e.batch
	e.batch = batchState{}

	if pending.recolorAll {
		ApplyPalette(e.mesh, e.store, e.cfg.config.AttributeName, ReapplyActive)
	} else {
		for _, slot := range pending.slots {
			ApplyPalette(e.mesh, e.store, e.cfg.config.AttributeName, slot)
		}
	}
	if pending.reason != "" {
		e.checkpoint(ctx, pending.reason)
	}
}
