package recolor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-recolor/pkg/activity"
)

type recordingCheckpointer struct {
	reasons []string
	err     error
}

func (c *recordingCheckpointer) RequestCheckpoint(_ context.Context, reason string) error {
	c.reasons = append(c.reasons, reason)
	return c.err
}

func newTestEditor(t *testing.T, mesh *MemoryMesh, opts ...Option) (*Editor, *recordingCheckpointer, *fakeClock) {
	t.Helper()
	checkpoints := &recordingCheckpointer{}
	clock := newFakeClock()
	opts = append([]Option{WithCheckpointer(checkpoints), WithClock(clock.Now)}, opts...)
	return NewEditor(mesh, nil, opts...), checkpoints, clock
}

func TestEditorEndToEnd(t *testing.T) {
	ctx := context.Background()
	mesh := NewMemoryMesh(red, red, blue)
	editor, checkpoints, _ := newTestEditor(t, mesh)

	report := editor.RebuildBasisFromPaint(ctx)
	if report.Added != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if got := editor.Assignments().Values(); !reflect.DeepEqual([]int{0, 0, 1}, got) {
		t.Fatalf("unexpected assignments %v", got)
	}

	alt := editor.AddPalette(ctx, "")
	p, _ := editor.Store().Palette(alt)
	if !reflect.DeepEqual([]Color{red, blue}, p.Colors) {
		t.Fatalf("expected copy of basis, got %v", p.Colors)
	}

	editor.EditColor(ctx, alt, 1, green)
	if got := mesh.Displayed(); !reflect.DeepEqual([]Color{red, red, blue}, got) {
		t.Fatalf("editing an inactive palette must not repaint, got %v", got)
	}

	editor.SetActivePalette(ctx, alt)
	if got := mesh.Displayed(); !reflect.DeepEqual([]Color{red, red, green}, got) {
		t.Fatalf("unexpected display %v", got)
	}

	want := []string{ReasonRebuildBasis, ReasonAddPalette, ReasonEditColor, ReasonSetActivePalette}
	if !reflect.DeepEqual(want, checkpoints.reasons) {
		t.Fatalf("unexpected checkpoints:\nwant: %v\n got: %v", want, checkpoints.reasons)
	}
}

func TestEditorEditColorCoalescesPerSlot(t *testing.T) {
	ctx := context.Background()
	mesh := NewMemoryMesh(red, blue)
	editor, checkpoints, clock := newTestEditor(t, mesh)
	editor.RebuildBasisFromPaint(ctx)
	checkpoints.reasons = nil

	shades := []Color{RGB(0.9, 0, 0), RGB(0.8, 0, 0), RGB(0.7, 0, 0), RGB(0.6, 0, 0)}
	steps := []time.Duration{0, 500 * time.Millisecond, 500 * time.Millisecond, 600 * time.Millisecond}
	for i, step := range steps {
		clock.Advance(step)
		editor.EditColor(ctx, BasisIndex, 0, shades[i])
		if i == 1 {
			editor.EditColor(ctx, BasisIndex, 1, white)
		}
	}

	if got := len(checkpoints.reasons); got != 3 {
		t.Fatalf("expected 2 checkpoints on slot 0 and 1 on slot 1, got %v", checkpoints.reasons)
	}
	if got := mesh.Displayed(); !reflect.DeepEqual([]Color{shades[3], white}, got) {
		t.Fatalf("expected every edit repainted, got %v", got)
	}
}

func TestEditorLabelEditsAlwaysCheckpoint(t *testing.T) {
	ctx := context.Background()
	editor, checkpoints, _ := newTestEditor(t, NewMemoryMesh(red))
	editor.RebuildBasisFromPaint(ctx)
	checkpoints.reasons = nil

	editor.EditLabel(ctx, 0, "skin")
	editor.EditLabel(ctx, 0, "skin tone")
	if editor.EditLabel(ctx, 3, "nope") {
		t.Fatalf("expected out-of-range label edit refused")
	}

	if !reflect.DeepEqual([]string{ReasonEditLabel, ReasonEditLabel}, checkpoints.reasons) {
		t.Fatalf("unexpected checkpoints %v", checkpoints.reasons)
	}
	if label, _ := editor.Store().Label(0); label != "skin tone" {
		t.Fatalf("unexpected label %q", label)
	}
}

func TestEditorBatchDefersSideEffects(t *testing.T) {
	ctx := context.Background()
	mesh := NewMemoryMesh(red, blue, white)
	editor, checkpoints, _ := newTestEditor(t, mesh)
	editor.RebuildBasisFromPaint(ctx)
	checkpoints.reasons = nil

	err := editor.Batch(ctx, func() error {
		editor.EditColor(ctx, BasisIndex, 0, green)
		_ = editor.Batch(ctx, func() error {
			editor.EditColor(ctx, BasisIndex, 1, green)
			editor.EditLabel(ctx, 1, "sky")
			return nil
		})
		if !editor.InBatch() {
			t.Fatalf("expected outer batch still open")
		}
		if len(checkpoints.reasons) != 0 {
			t.Fatalf("expected checkpoints deferred, got %v", checkpoints.reasons)
		}
		if got := mesh.Displayed(); !reflect.DeepEqual([]Color{red, blue, white}, got) {
			t.Fatalf("expected repaint deferred, got %v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}

	if !reflect.DeepEqual([]string{ReasonEditColor}, checkpoints.reasons) {
		t.Fatalf("expected one checkpoint, got %v", checkpoints.reasons)
	}
	if got := mesh.Displayed(); !reflect.DeepEqual([]Color{green, green, white}, got) {
		t.Fatalf("unexpected display %v", got)
	}
}

func TestEditorBatchFlushesOnError(t *testing.T) {
	ctx := context.Background()
	mesh := NewMemoryMesh(red)
	editor, checkpoints, _ := newTestEditor(t, mesh)
	editor.RebuildBasisFromPaint(ctx)
	checkpoints.reasons = nil
	boom := errors.New("boom")

	err := editor.Batch(ctx, func() error {
		editor.EditColor(ctx, BasisIndex, 0, blue)
		return boom
	})

	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error returned, got %v", err)
	}
	if editor.InBatch() || len(checkpoints.reasons) != 1 {
		t.Fatalf("expected batch closed with one checkpoint, got %v", checkpoints.reasons)
	}
	if got := mesh.Displayed(); !reflect.DeepEqual([]Color{blue}, got) {
		t.Fatalf("expected repaint flushed, got %v", got)
	}
}

func TestEditorRemovePalette(t *testing.T) {
	ctx := context.Background()
	mesh := NewMemoryMesh(red, blue)
	editor, checkpoints, _ := newTestEditor(t, mesh)
	editor.RebuildBasisFromPaint(ctx)

	if editor.RemovePalette(ctx) {
		t.Fatalf("expected basis removal refused")
	}

	alt := editor.AddPalette(ctx, "night")
	editor.EditColor(ctx, alt, 0, green)
	editor.SetActivePalette(ctx, alt)
	checkpoints.reasons = nil

	if !editor.RemovePalette(ctx) {
		t.Fatalf("expected active palette removed")
	}
	if editor.Store().Active() != BasisIndex {
		t.Fatalf("expected basis active, got %d", editor.Store().Active())
	}
	if got := mesh.Displayed(); !reflect.DeepEqual([]Color{red, blue}, got) {
		t.Fatalf("expected basis repainted, got %v", got)
	}
	if !reflect.DeepEqual([]string{ReasonRemovePalette}, checkpoints.reasons) {
		t.Fatalf("unexpected checkpoints %v", checkpoints.reasons)
	}
}

func TestEditorRemoveColorRemapsAndRepaints(t *testing.T) {
	ctx := context.Background()
	mesh := NewMemoryMesh(red, blue, white)
	editor, _, _ := newTestEditor(t, mesh)
	editor.RebuildBasisFromPaint(ctx)
	alt := editor.AddPalette(ctx, "")
	editor.EditColor(ctx, alt, 2, green)
	editor.SetActivePalette(ctx, alt)

	if !editor.RemoveColor(ctx, 1) {
		t.Fatalf("expected removal")
	}

	if got := editor.Assignments().Values(); !reflect.DeepEqual([]int{0, Unassigned, 1}, got) {
		t.Fatalf("unexpected assignments %v", got)
	}
	if got := mesh.Displayed(); !reflect.DeepEqual([]Color{red, blue, green}, got) {
		t.Fatalf("unexpected display %v", got)
	}
	if err := editor.Store().Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestEditorAddColorDoesNotRepaint(t *testing.T) {
	ctx := context.Background()
	mesh := NewMemoryMesh(red)
	editor, checkpoints, _ := newTestEditor(t, mesh)
	editor.RebuildBasisFromPaint(ctx)
	checkpoints.reasons = nil

	slot := editor.AddColor(ctx, blue)

	if slot != 1 || editor.Store().ColorCount() != 2 {
		t.Fatalf("unexpected slot %d", slot)
	}
	if !reflect.DeepEqual([]string{ReasonAddColor}, checkpoints.reasons) {
		t.Fatalf("unexpected checkpoints %v", checkpoints.reasons)
	}
}

func TestEditorEmitsActivity(t *testing.T) {
	ctx := context.Background()
	capture := &activity.CaptureHook{}
	editor, _, _ := newTestEditor(t, NewMemoryMesh(red, blue),
		WithActivityHooks(activity.Hooks{capture}),
		WithMeshID("Cube"),
		WithActor("actor-1", "tenant-1"),
	)

	editor.RebuildBasisFromPaint(ctx)
	alt := editor.AddPalette(ctx, "night")
	editor.RenamePalette(ctx, alt, "dawn")
	editor.EditColor(ctx, alt, 0, green)

	want := []string{
		activity.VerbBasisRebuilt, activity.VerbCheckpointRequested,
		activity.VerbPaletteAdded, activity.VerbCheckpointRequested,
		activity.VerbPaletteRenamed, activity.VerbCheckpointRequested,
		activity.VerbColorEdited, activity.VerbCheckpointRequested,
	}
	if got := capture.Verbs(); !reflect.DeepEqual(want, got) {
		t.Fatalf("unexpected verbs:\nwant: %v\n got: %v", want, got)
	}
	for _, event := range capture.Events {
		if event.MeshID != "Cube" || event.Channel != activity.DefaultChannel || event.ActorID != "actor-1" {
			t.Fatalf("unexpected event context %+v", event)
		}
	}
	renamed := capture.Events[4]
	if renamed.Metadata["old_value"] != "night" || renamed.Metadata["new_value"] != "dawn" {
		t.Fatalf("unexpected rename metadata %v", renamed.Metadata)
	}
}

func TestEditorLogsCheckpointFailures(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	failing := &recordingCheckpointer{err: errors.New("undo stack locked")}
	mesh := NewMemoryMesh(red)
	editor := NewEditor(mesh, nil, WithCheckpointer(failing), WithLogger(logger))

	editor.RebuildBasisFromPaint(ctx)
	editor.EditColor(ctx, BasisIndex, 0, blue)

	if got := mesh.Displayed(); !reflect.DeepEqual([]Color{blue}, got) {
		t.Fatalf("expected edit applied despite checkpoint failure, got %v", got)
	}
	if !strings.Contains(buf.String(), "checkpoint request failed") || !strings.Contains(buf.String(), "undo stack locked") {
		t.Fatalf("expected failure logged, got %q", buf.String())
	}
}

func TestEditorUsesConfiguredAttribute(t *testing.T) {
	ctx := context.Background()
	mesh := NewMemoryMesh(red, blue)
	editor, _, _ := newTestEditor(t, mesh, WithConfig(Config{AttributeName: "Swatch"}))

	editor.RebuildBasisFromPaint(ctx)

	if Assignments(mesh, "Swatch") == nil || Assignments(mesh, DefaultAttributeName) != nil {
		t.Fatalf("expected assignments under the configured attribute, got %v", mesh.Attributes)
	}
}
