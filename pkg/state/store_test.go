package state_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/goliatone/go-recolor/pkg/state"
)

func storesUnderTest(t *testing.T) map[string]state.Store[swatches] {
	t.Helper()
	dir := t.TempDir()
	sqlite, err := state.OpenSQLiteStore[swatches](filepath.Join(dir, "state.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]state.Store[swatches]{
		"memory": state.NewMemoryStore[swatches](),
		"file":   state.NewFileStore[swatches](filepath.Join(dir, "files")),
		"sqlite": sqlite,
	}
}

func TestStoresRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			if _, _, ok, err := store.Load(ctx, cubeRef); err != nil || ok {
				t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
			}

			meta := state.Meta{
				SnapshotID: "snap-1",
				ETag:       "v1",
				UpdatedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
				Extra:      map[string]string{"tool": "cli"},
			}
			want := swatches{Colors: []string{"#ff0000", "#0000ff"}}
			if _, err := store.Save(ctx, cubeRef, want, meta); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, gotMeta, ok, err := store.Load(ctx, cubeRef)
			if err != nil || !ok {
				t.Fatalf("load: ok=%v err=%v", ok, err)
			}
			if !reflect.DeepEqual(want, got) {
				t.Fatalf("snapshot mismatch:\nwant: %#v\n got: %#v", want, got)
			}
			if gotMeta.SnapshotID != "snap-1" || gotMeta.ETag != "v1" || !gotMeta.UpdatedAt.Equal(meta.UpdatedAt) {
				t.Fatalf("meta mismatch: %+v", gotMeta)
			}
			if gotMeta.Extra["tool"] != "cli" {
				t.Fatalf("expected extra preserved, got %v", gotMeta.Extra)
			}

			other := state.Ref{Domain: "palettes", MeshID: "Sphere"}
			if _, _, ok, _ := store.Load(ctx, other); ok {
				t.Fatalf("expected refs to be isolated")
			}
		})
	}
}

func TestStoresWithResolverMutate(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			resolver := state.Resolver[swatches]{Store: store}
			_, first, err := resolver.Mutate(ctx, cubeRef, state.Meta{}, func(v *swatches) error {
				v.Colors = []string{"#ffffff"}
				return nil
			})
			if err != nil {
				t.Fatalf("first mutate: %v", err)
			}

			_, second, err := resolver.Mutate(ctx, cubeRef, state.Meta{ETag: first.ETag}, func(v *swatches) error {
				v.Colors = append(v.Colors, "#000000")
				return nil
			})
			if err != nil {
				t.Fatalf("second mutate: %v", err)
			}
			if second.ETag == first.ETag {
				t.Fatalf("expected etag to change")
			}

			_, _, err = resolver.Mutate(ctx, cubeRef, state.Meta{ETag: first.ETag}, func(v *swatches) error {
				return nil
			})
			if !errors.Is(err, state.ErrETagMismatch) {
				t.Fatalf("expected stale etag rejected, got %v", err)
			}

			got, _, _, _ := store.Load(ctx, cubeRef)
			if len(got.Colors) != 2 {
				t.Fatalf("expected two colors persisted, got %v", got.Colors)
			}
		})
	}
}

func TestRefIdentifier(t *testing.T) {
	key, err := state.Ref{Domain: "palettes", MeshID: " Cube.001 "}.Identifier()
	if err != nil || key != "palettes/Cube.001" {
		t.Fatalf("unexpected identifier %q err=%v", key, err)
	}
	for _, ref := range []state.Ref{
		{MeshID: "Cube"},
		{Domain: "palettes"},
		{Domain: "a/b", MeshID: "Cube"},
	} {
		if _, err := ref.Identifier(); !errors.Is(err, state.ErrInvalidRef) {
			t.Fatalf("expected ErrInvalidRef for %+v, got %v", ref, err)
		}
	}
}

func TestFileStoreEscapesMeshNames(t *testing.T) {
	dir := t.TempDir()
	store := state.NewFileStore[swatches](dir)
	ref := state.Ref{Domain: "palettes", MeshID: "rig/body"}

	if _, err := store.Save(context.Background(), ref, swatches{Colors: []string{"#123456"}}, state.Meta{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	path, err := store.Path(ref)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(dir, "palettes") {
		t.Fatalf("expected mesh name escaped into one file, got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file at %s: %v", path, err)
	}
}

func TestStoresListMeshes(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		lister, ok := store.(state.Lister)
		if !ok {
			continue
		}
		t.Run(name, func(t *testing.T) {
			for _, mesh := range []string{"Sphere", "Cube", "Suzanne/Head"} {
				if _, err := store.Save(ctx, state.Ref{Domain: "palettes", MeshID: mesh}, swatches{}, state.Meta{}); err != nil {
					t.Fatalf("save %s: %v", mesh, err)
				}
			}
			if _, err := store.Save(ctx, state.Ref{Domain: "other", MeshID: "Plane"}, swatches{}, state.Meta{}); err != nil {
				t.Fatalf("save other: %v", err)
			}
			meshes, err := lister.Meshes(ctx, "palettes")
			if err != nil {
				t.Fatalf("meshes: %v", err)
			}
			if !reflect.DeepEqual([]string{"Cube", "Sphere", "Suzanne/Head"}, meshes) {
				t.Fatalf("unexpected meshes %v", meshes)
			}
			empty, err := lister.Meshes(ctx, "missing")
			if err != nil || len(empty) != 0 {
				t.Fatalf("expected no meshes, got %v err=%v", empty, err)
			}
		})
	}
}

func TestStoresDetachLoadedSnapshots(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			saved := swatches{Colors: []string{"#ff0000"}}
			if _, err := store.Save(ctx, cubeRef, saved, state.Meta{}); err != nil {
				t.Fatalf("save: %v", err)
			}
			saved.Colors[0] = "#00ff00"

			loaded, _, _, err := store.Load(ctx, cubeRef)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			loaded.Colors[0] = "#0000ff"

			again, _, _, err := store.Load(ctx, cubeRef)
			if err != nil {
				t.Fatalf("reload: %v", err)
			}
			if again.Colors[0] != "#ff0000" {
				t.Fatalf("expected stored snapshot untouched, got %v", again.Colors)
			}
		})
	}
}
