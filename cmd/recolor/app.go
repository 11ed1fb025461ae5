package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	recolor "github.com/goliatone/go-recolor"
	"github.com/goliatone/go-recolor/pkg/activity"
	"github.com/goliatone/go-recolor/pkg/state"
)

// documentDomain groups palette documents in the state store.
const documentDomain = "palettes"

type app struct {
	configPath string
	statePath  string
	actor      string
	verbose    bool
	overrides  recolor.Config
	policy     string

	cfg    recolor.Config
	logger *slog.Logger
}

func (a *app) setup(stderr io.Writer) error {
	overrides := a.overrides
	overrides.RemovedSlotPolicy = recolor.RemovedSlotPolicy(a.policy)
	cfg, err := recolor.LoadConfig(a.configPath, overrides)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// openStore picks the state backend from the path: a .db file is a SQLite
// database, anything else a directory of JSON documents.
func (a *app) openStore() (state.Store[recolor.Document], func() error, error) {
	if strings.EqualFold(filepath.Ext(a.statePath), ".db") {
		if err := os.MkdirAll(filepath.Dir(a.statePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create state dir: %w", err)
		}
		store, err := state.OpenSQLiteStore[recolor.Document](a.statePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	return state.NewFileStore[recolor.Document](a.statePath), func() error { return nil }, nil
}

// edit restores the palette document of the mesh at meshPath, runs fn
// against an Editor bound to it and persists both the document and the
// repainted mesh.
func (a *app) edit(ctx context.Context, meshPath string, fn func(*recolor.Editor) error) (recolor.Document, state.Meta, error) {
	mesh, err := readMesh(meshPath)
	if err != nil {
		return recolor.Document{}, state.Meta{}, err
	}
	store, closeStore, err := a.openStore()
	if err != nil {
		return recolor.Document{}, state.Meta{}, err
	}
	defer closeStore()

	id := meshID(meshPath)
	resolver := state.Resolver[recolor.Document]{Store: store}
	doc, meta, err := resolver.Mutate(ctx, documentRef(id), state.Meta{}, func(doc *recolor.Document) error {
		if len(doc.Palettes) == 0 {
			*doc = recolor.EmptyDocument()
		}
		palettes, err := recolor.RestoreStore(*doc, recolor.WithStoreConfig(a.cfg))
		if err != nil {
			return err
		}
		recolor.RestoreAssignments(mesh, a.cfg.AttributeName, *doc)
		editor := recolor.NewEditor(mesh, palettes, a.editorOptions(id)...)
		if err := fn(editor); err != nil {
			return err
		}
		*doc = editor.Snapshot()
		return nil
	})
	if err != nil {
		return recolor.Document{}, state.Meta{}, err
	}
	if err := writeMesh(meshPath, mesh); err != nil {
		return recolor.Document{}, state.Meta{}, err
	}
	a.logger.Debug("recolor: document saved",
		slog.String("mesh", id),
		slog.String("snapshot_id", meta.SnapshotID),
		slog.Int("palettes", len(doc.Palettes)),
	)
	return doc, meta, nil
}

// load resolves the stored document without modifying anything.
func (a *app) load(ctx context.Context, id string) (recolor.Document, state.Meta, error) {
	store, closeStore, err := a.openStore()
	if err != nil {
		return recolor.Document{}, state.Meta{}, err
	}
	defer closeStore()
	resolver := state.Resolver[recolor.Document]{Store: store}
	return resolver.Resolve(ctx, documentRef(id), recolor.EmptyDocument())
}

func (a *app) meshes(ctx context.Context) ([]string, error) {
	store, closeStore, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer closeStore()
	lister, ok := store.(state.Lister)
	if !ok {
		return nil, fmt.Errorf("state store %q cannot list meshes", a.statePath)
	}
	return lister.Meshes(ctx, documentDomain)
}

func (a *app) editorOptions(id string) []recolor.Option {
	logger := a.logger
	return []recolor.Option{
		recolor.WithConfig(a.cfg),
		recolor.WithLogger(logger),
		recolor.WithMeshID(id),
		recolor.WithActor(a.actor, ""),
		recolor.WithCheckpointer(recolor.CheckpointerFunc(func(_ context.Context, reason string) error {
			logger.Debug("recolor: checkpoint", slog.String("reason", reason))
			return nil
		})),
		recolor.WithActivityHooks(activity.Hooks{
			activity.HookFunc(func(_ context.Context, event activity.Event) error {
				logger.Info(event.Verb,
					slog.String("object_type", event.ObjectType),
					slog.String("object_id", event.ObjectID),
				)
				return nil
			}),
		}),
	}
}

func documentRef(id string) state.Ref {
	return state.Ref{Domain: documentDomain, MeshID: id}
}

// meshID names a mesh by its file name without extension.
func meshID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readMesh(path string) (*recolor.MemoryMesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mesh: %w", err)
	}
	var mesh recolor.MemoryMesh
	if err := json.Unmarshal(data, &mesh); err != nil {
		return nil, fmt.Errorf("decode mesh %s: %w", path, err)
	}
	return &mesh, nil
}

func writeMesh(path string, mesh *recolor.MemoryMesh) error {
	data, err := json.MarshalIndent(mesh, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mesh: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write mesh: %w", err)
	}
	return nil
}
