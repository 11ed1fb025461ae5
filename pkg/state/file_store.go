package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore keeps one JSON file per Ref under Root, laid out as
// <root>/<domain>/<escaped mesh>.json.
type FileStore[T any] struct {
	Root string
	mu   sync.Mutex
}

type fileEnvelope[T any] struct {
	Meta     Meta `json:"meta"`
	Snapshot T    `json:"snapshot"`
}

func NewFileStore[T any](root string) *FileStore[T] {
	return &FileStore[T]{Root: root}
}

// Path returns the file backing ref.
func (s *FileStore[T]) Path(ref Ref) (string, error) {
	if _, err := ref.Identifier(); err != nil {
		return "", err
	}
	name := url.PathEscape(strings.TrimSpace(ref.MeshID)) + ".json"
	return filepath.Join(s.Root, strings.TrimSpace(ref.Domain), name), nil
}

func (s *FileStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	path, err := s.Path(ref)
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(path)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return zero, Meta{}, false, nil
	}
	if err != nil {
		return zero, Meta{}, false, fmt.Errorf("read %s: %w", path, err)
	}

	var envelope fileEnvelope[T]
	if err := json.Unmarshal(data, &envelope); err != nil {
		return zero, Meta{}, false, fmt.Errorf("decode %s: %w", path, err)
	}
	return envelope.Snapshot, envelope.Meta, true, nil
}

// Save writes the snapshot to a temp file and renames it into place.
func (s *FileStore[T]) Save(_ context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	path, err := s.Path(ref)
	if err != nil {
		return Meta{}, err
	}
	data, err := json.MarshalIndent(fileEnvelope[T]{Meta: meta, Snapshot: snapshot}, "", "  ")
	if err != nil {
		return Meta{}, fmt.Errorf("encode %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Meta{}, fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".recolor-*.json")
	if err != nil {
		return Meta{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return Meta{}, fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return Meta{}, fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Meta{}, fmt.Errorf("rename to %s: %w", path, err)
	}
	return cloneMeta(meta), nil
}

// Meshes lists the mesh ids stored under domain.
func (s *FileStore[T]) Meshes(_ context.Context, domain string) ([]string, error) {
	dir := filepath.Join(s.Root, strings.TrimSpace(domain))
	s.mu.Lock()
	entries, err := os.ReadDir(dir)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var meshes []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		mesh, err := url.PathUnescape(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		meshes = append(meshes, mesh)
	}
	sort.Strings(meshes)
	return meshes, nil
}
