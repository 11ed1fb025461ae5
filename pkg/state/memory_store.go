package state

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-recolor/layering"
)

// MemoryStore is an in-memory Store for tests and examples. Snapshots are
// deep-copied on the way in and out, so a caller mutating a loaded snapshot
// never touches the stored one.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[Ref]memoryRecord[T]
}

type memoryRecord[T any] struct {
	snapshot T
	meta     Meta
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{records: map[Ref]memoryRecord[T]{}}
}

func (s *MemoryStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	ref, err := normalizeRef(ref)
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[ref]
	s.mu.RUnlock()
	if !ok {
		return zero, Meta{}, false, nil
	}
	return layering.Clone(record.snapshot), cloneMeta(record.meta), true, nil
}

func (s *MemoryStore[T]) Save(_ context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	ref, err := normalizeRef(ref)
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	s.records[ref] = memoryRecord[T]{snapshot: layering.Clone(snapshot), meta: cloneMeta(meta)}
	s.mu.Unlock()
	return cloneMeta(meta), nil
}

// Meshes lists the mesh ids stored under domain.
func (s *MemoryStore[T]) Meshes(_ context.Context, domain string) ([]string, error) {
	domain = strings.TrimSpace(domain)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var meshes []string
	for ref := range s.records {
		if ref.Domain == domain {
			meshes = append(meshes, ref.MeshID)
		}
	}
	sort.Strings(meshes)
	return meshes, nil
}

func normalizeRef(ref Ref) (Ref, error) {
	if _, err := ref.Identifier(); err != nil {
		return Ref{}, err
	}
	return Ref{Domain: strings.TrimSpace(ref.Domain), MeshID: strings.TrimSpace(ref.MeshID)}, nil
}
