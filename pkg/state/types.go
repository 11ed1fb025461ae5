package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

var ErrInvalidRef = errors.New("state: invalid ref")

// Ref identifies one persisted snapshot: the document kind and the mesh it
// belongs to.
type Ref struct {
	Domain string
	MeshID string
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one snapshot for a single reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

// Validator is implemented by snapshots that can check their own invariants.
// Lister is implemented by stores that can enumerate the meshes saved under a
// domain.
type Lister interface {
	Meshes(ctx context.Context, domain string) ([]string, error)
}

type Validator interface {
	Validate() error
}

type Mutator[T any] func(*T) error

// Identifier returns the canonical "<domain>/<mesh>" storage key.
func (r Ref) Identifier() (string, error) {
	domain := strings.TrimSpace(r.Domain)
	mesh := strings.TrimSpace(r.MeshID)
	if domain == "" {
		return "", fmt.Errorf("%w: domain is required", ErrInvalidRef)
	}
	if mesh == "" {
		return "", fmt.Errorf("%w: mesh id is required", ErrInvalidRef)
	}
	if strings.Contains(domain, "/") {
		return "", fmt.Errorf("%w: domain %q must not contain '/'", ErrInvalidRef, domain)
	}
	return domain + "/" + mesh, nil
}

// Resolver orchestrates loads with defaults and validated mutations.
type Resolver[T any] struct {
	Store Store[T]
	// Now stamps UpdatedAt; time.Now when nil.
	Now func() time.Time
}

// Resolve loads the snapshot for ref, falling back to defaults when nothing
// has been saved yet. The returned Meta is zero for defaults.
func (r Resolver[T]) Resolve(ctx context.Context, ref Ref, defaults T) (T, Meta, error) {
	if r.Store == nil {
		return defaults, Meta{}, fmt.Errorf("state: store is required")
	}
	snapshot, meta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return defaults, Meta{}, fmt.Errorf("state: load %q: %w", describe(ref), err)
	}
	if !ok {
		return defaults, Meta{}, nil
	}
	return snapshot, meta, nil
}

// Mutate loads one snapshot, applies fn, validates the result, then saves.
// A non-empty meta.ETag must match the stored ETag.
func (r Resolver[T]) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator[T]) (T, Meta, error) {
	var zero T
	if r.Store == nil {
		return zero, Meta{}, fmt.Errorf("state: store is required")
	}
	if _, err := ref.Identifier(); err != nil {
		return zero, Meta{}, err
	}
	if fn == nil {
		return zero, Meta{}, fmt.Errorf("state: mutator is required")
	}

	snapshot, loadedMeta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return zero, Meta{}, fmt.Errorf("state: load %q: %w", describe(ref), err)
	}
	if !ok {
		snapshot = zero
		loadedMeta = Meta{}
	}
	if meta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return zero, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(&snapshot); err != nil {
		return zero, loadedMeta, err
	}
	if v, ok := any(snapshot).(Validator); ok {
		if err := v.Validate(); err != nil {
			return zero, loadedMeta, err
		}
	}

	saveMeta := Stamp(mergeMeta(loadedMeta, meta), r.now())
	savedMeta, err := r.Store.Save(ctx, ref, snapshot, saveMeta)
	if err != nil {
		return zero, loadedMeta, fmt.Errorf("state: save %q: %w", describe(ref), err)
	}
	return snapshot, savedMeta, nil
}

func (r Resolver[T]) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Stamp assigns a fresh SnapshotID and ETag and sets UpdatedAt to now.
func Stamp(meta Meta, now time.Time) Meta {
	out := cloneMeta(meta)
	out.SnapshotID = uuid.NewString()
	out.ETag = uuid.NewString()
	out.UpdatedAt = now.UTC()
	return out
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}

func describe(ref Ref) string {
	if key, err := ref.Identifier(); err == nil {
		return key
	}
	return ref.Domain + "/" + ref.MeshID
}
